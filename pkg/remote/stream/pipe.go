// Copyright 2018 Google LLC All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stream

import (
	"context"
	"io"
)

// DefaultBufferChunks is the number of rechunked pieces a Pipe will read
// ahead of a slow consumer before its producer goroutine suspends.
const DefaultBufferChunks = 4

// Pipe decouples reading a source blob from writing it to a destination: a
// producer goroutine rechunks src into fixed-size pieces and feeds them
// through a bounded channel, so the destination write side can lag behind
// the source read side by at most bufferChunks pieces. The source is never
// held in memory beyond that bound.
type Pipe struct {
	chunks chan []byte
	errs   chan error
}

// NewPipe starts a producer goroutine over src. Read src in chunkSize
// pieces (DefaultChunkSize if <= 0), buffering at most bufferChunks ahead
// of the consumer (DefaultBufferChunks if <= 0). The producer exits, and
// further Next calls return ctx.Err(), once ctx is canceled.
func NewPipe(ctx context.Context, src io.Reader, chunkSize, bufferChunks int) *Pipe {
	if bufferChunks <= 0 {
		bufferChunks = DefaultBufferChunks
	}
	p := &Pipe{
		chunks: make(chan []byte, bufferChunks),
		errs:   make(chan error, 1),
	}
	go p.produce(ctx, src, chunkSize)
	return p
}

func (p *Pipe) produce(ctx context.Context, src io.Reader, chunkSize int) {
	defer close(p.chunks)

	r := NewRechunker(src, chunkSize)
	for {
		chunk, err := r.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			p.fail(err)
			return
		}

		select {
		case p.chunks <- chunk:
		case <-ctx.Done():
			p.fail(ctx.Err())
			return
		}
	}
}

func (p *Pipe) fail(err error) {
	select {
	case p.errs <- err:
	default:
	}
}

// Next returns the next chunk, io.EOF once the source and buffer are
// exhausted, or the error that stopped the producer (including a canceled
// context).
func (p *Pipe) Next() ([]byte, error) {
	chunk, ok := <-p.chunks
	if !ok {
		select {
		case err := <-p.errs:
			return nil, err
		default:
			return nil, io.EOF
		}
	}
	return chunk, nil
}
