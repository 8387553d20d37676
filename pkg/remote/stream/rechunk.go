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

// Package stream provides the blob-transfer plumbing between a source GET
// and a destination PATCH: a fixed-size rechunker and a bounded
// producer/consumer buffer, so a copy never holds a full blob in memory.
package stream

import (
	"bytes"
	"io"
)

// DefaultChunkSize is the chunk size NewRechunker uses when given a
// non-positive size.
const DefaultChunkSize = 1 << 20 // 1 MiB

// Rechunker reads from an underlying io.Reader and serves its content
// through Next in fixed-size chunks, regardless of how the source chooses
// to fragment its writes. The last chunk may be shorter.
type Rechunker struct {
	src       io.Reader
	chunkSize int
	buf       bytes.Buffer
	err       error
}

// NewRechunker wraps src, re-batching its output into chunkSize pieces.
func NewRechunker(src io.Reader, chunkSize int) *Rechunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Rechunker{src: src, chunkSize: chunkSize}
}

// Next returns the next fixed-size chunk, or a final short chunk followed
// by io.EOF on the following call. It returns (nil, io.EOF) once the
// source is exhausted and every buffered byte has been served.
func (r *Rechunker) Next() ([]byte, error) {
	for r.buf.Len() < r.chunkSize && r.err == nil {
		tmp := make([]byte, r.chunkSize)
		n, err := r.src.Read(tmp)
		if n > 0 {
			r.buf.Write(tmp[:n])
		}
		if err != nil {
			r.err = err
			break
		}
	}

	if r.buf.Len() == 0 {
		if r.err != nil && r.err != io.EOF {
			return nil, r.err
		}
		return nil, io.EOF
	}

	n := r.chunkSize
	if r.buf.Len() < n {
		n = r.buf.Len()
	}
	chunk := make([]byte, n)
	if _, err := io.ReadFull(&r.buf, chunk); err != nil {
		return nil, err
	}
	return chunk, nil
}
