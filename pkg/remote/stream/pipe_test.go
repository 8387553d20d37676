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

package stream_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ociclient/ocitransfer/pkg/remote/stream"
)

// countingReader serves single bytes one at a time and counts how many
// have been served, so a test can observe producer progress without
// inspecting the Pipe's internals.
type countingReader struct {
	total int
	read  int32
}

func (c *countingReader) Read(p []byte) (int, error) {
	n := int(atomic.LoadInt32(&c.read))
	if n >= c.total {
		return 0, io.EOF
	}
	p[0] = byte(n)
	atomic.AddInt32(&c.read, 1)
	return 1, nil
}

// TestBoundedBufferSuspendsProducer covers testable property 10: with
// buffer capacity 2, a slow consumer forces the producer to suspend after
// reading at most a couple of chunks ahead.
func TestBoundedBufferSuspendsProducer(t *testing.T) {
	src := &countingReader{total: 1000}
	p := stream.NewPipe(context.Background(), src, 1, 2)

	// Don't consume anything; give the producer time to run ahead.
	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&src.read); got > 4 {
		t.Errorf("producer read %d bytes with no consumer and buffer 2, want <= 4", got)
	}

	// Draining lets the producer make further progress.
	for i := 0; i < 10; i++ {
		if _, err := p.Next(); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&src.read); got < 10 {
		t.Errorf("producer read only %d bytes after draining 10, want more progress", got)
	}
}

// TestCancellationStopsProducerEarly covers testable property 10's
// cancellation half: canceling the consumer's context stops the producer
// before it exhausts the source.
func TestCancellationStopsProducerEarly(t *testing.T) {
	src := &countingReader{total: 100000}
	ctx, cancel := context.WithCancel(context.Background())
	p := stream.NewPipe(ctx, src, 1, 2)

	if _, err := p.Next(); err != nil {
		t.Fatalf("first Next: %v", err)
	}
	cancel()

	var lastErr error
	for i := 0; i < 10000; i++ {
		_, err := p.Next()
		if err != nil {
			lastErr = err
			break
		}
	}
	if lastErr == nil {
		t.Fatalf("expected Pipe to stop with an error after cancellation")
	}
	if !errors.Is(lastErr, context.Canceled) {
		t.Errorf("Next error = %v, want context.Canceled", lastErr)
	}

	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&src.read); got >= int32(src.total) {
		t.Errorf("producer read the entire source after cancellation, want early stop")
	}
}
