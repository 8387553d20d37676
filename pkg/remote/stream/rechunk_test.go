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
	"io"
	"testing"

	"github.com/ociclient/ocitransfer/pkg/remote/stream"
)

// multiReader emits each byte slice in sequence as a separate Read call,
// regardless of the size of the buffer passed in, to exercise rechunking
// across ragged source writes.
type multiReader struct {
	chunks [][]byte
	i      int
}

func (m *multiReader) Read(p []byte) (int, error) {
	if m.i >= len(m.chunks) {
		return 0, io.EOF
	}
	n := copy(p, m.chunks[m.i])
	m.i++
	return n, nil
}

// TestRechunking covers testable property 9.
func TestRechunking(t *testing.T) {
	src := &multiReader{chunks: [][]byte{[]byte("abc"), []byte("def"), []byte("ghij")}}
	r := stream.NewRechunker(src, 5)

	var got []string
	for {
		chunk, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got = append(got, string(chunk))
	}

	want := []string{"abcde", "fghij"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, got[i], want[i])
		}
	}
}
