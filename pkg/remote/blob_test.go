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

package remote

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/ociclient/ocitransfer/pkg/name"
)

// TestBlobUploadStateMachine covers testable property 6: a mocked
// POST->PATCH->PATCH->PUT sequence, with the Location changing at every
// step, produces exactly those four requests, reconstructs the original
// body, and the final PUT's query carries the expected digest.
func TestBlobUploadStateMachine(t *testing.T) {
	digest := "sha256:" + strings.Repeat("a", 64)

	var mu sync.Mutex
	var methods []string
	var gotBody bytes.Buffer
	var gotDigest string

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/x/y/blobs/uploads/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		w.Header().Set("Location", "/up/1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/up/1", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		body, _ := io.ReadAll(r.Body)
		gotBody.Write(body)
		w.Header().Set("Location", "/up/2")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/up/2", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		body, _ := io.ReadAll(r.Body)
		gotBody.Write(body)
		w.Header().Set("Location", "/up/3")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/up/3", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		gotDigest = r.URL.Query().Get("digest")
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/v2/x/y/blobs/"+digest, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	ref := blobRef(t, srv.URL, digest)
	c := &Client{http: srv.Client(), ChunkSize: 5}

	content := "abcdefgh" // splits into "abcde" + "fgh" at chunk size 5
	if err := c.PutBlob(context.Background(), ref, strings.NewReader(content)); err != nil {
		t.Fatalf("PutBlob: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{http.MethodPost, http.MethodPatch, http.MethodPatch, http.MethodPut}
	if len(methods) != len(want) {
		t.Fatalf("methods = %v, want %v", methods, want)
	}
	for i := range want {
		if methods[i] != want[i] {
			t.Errorf("methods[%d] = %s, want %s", i, methods[i], want[i])
		}
	}
	if gotBody.String() != content {
		t.Errorf("reconstructed body = %q, want %q", gotBody.String(), content)
	}
	if gotDigest != digest {
		t.Errorf("commit digest = %q, want %q", gotDigest, digest)
	}
}

// TestPutBlobSkipsExistingBlob exercises the short-circuit half of the
// upload path: if the destination already has the blob, no upload
// requests are issued at all.
func TestPutBlobSkipsExistingBlob(t *testing.T) {
	digest := "sha256:" + strings.Repeat("b", 64)

	var uploadHits int
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/x/y/blobs/"+digest, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v2/x/y/blobs/uploads/", func(w http.ResponseWriter, r *http.Request) {
		uploadHits++
		w.WriteHeader(http.StatusAccepted)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	ref := blobRef(t, srv.URL, digest)
	c := &Client{http: srv.Client()}

	if err := c.PutBlob(context.Background(), ref, strings.NewReader("unused")); err != nil {
		t.Fatalf("PutBlob: %v", err)
	}
	if uploadHits != 0 {
		t.Errorf("upload endpoint hit %d times, want 0", uploadHits)
	}
}

func blobRef(t *testing.T, serverURL, digest string) name.Reference {
	t.Helper()
	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatalf("parsing test server URL: %v", err)
	}
	reg := name.NewInsecureRegistry(u.Host)
	repo := name.NewRepository(reg, "x", "y")
	return name.NewBlobReference(repo, digest)
}
