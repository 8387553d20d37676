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
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/ociclient/ocitransfer/pkg/name"
)

// TestCopyWritesDependenciesBeforeParentManifest covers testable
// property 7: copying a manifest copies every dependency (here an image's
// config blob and layer blob) before the parent manifest PUT, which must
// be the last write observed at the destination.
func TestCopyWritesDependenciesBeforeParentManifest(t *testing.T) {
	configDigest := "sha256:" + strings.Repeat("1", 64)
	layerDigest := "sha256:" + strings.Repeat("2", 64)

	imageJSON := fmt.Sprintf(`{
		"schemaVersion": 2,
		"mediaType": "application/vnd.docker.distribution.manifest.v2+json",
		"config": {"mediaType": "application/vnd.docker.container.image.v1+json", "size": 2, "digest": %q},
		"layers": [{"mediaType": "application/vnd.docker.image.rootfs.diff.tar.gzip", "size": 2, "digest": %q}]
	}`, configDigest, layerDigest)

	var mu sync.Mutex
	var writes []string
	record := func(label string) {
		mu.Lock()
		writes = append(writes, label)
		mu.Unlock()
	}

	src := http.NewServeMux()
	src.HandleFunc("/v2/img/manifests/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.docker.distribution.manifest.v2+json")
		w.Write([]byte(imageJSON))
	})
	src.HandleFunc("/v2/img/blobs/"+configDigest, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("cc"))
	})
	src.HandleFunc("/v2/img/blobs/"+layerDigest, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ll"))
	})
	srcSrv := httptest.NewServer(src)
	defer srcSrv.Close()

	notExists := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}

	dst := http.NewServeMux()
	dst.HandleFunc("/v2/img/blobs/"+configDigest, notExists)
	dst.HandleFunc("/v2/img/blobs/"+layerDigest, notExists)
	dst.HandleFunc("/v2/img/blobs/uploads/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/up")
		w.WriteHeader(http.StatusAccepted)
	})
	dst.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		// One PATCH (single-chunk blob) followed by one PUT to commit it.
		switch r.Method {
		case http.MethodPatch:
			record("blob-patch")
			w.Header().Set("Location", "/up")
			w.WriteHeader(http.StatusAccepted)
		case http.MethodPut:
			record("blob-put:" + r.URL.Query().Get("digest"))
			w.WriteHeader(http.StatusCreated)
		}
	})
	dst.HandleFunc("/v2/img/manifests/latest", func(w http.ResponseWriter, r *http.Request) {
		record("manifest-put")
		w.WriteHeader(http.StatusCreated)
	})
	dstSrv := httptest.NewServer(dst)
	defer dstSrv.Close()

	srcRef := manifestRef(t, srcSrv.URL, "img", "latest")
	dstRef := manifestRef(t, dstSrv.URL, "img", "latest")

	c := &Client{http: http.DefaultClient}
	if err := c.Copy(context.Background(), srcRef, dstRef); err != nil {
		t.Fatalf("Copy: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(writes) == 0 {
		t.Fatal("no writes observed at destination")
	}
	if writes[len(writes)-1] != "manifest-put" {
		t.Errorf("last write = %q, want manifest-put (writes: %v)", writes[len(writes)-1], writes)
	}
	blobPuts := 0
	for _, w := range writes {
		if strings.HasPrefix(w, "blob-put:") {
			blobPuts++
		}
	}
	if blobPuts != 2 {
		t.Errorf("observed %d blob commits, want 2 (config + layer), writes: %v", blobPuts, writes)
	}
}

// TestCopyExistenceShortCircuit covers testable property 8: with a
// digest-ref source, if HEAD on the destination returns 200, Copy returns
// immediately without ever contacting the source.
func TestCopyExistenceShortCircuit(t *testing.T) {
	digest := "sha256:" + strings.Repeat("3", 64)

	dst := http.NewServeMux()
	dst.HandleFunc("/v2/img/manifests/"+digest, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("unexpected method %s on destination", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	})
	dstSrv := httptest.NewServer(dst)
	defer dstSrv.Close()

	srcRef := manifestRef(t, "http://127.0.0.1:1", "img", digest)
	dstRef := manifestRef(t, dstSrv.URL, "img", digest)

	c := &Client{http: &http.Client{Timeout: 0}}
	if err := c.Copy(context.Background(), srcRef, dstRef); err != nil {
		t.Fatalf("Copy: %v", err)
	}
}

func manifestRef(t *testing.T, serverURL, repo, ref string) name.Reference {
	t.Helper()
	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatalf("parsing test server URL: %v", err)
	}
	reg := name.NewInsecureRegistry(u.Host)
	// Built directly rather than through NewRepository, which would prefix
	// the single-segment repo with "library/" and miss the mocked paths.
	return name.NewManifestReference(name.Repository{Registry: reg, Path: []string{repo}}, ref)
}
