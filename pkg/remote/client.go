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

// Package remote talks the registry HTTP API v2 to inspect and copy
// manifests and blobs between repositories, on the same registry or across
// two different ones.
package remote

import (
	"net/http"

	"github.com/ociclient/ocitransfer/internal/httpx"
	"github.com/ociclient/ocitransfer/internal/ocierrors"
	"github.com/ociclient/ocitransfer/pkg/authn"
	"github.com/ociclient/ocitransfer/pkg/name"
	"github.com/ociclient/ocitransfer/pkg/remote/transport"
)

// Client issues authenticated registry HTTP API v2 requests. One Client can
// address any number of registries; authentication and TLS settings are
// fixed for its lifetime.
type Client struct {
	http *http.Client

	// ChunkSize and BufferChunks tune blob streaming; zero means the
	// stream package's defaults.
	ChunkSize    int
	BufferChunks int
}

// NewClient builds a Client authenticating through kc, with TLS behavior
// configured by tlsOpts (the CLI's --insecure/--cafile/--capath flags).
func NewClient(kc authn.Keychain, tlsOpts httpx.TLSOptions) (*Client, error) {
	base, err := httpx.NewTransport(tlsOpts)
	if err != nil {
		return nil, err
	}
	rt := transport.New(base, kc)
	return &Client{http: &http.Client{Transport: rt}}, nil
}

// url joins a reference's registry base with a URL path.
func (c *Client) url(ref name.Reference, path string) string {
	return ref.Repository.Registry.BaseURL() + "/" + path
}

// statusCategory maps an unexpected HTTP status to an error Category.
func statusCategory(code int) ocierrors.Category {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ocierrors.Unauthorized
	case http.StatusNotFound:
		return ocierrors.NotFound
	default:
		return ocierrors.BadResponse
	}
}
