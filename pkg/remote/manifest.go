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
	"fmt"
	"io"
	"net/http"

	"github.com/ociclient/ocitransfer/internal/ocierrors"
	"github.com/ociclient/ocitransfer/pkg/manifest"
	"github.com/ociclient/ocitransfer/pkg/name"
	"github.com/ociclient/ocitransfer/pkg/types"
)

// Exists reports whether ref names a manifest or blob present in the registry. A
// 401 is treated the same as a 404: from the caller's point of view, an
// object it cannot see does not exist.
func (c *Client) Exists(ctx context.Context, ref name.Reference) (bool, error) {
	op := "HEAD " + ref.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.url(ref, ref.URLPath()), nil)
	if err != nil {
		return false, ocierrors.Wrap(ocierrors.Protocol, op, "building request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, ocierrors.Wrap(ocierrors.Network, op, "request failed", err)
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized, http.StatusNotFound:
		return false, nil
	default:
		return false, ocierrors.New(statusCategory(resp.StatusCode), op, fmt.Sprintf("unexpected status %s", resp.Status))
	}
}

// ResolveTag turns a tag reference into the equivalent digest reference by
// HEADing the manifest and reading Docker-Content-Digest. A reference that
// already names a digest is returned unchanged without a round trip.
func (c *Client) ResolveTag(ctx context.Context, ref name.Reference) (name.Reference, error) {
	if ref.IsDigest() {
		return ref, nil
	}
	op := "HEAD " + ref.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.url(ref, ref.URLPath()), nil)
	if err != nil {
		return name.Reference{}, ocierrors.Wrap(ocierrors.Protocol, op, "building request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return name.Reference{}, ocierrors.Wrap(ocierrors.Network, op, "request failed", err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return name.Reference{}, ocierrors.New(statusCategory(resp.StatusCode), op, fmt.Sprintf("unexpected status %s", resp.Status))
	}

	d := resp.Header.Get("Docker-Content-Digest")
	if d == "" {
		return name.Reference{}, ocierrors.New(ocierrors.BadResponse, op, "response has no Docker-Content-Digest header")
	}
	return ref.WithRef(d), nil
}

// GetManifest fetches and decodes the manifest named by ref.
func (c *Client) GetManifest(ctx context.Context, ref name.Reference) (manifest.Manifest, error) {
	op := "GET " + ref.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(ref, ref.URLPath()), nil)
	if err != nil {
		return nil, ocierrors.Wrap(ocierrors.Protocol, op, "building request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ocierrors.Wrap(ocierrors.Network, op, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		drain(resp)
		return nil, ocierrors.New(statusCategory(resp.StatusCode), op, fmt.Sprintf("unexpected status %s", resp.Status))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ocierrors.Wrap(ocierrors.Network, op, "reading manifest body", err)
	}

	hint := types.MediaType(resp.Header.Get("Content-Type"))
	m, err := manifest.Decode(data, hint)
	if err != nil {
		return nil, ocierrors.Wrap(ocierrors.BadResponse, op, "decoding manifest", err)
	}
	return m, nil
}

// PutManifest uploads m to ref. The request body is m's canonical form, not
// its raw bytes, so the digest the registry computes matches Digest(m) even
// when m was decoded from a different registry's differently-whitespaced
// response.
func (c *Client) PutManifest(ctx context.Context, ref name.Reference, m manifest.Manifest) error {
	op := "PUT " + ref.String()

	body, err := manifest.Canonical(m)
	if err != nil {
		return ocierrors.Wrap(ocierrors.Protocol, op, "canonicalizing manifest", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url(ref, ref.URLPath()), bytes.NewReader(body))
	if err != nil {
		return ocierrors.Wrap(ocierrors.Protocol, op, "building request", err)
	}
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Type", string(m.MediaType()))

	resp, err := c.http.Do(req)
	if err != nil {
		return ocierrors.Wrap(ocierrors.Network, op, "request failed", err)
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return nil
	default:
		return ocierrors.New(statusCategory(resp.StatusCode), op, fmt.Sprintf("unexpected status %s", resp.Status))
	}
}

// drain discards and closes a response body, for responses whose content
// this client has no use for beyond the status code and headers.
func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()
}
