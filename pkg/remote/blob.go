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
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ociclient/ocitransfer/internal/ocierrors"
	"github.com/ociclient/ocitransfer/pkg/name"
	"github.com/ociclient/ocitransfer/pkg/remote/stream"
)

// GetBlob fetches a blob's content. The caller must close the returned
// reader.
func (c *Client) GetBlob(ctx context.Context, ref name.Reference) (io.ReadCloser, error) {
	op := "GET " + ref.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(ref, ref.URLPath()), nil)
	if err != nil {
		return nil, ocierrors.Wrap(ocierrors.Protocol, op, "building request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ocierrors.Wrap(ocierrors.Network, op, "request failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		drain(resp)
		return nil, ocierrors.New(statusCategory(resp.StatusCode), op, fmt.Sprintf("unexpected status %s", resp.Status))
	}
	return resp.Body, nil
}

// PutBlob uploads src, whose digest ref names the blob, running the
// three-phase POST/PATCH.../PUT upload state machine. If the blob already
// exists at ref, PutBlob returns immediately without reading src.
func (c *Client) PutBlob(ctx context.Context, ref name.Reference, src io.Reader) error {
	op := "PUT " + ref.String()

	exists, err := c.Exists(ctx, ref)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	location, err := c.initiateUpload(ctx, ref)
	if err != nil {
		return ocierrors.Wrap(ocierrors.Network, op, "start: initiating upload", err)
	}

	p := stream.NewPipe(ctx, src, c.ChunkSize, c.BufferChunks)
	for {
		chunk, err := p.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ocierrors.Wrap(ocierrors.Network, op, "uploading: reading source stream", err)
		}

		location, err = c.patchChunk(ctx, location, chunk)
		if err != nil {
			return ocierrors.Wrap(ocierrors.Network, op, "uploading: streaming chunk", err)
		}
	}

	if err := c.commitBlob(ctx, location, ref.Ref); err != nil {
		return ocierrors.Wrap(ocierrors.Network, op, "finalize: committing upload", err)
	}
	return nil
}

// initiateUpload starts a blob upload and returns the first upload URL.
func (c *Client) initiateUpload(ctx context.Context, ref name.Reference) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(ref, ref.UploadInitURLPath()), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer drain(resp)

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("initiate upload: unexpected status %s", resp.Status)
	}
	return nextLocation(resp)
}

// patchChunk PATCHes a single rechunked piece to the current upload URL and
// returns the upload URL to use for the next chunk.
func (c *Client) patchChunk(ctx context.Context, location string, chunk []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, location, bytes.NewReader(chunk))
	if err != nil {
		return "", err
	}
	req.ContentLength = int64(len(chunk))
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer drain(resp)

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("patch chunk: unexpected status %s", resp.Status)
	}
	return nextLocation(resp)
}

// commitBlob finalizes an upload with a PUT carrying the expected digest as
// a query parameter, choosing "?" or "&" depending on whether location
// already has a query string.
func (c *Client) commitBlob(ctx context.Context, location, digestRef string) error {
	u, err := url.Parse(location)
	if err != nil {
		return err
	}
	v := u.Query()
	v.Set("digest", digestRef)
	u.RawQuery = v.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("commit blob: unexpected status %s", resp.Status)
	}
	return nil
}

// nextLocation resolves the Location header of resp against the request
// URL it was returned for, since a registry may hand back a host-qualified
// URL on a different host than the one the request was sent to.
func nextLocation(resp *http.Response) (string, error) {
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", errors.New("missing Location header")
	}
	u, err := url.Parse(loc)
	if err != nil {
		return "", err
	}
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.ResolveReference(u).String(), nil
	}
	return u.String(), nil
}
