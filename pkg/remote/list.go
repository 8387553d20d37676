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
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ociclient/ocitransfer/internal/ocierrors"
	"github.com/ociclient/ocitransfer/pkg/name"
)

// Catalog lists every repository the credential in use can see on reg.
// Pagination via the Link header is not followed; only the first page is
// returned.
func (c *Client) Catalog(ctx context.Context, reg name.Registry) ([]string, error) {
	const op = "GET /v2/_catalog"

	u := reg.BaseURL() + "/v2/_catalog?n=1000"
	var body struct {
		Repositories []string `json:"repositories"`
	}
	if err := c.getJSON(ctx, op, u, &body); err != nil {
		return nil, err
	}
	return body.Repositories, nil
}

// ListTags lists every tag in repo. Pagination is not followed; only the
// first page is returned.
func (c *Client) ListTags(ctx context.Context, repo name.Repository) ([]string, error) {
	op := "GET /v2/" + repo.RepositoryStr() + "/tags/list"

	u := repo.Registry.BaseURL() + "/v2/" + repo.RepositoryStr() + "/tags/list?n=1000"
	var body struct {
		Tags []string `json:"tags"`
	}
	if err := c.getJSON(ctx, op, u, &body); err != nil {
		return nil, err
	}
	return body.Tags, nil
}

// getJSON issues a GET and decodes a 200 response body as JSON into out.
func (c *Client) getJSON(ctx context.Context, op, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ocierrors.Wrap(ocierrors.Protocol, op, "building request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ocierrors.Wrap(ocierrors.Network, op, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ocierrors.New(statusCategory(resp.StatusCode), op, fmt.Sprintf("unexpected status %s", resp.Status))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return ocierrors.Wrap(ocierrors.BadResponse, op, "decoding response", err)
	}
	return nil
}
