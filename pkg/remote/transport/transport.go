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

// Package transport implements the authenticated http.RoundTripper this
// client issues every registry request through: basic-auth on the first
// attempt, a single bearer-token refresh and retry on 401, and a per-realm
// token cache shared across requests.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ociclient/ocitransfer/internal/ocierrors"
	"github.com/ociclient/ocitransfer/pkg/authn"
	"github.com/ociclient/ocitransfer/pkg/types"
)

const userAgent = "ocitransfer/0.1"

// Transport wraps inner with registry authentication.
type Transport struct {
	inner    http.RoundTripper
	keychain authn.Keychain
	cache    *tokenCache
}

var _ http.RoundTripper = (*Transport)(nil)

// New builds a Transport over inner, resolving credentials through kc.
func New(inner http.RoundTripper, kc authn.Keychain) *Transport {
	return &Transport{inner: inner, keychain: kc, cache: newTokenCache()}
}

// RoundTrip implements http.RoundTripper. On any response other than a 401
// on the first attempt, it is returned to the caller verbatim (including
// ownership of the response body). On a first-attempt 401, RoundTrip
// parses the WWW-Authenticate challenge, fetches and caches a bearer
// token, and retries the request exactly once; a second 401 is surfaced as
// an error rather than retried further.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	op := req.Method + " " + req.URL.String()

	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", types.AcceptHeader())
	}
	req.Header.Set("User-Agent", userAgent)

	key := authKey(req)
	cred, hasCred, err := t.keychain.Resolve(req.Context(), req.URL.Hostname())
	if err != nil {
		return nil, ocierrors.Wrap(ocierrors.Network, op, "resolving credential", err)
	}

	if tok, ok := t.cache.get(key); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	} else if hasCred {
		req.SetBasicAuth(cred.Username, cred.Password)
	}

	resp, err := t.inner.RoundTrip(req)
	if err != nil {
		return nil, ocierrors.Wrap(ocierrors.Network, op, "request failed", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	challenge := resp.Header.Get("WWW-Authenticate")
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()

	params, err := parseBearerChallenge(challenge)
	if err != nil {
		return nil, ocierrors.Wrap(ocierrors.Unauthorized, op, "401 with unparsable WWW-Authenticate", err)
	}

	token, err := t.fetchToken(req.Context(), params, cred, hasCred)
	if err != nil {
		return nil, ocierrors.Wrap(ocierrors.Unauthorized, op, "fetching bearer token", err)
	}
	t.cache.put(key, token)

	retry, err := cloneForRetry(req)
	if err != nil {
		return nil, ocierrors.Wrap(ocierrors.Unauthorized, op, "replaying request body for retry", err)
	}
	retry.Header.Set("Authorization", "Bearer "+token)

	retryResp, err := t.inner.RoundTrip(retry)
	if err != nil {
		return nil, ocierrors.Wrap(ocierrors.Network, op, "retry after token refresh failed", err)
	}
	if retryResp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, retryResp.Body) //nolint:errcheck
		retryResp.Body.Close()
		return nil, ocierrors.New(ocierrors.Unauthorized, op, "unauthorized after token refresh")
	}
	return retryResp, nil
}

// fetchToken issues the single auth GET to the challenge's realm and
// returns the access_token from its JSON body.
func (t *Transport) fetchToken(ctx context.Context, params map[string]string, cred authn.AuthConfig, hasCred bool) (string, error) {
	realm := params["realm"]

	q := url.Values{}
	for k, v := range params {
		if k == "realm" {
			continue
		}
		q.Set(k, v)
	}

	target := realm
	if len(q) > 0 {
		sep := "?"
		if strings.Contains(realm, "?") {
			sep = "&"
		}
		target = realm + sep + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	if hasCred {
		req.SetBasicAuth(cred.Username, cred.Password)
	}

	resp, err := t.inner.RoundTrip(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint %s returned %s", realm, resp.Status)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding token response from %s: %w", realm, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("token endpoint %s returned no access_token", realm)
	}
	return body.AccessToken, nil
}

// cloneForRetry clones req for a retry, replaying its body via GetBody when
// the original request had one (PUT/PATCH/POST); GET/HEAD requests have no
// body to replay.
func cloneForRetry(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	return clone, nil
}
