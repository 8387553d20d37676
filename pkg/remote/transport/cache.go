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

package transport

import (
	"net/http"
	"strings"
	"sync"
)

// tokenCache holds bearer tokens keyed by the coarse auth key derived from
// a request: (host, first three path segments). This matches the
// granularity at which registries issue scoped tokens, so one token is
// reused across every blob and manifest request in a repository instead of
// being re-minted per request.
type tokenCache struct {
	mu    sync.RWMutex
	token map[string]string
}

func newTokenCache() *tokenCache {
	return &tokenCache{token: make(map[string]string)}
}

func (c *tokenCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.token[key]
	return t, ok
}

func (c *tokenCache) put(key, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token[key] = token
}

// authKey derives the cache key for req: its host plus the first three
// non-empty segments of its URL path, e.g. "registry-1.docker.io" +
// "v2/library/alpine" for a manifest or blob request against that repo.
func authKey(req *http.Request) string {
	segs := strings.Split(strings.Trim(req.URL.Path, "/"), "/")
	if len(segs) > 3 {
		segs = segs[:3]
	}
	return req.URL.Host + "/" + strings.Join(segs, "/")
}
