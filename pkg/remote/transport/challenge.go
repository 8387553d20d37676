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
	"fmt"
	"strings"
)

const bearerPrefix = "Bearer "

// parseBearerChallenge parses the value of a WWW-Authenticate header of the
// form:
//
//	Bearer realm="https://auth.example.com/token",service="registry.example.com",scope="repo:foo/bar:pull"
//
// into its key/value parameters. Quoted values may themselves contain
// commas and equals signs; those are not treated as delimiters.
func parseBearerChallenge(header string) (map[string]string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, fmt.Errorf("WWW-Authenticate: expected %q prefix, got %q", bearerPrefix, header)
	}
	rest := header[len(bearerPrefix):]

	params := map[string]string{}
	for len(rest) > 0 {
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			return nil, fmt.Errorf("WWW-Authenticate: malformed parameter in %q", header)
		}
		key := strings.TrimSpace(rest[:eq])
		rest = rest[eq+1:]

		if len(rest) == 0 || rest[0] != '"' {
			return nil, fmt.Errorf("WWW-Authenticate: expected quoted value for %q in %q", key, header)
		}
		rest = rest[1:]

		end := strings.IndexByte(rest, '"')
		if end < 0 {
			return nil, fmt.Errorf("WWW-Authenticate: unterminated quoted value for %q in %q", key, header)
		}
		params[key] = rest[:end]
		rest = rest[end+1:]

		rest = strings.TrimLeft(rest, " ")
		if len(rest) == 0 {
			break
		}
		if rest[0] != ',' {
			return nil, fmt.Errorf("WWW-Authenticate: expected ',' after %q in %q", key, header)
		}
		rest = strings.TrimLeft(rest[1:], " ")
	}

	if _, ok := params["realm"]; !ok {
		return nil, fmt.Errorf("WWW-Authenticate: missing realm in %q", header)
	}
	return params, nil
}
