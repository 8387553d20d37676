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

package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Canonical returns the byte sequence whose digest is the manifest's
// content digest.
//
// Docker's "application/vnd.docker.*" media types are digested over their
// exact wire bytes, which Docker always serializes with a 3-space indent in
// the fields' declared struct order: this is what json.MarshalIndent(v, "",
// "   ") produces for this client's own struct field ordering, and it is
// also what a conforming Docker registry sends back. Every other media type
// (OCI's) is digested over the minimal, key-sorted form: no indentation, no
// insignificant whitespace, object keys in lexical order.
func Canonical(m Manifest) ([]byte, error) {
	if m.MediaType().IsDockerVendor() {
		raw := m.Raw()
		if len(raw) > 0 {
			var reindented bytes.Buffer
			if err := json.Indent(&reindented, raw, "", "   "); err == nil {
				return reindented.Bytes(), nil
			}
		}
		return json.MarshalIndent(m, "", "   ")
	}
	return sortedCompact(m)
}

// sortedCompact re-marshals v with object keys in lexical order and no
// insignificant whitespace, regardless of struct field declaration order.
func sortedCompact(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("manifest: marshaling: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, fmt.Errorf("manifest: normalizing: %w", err)
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("manifest: marshaling normalized form: %w", err)
	}
	return out, nil
}
