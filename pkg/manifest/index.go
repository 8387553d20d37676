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
	"encoding/json"

	"github.com/ociclient/ocitransfer/pkg/types"
)

// Index is a manifest list (Docker) or image index (OCI): a set of
// platform-specific sub-manifests sharing a single tag.
type Index struct {
	SchemaVersion  int               `json:"schemaVersion"`
	MediaTypeField types.MediaType   `json:"mediaType,omitempty"`
	Manifests      []Descriptor      `json:"manifests"`
	Annotations    map[string]string `json:"annotations,omitempty"`

	raw []byte
}

var _ Manifest = (*Index)(nil)

// MediaType implements Manifest.
func (i *Index) MediaType() types.MediaType {
	if i.MediaTypeField != "" {
		return i.MediaTypeField
	}
	return types.DockerManifestList
}

// Raw implements Manifest.
func (i *Index) Raw() []byte {
	if i.raw != nil {
		return i.raw
	}
	b, _ := json.Marshal(i)
	return b
}
