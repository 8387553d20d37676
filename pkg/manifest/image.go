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

// Image is a single-platform image manifest: a config blob descriptor plus
// an ordered list of layer descriptors.
type Image struct {
	SchemaVersion  int               `json:"schemaVersion"`
	MediaTypeField types.MediaType   `json:"mediaType,omitempty"`
	Config         Descriptor        `json:"config"`
	Layers         []Descriptor      `json:"layers"`
	Annotations    map[string]string `json:"annotations,omitempty"`

	raw []byte
}

var _ Manifest = (*Image)(nil)

// MediaType implements Manifest.
func (m *Image) MediaType() types.MediaType {
	if m.MediaTypeField != "" {
		return m.MediaTypeField
	}
	return types.DockerManifestSchema2
}

// Raw implements Manifest.
func (m *Image) Raw() []byte {
	if m.raw != nil {
		return m.raw
	}
	b, _ := json.Marshal(m)
	return b
}
