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

// Package manifest decodes and re-serializes the registry's manifest
// variants: image indexes (manifest lists), image manifests, and legacy V1
// manifests.
package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/opencontainers/go-digest"

	"github.com/ociclient/ocitransfer/pkg/types"
)

// Manifest is implemented by every manifest variant this client understands.
// Raw returns the exact bytes as received from the registry (or the plain
// JSON encoding of a manifest built in memory); callers that need the
// canonical form, for digest computation or for uploading, use Canonical
// instead.
type Manifest interface {
	MediaType() types.MediaType
	Raw() []byte
}

// References returns the sub-manifests or blobs an Index or Image points
// at. A V1 legacy manifest has none, since it carries its layers inline by
// unstructured FSLayer blobsums that this client does not traverse.
func References(m Manifest) []Descriptor {
	switch v := m.(type) {
	case *Index:
		return v.Manifests
	case *Image:
		return append([]Descriptor{v.Config}, v.Layers...)
	default:
		return nil
	}
}

// Decode parses data into the concrete Manifest variant named by hint, the
// caller-supplied media type (typically the registry's Content-Type
// response header). hint always wins when present, since it is what
// resolves the ambiguity of a document whose own mediaType field disagrees
// with the header it was served under; the document's mediaType field is
// consulted only as a fallback when hint is empty.
func Decode(data []byte, hint types.MediaType) (Manifest, error) {
	var probe struct {
		MediaType     types.MediaType `json:"mediaType"`
		SchemaVersion int             `json:"schemaVersion"`
		FSLayers      json.RawMessage `json:"fsLayers"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("manifest: decoding: %w", err)
	}

	mt := hint
	if mt == "" {
		mt = probe.MediaType
	}

	switch {
	case mt.IsIndex():
		var idx Index
		if err := json.Unmarshal(data, &idx); err != nil {
			return nil, fmt.Errorf("manifest: decoding index: %w", err)
		}
		idx.raw = data
		if idx.MediaTypeField == "" {
			idx.MediaTypeField = mt
		}
		return &idx, nil

	case mt.IsImage():
		var img Image
		if err := json.Unmarshal(data, &img); err != nil {
			return nil, fmt.Errorf("manifest: decoding image: %w", err)
		}
		img.raw = data
		if img.MediaTypeField == "" {
			img.MediaTypeField = mt
		}
		return &img, nil

	case mt.IsLegacy() || probe.FSLayers != nil:
		return &V1{raw: data, mt: mt}, nil

	default:
		return nil, fmt.Errorf("manifest: unknown or missing media type %q, cannot determine variant", mt)
	}
}

// Digest computes the content digest of m, using its canonical
// serialization per Canonical.
func Digest(m Manifest) (digest.Digest, error) {
	b, err := Canonical(m)
	if err != nil {
		return "", err
	}
	return digest.FromBytes(b), nil
}
