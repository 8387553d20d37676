// Copyright 2019 Google LLC All Rights Reserved.
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

package types

import ocispec "github.com/opencontainers/image-spec/specs-go/v1"

// MediaType is the registry media type of a manifest or a blob.
type MediaType string

// The manifest and index media types this client understands. Config/layer
// media types are not enumerated here; this client never inspects blob
// contents, only their digests and sizes. The OCI media types are pinned to
// image-spec's constants rather than retyped string literals, so a future
// image-spec release that ever renamed one would fail to compile here
// instead of silently drifting.
const (
	OCIContentDescriptor MediaType = MediaType(ocispec.MediaTypeDescriptor)
	OCIImageIndex        MediaType = MediaType(ocispec.MediaTypeImageIndex)
	OCIManifestSchema1   MediaType = MediaType(ocispec.MediaTypeImageManifest)

	DockerManifestSchema1       MediaType = "application/vnd.docker.distribution.manifest.v1+json"
	DockerManifestSchema1Signed MediaType = "application/vnd.docker.distribution.manifest.v1+prettyjws"
	DockerManifestSchema2       MediaType = "application/vnd.docker.distribution.manifest.v2+json"
	DockerManifestList          MediaType = "application/vnd.docker.distribution.manifest.list.v2+json"
)

// IsIndex reports whether a manifest of this media type references other
// manifests rather than blobs.
func (m MediaType) IsIndex() bool {
	switch m {
	case OCIImageIndex, DockerManifestList:
		return true
	}
	return false
}

// IsImage reports whether a manifest of this media type is a single-platform
// image manifest (config + layers).
func (m MediaType) IsImage() bool {
	switch m {
	case OCIManifestSchema1, DockerManifestSchema2:
		return true
	}
	return false
}

// IsLegacy reports whether this is a V1 (pre-distribution) manifest, which
// this client can read but will never write.
func (m MediaType) IsLegacy() bool {
	switch m {
	case DockerManifestSchema1, DockerManifestSchema1Signed:
		return true
	}
	return false
}

// IsDockerVendor reports whether m uses Docker's "application/vnd.docker."
// namespace, which selects the 3-space-indented canonical form instead of
// sorted-compact JSON. See Canonical in package manifest.
func (m MediaType) IsDockerVendor() bool {
	return len(m) >= len(dockerVendorPrefix) && string(m[:len(dockerVendorPrefix)]) == dockerVendorPrefix
}

const dockerVendorPrefix = "application/vnd.docker."

// Known is the set of media types this client knows how to GET, listed in
// the order sent on the Accept header (most to least preferred), followed
// by "*/*" per the wire protocol's Accept convention.
var Known = []MediaType{
	OCIManifestSchema1,
	OCIImageIndex,
	DockerManifestSchema2,
	DockerManifestList,
	DockerManifestSchema1Signed,
	DockerManifestSchema1,
}

// AcceptHeader returns the Accept header value advertising every known
// manifest media type plus "*/*", per spec.
func AcceptHeader() string {
	parts := make([]string, 0, len(Known)+1)
	for _, mt := range Known {
		parts = append(parts, string(mt))
	}
	parts = append(parts, "*/*")
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}
