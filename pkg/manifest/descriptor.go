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
	"github.com/opencontainers/go-digest"

	"github.com/ociclient/ocitransfer/pkg/types"
)

// Descriptor describes a sub-manifest or blob referenced from a manifest or
// index: its media type, digest, size, and (for platform-specific entries
// in an index) target platform.
type Descriptor struct {
	MediaType   types.MediaType   `json:"mediaType"`
	Size        int64             `json:"size"`
	Digest      digest.Digest     `json:"digest"`
	URLs        []string          `json:"urls,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
	Platform    *types.Platform   `json:"platform,omitempty"`

	// ArtifactType carries the referenced manifest's artifactType, used by
	// the OCI referrers API. Left empty by manifests this client builds.
	ArtifactType string `json:"artifactType,omitempty"`
}
