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

import "github.com/ociclient/ocitransfer/pkg/types"

// V1 is a legacy schema1 manifest, signed or unsigned. This client can read
// and copy one as an opaque blob but never constructs or re-signs one; its
// FSLayers carry no structured digest/size pairs this client traverses.
type V1 struct {
	mt  types.MediaType
	raw []byte
}

var _ Manifest = (*V1)(nil)

// MediaType implements Manifest.
func (v *V1) MediaType() types.MediaType {
	if v.mt != "" {
		return v.mt
	}
	return types.DockerManifestSchema1
}

// Raw implements Manifest.
func (v *V1) Raw() []byte {
	return v.raw
}
