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

package name

import "strings"

// Repository is an ordered, non-empty sequence of path segments scoped to a
// Registry, e.g. library/alpine.
type Repository struct {
	Registry Registry
	Path     []string
}

// NewRepository builds a Repository, prefixing a single-segment name with
// "library/" the way the default registry does for official images.
func NewRepository(reg Registry, path ...string) Repository {
	if len(path) == 1 {
		path = []string{"library", path[0]}
	}
	return Repository{Registry: reg, Path: append([]string(nil), path...)}
}

// RepositoryStr joins the path segments with "/", e.g. "library/alpine".
func (r Repository) RepositoryStr() string {
	return strings.Join(r.Path, "/")
}

// String returns "registry/repository".
func (r Repository) String() string {
	return r.Registry.String() + "/" + r.RepositoryStr()
}
