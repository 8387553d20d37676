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

import (
	"fmt"
	"regexp"
	"strings"
)

// ObjectKind distinguishes the two endpoint families a Reference can name.
// Only Blob references participate in the upload handshake.
type ObjectKind int

const (
	// ManifestKind addresses "v2/<repo>/manifests/<ref>".
	ManifestKind ObjectKind = iota
	// BlobKind addresses "v2/<repo>/blobs/<ref>".
	BlobKind
)

func (k ObjectKind) String() string {
	if k == BlobKind {
		return "blobs"
	}
	return "manifests"
}

var digestPattern = regexp.MustCompile(`^sha256:[0-9a-f]{64}$`)

// IsDigest reports whether s is a well-formed sha256 digest reference.
func IsDigest(s string) bool {
	return digestPattern.MatchString(s)
}

// Reference names a single blob or manifest within a repository by tag or
// digest. The zero Registry means "use the caller's default registry".
type Reference struct {
	Repository Repository
	Ref        string
	Kind       ObjectKind
}

// NewManifestReference builds a manifest Reference.
func NewManifestReference(repo Repository, ref string) Reference {
	return Reference{Repository: repo, Ref: ref, Kind: ManifestKind}
}

// NewBlobReference builds a blob Reference.
func NewBlobReference(repo Repository, ref string) Reference {
	return Reference{Repository: repo, Ref: ref, Kind: BlobKind}
}

// IsDigest reports whether this reference names an immutable digest rather
// than a mutable tag.
func (r Reference) IsDigest() bool { return IsDigest(r.Ref) }

// WithRef returns a copy of r naming a different ref string within the same
// repository/registry and kind. Used when recursing into a manifest's
// dependencies, which share the parent's registry and repository.
func (r Reference) WithRef(ref string) Reference {
	r.Ref = ref
	return r
}

// WithKind returns a copy of r addressing a different object kind within the
// same repository/registry.
func (r Reference) WithKind(kind ObjectKind) Reference {
	r.Kind = kind
	return r
}

// URLPath returns the path segment after the registry base URL, e.g.
// "v2/library/alpine/manifests/latest".
func (r Reference) URLPath() string {
	return fmt.Sprintf("v2/%s/%s/%s", r.Repository.RepositoryStr(), r.Kind, r.Ref)
}

// UploadInitURLPath returns the path used to start a blob upload. Only
// meaningful for BlobKind references.
func (r Reference) UploadInitURLPath() string {
	return fmt.Sprintf("v2/%s/blobs/uploads/", r.Repository.RepositoryStr())
}

// String returns "registry/repository:ref" or "registry/repository@ref" if
// ref is already a digest.
func (r Reference) String() string {
	sep := ":"
	if r.IsDigest() {
		sep = "@"
	}
	return r.Repository.String() + sep + r.Ref
}

// ParseReference parses Docker reference grammar:
// [registry[:port]/]repo[:tag|@digest]
//
// A registry prefix is recognized by a "." or ":" in the first path segment,
// or the literal "localhost"; otherwise the whole string is the repository
// and the caller is expected to substitute a default registry (see
// WithDefaultRegistry). A single-segment repository is prefixed with
// "library/". A repo named with neither tag nor digest defaults to the
// "latest" tag.
func ParseReference(s string) (Reference, error) {
	if s == "" {
		return Reference{}, fmt.Errorf("name: empty reference")
	}

	remainder := s
	var reg Registry
	hasRegistry := false

	if i := strings.Index(remainder, "/"); i >= 0 {
		first := remainder[:i]
		if strings.ContainsAny(first, ".:") || first == "localhost" {
			reg = NewRegistry(first)
			hasRegistry = true
			remainder = remainder[i+1:]
		}
	}

	repoPart, ref, kind, err := splitRefTagDigest(remainder)
	if err != nil {
		return Reference{}, err
	}
	if repoPart == "" {
		return Reference{}, fmt.Errorf("name: missing repository in %q", s)
	}

	segments := strings.Split(repoPart, "/")
	repo := NewRepository(reg, segments...)
	if !hasRegistry {
		repo.Registry = Registry{}
	}

	return Reference{Repository: repo, Ref: ref, Kind: kind}, nil
}

// splitRefTagDigest separates the repository path from a trailing
// ":tag" and/or "@digest". Per Docker reference grammar, when both are
// present the digest wins; the tag is discarded.
func splitRefTagDigest(s string) (repo, ref string, kind ObjectKind, err error) {
	repo = s
	tag := ""
	digest := ""

	if i := strings.Index(repo, "@"); i >= 0 {
		digest = repo[i+1:]
		repo = repo[:i]
	}
	if i := strings.LastIndex(repo, ":"); i >= 0 {
		tag = repo[i+1:]
		repo = repo[:i]
	}

	switch {
	case digest != "":
		if !IsDigest(digest) {
			return "", "", ManifestKind, fmt.Errorf("name: malformed digest %q", digest)
		}
		ref = digest
	case tag != "":
		ref = tag
	default:
		// Docker reference grammar: no tag or digest means "latest".
		ref = "latest"
	}
	return repo, ref, ManifestKind, nil
}

// WithDefaultRegistry returns r with the package default registry
// substituted if r names none. It leaves an already-registry-qualified
// reference untouched.
func WithDefaultRegistry(r Reference, def Registry) Reference {
	if r.Repository.Registry.IsZero() {
		r.Repository.Registry = def
	}
	return r
}
