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

package remote

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ociclient/ocitransfer/internal/ocierrors"
	"github.com/ociclient/ocitransfer/pkg/manifest"
	"github.com/ociclient/ocitransfer/pkg/name"
)

// Copy copies the object named by src to dst, recursing through a
// manifest's dependencies and streaming blob bodies directly from the
// source GET to the destination upload. src and dst must name the same
// object kind.
//
// If src is a digest reference and dst already has that object, Copy
// returns immediately without issuing any further requests (testable
// property 8).
func (c *Client) Copy(ctx context.Context, src, dst name.Reference) error {
	op := fmt.Sprintf("copy %s -> %s", src, dst)

	if src.Kind != dst.Kind {
		return ocierrors.New(ocierrors.Protocol, op, "src and dst name different object kinds")
	}
	if src.IsDigest() && dst.IsDigest() && src.Ref != dst.Ref {
		return ocierrors.New(ocierrors.Protocol, op, "dst digest does not match src digest")
	}

	if src.IsDigest() {
		exists, err := c.Exists(ctx, dst)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
	}

	switch src.Kind {
	case name.ManifestKind:
		return c.copyManifest(ctx, src, dst)
	default:
		return c.copyBlob(ctx, src, dst)
	}
}

// copyManifest downloads src's manifest, copies every dependency it names
// concurrently, and only then PUTs the manifest itself to dst: the parent
// write happens-after every child's successful completion.
func (c *Client) copyManifest(ctx context.Context, src, dst name.Reference) error {
	op := fmt.Sprintf("copy manifest %s -> %s", src, dst)

	m, err := c.GetManifest(ctx, src)
	if err != nil {
		return err
	}

	deps := manifest.References(m)
	g, gctx := errgroup.WithContext(ctx)
	for _, dep := range deps {
		dep := dep
		kind := name.BlobKind
		if dep.MediaType.IsIndex() || dep.MediaType.IsImage() {
			kind = name.ManifestKind
		}
		childSrc := src.WithKind(kind).WithRef(dep.Digest.String())
		childDst := dst.WithKind(kind).WithRef(dep.Digest.String())
		g.Go(func() error {
			return c.Copy(gctx, childSrc, childDst)
		})
	}
	if err := g.Wait(); err != nil {
		return ocierrors.Wrap(ocierrors.Network, op, "copying manifest dependencies", err)
	}

	if err := c.PutManifest(ctx, dst, m); err != nil {
		return ocierrors.Wrap(ocierrors.Network, op, "writing destination manifest", err)
	}
	return nil
}

// copyBlob streams src's content directly into dst's upload, never
// materializing the whole blob in memory.
func (c *Client) copyBlob(ctx context.Context, src, dst name.Reference) error {
	op := fmt.Sprintf("copy blob %s -> %s", src, dst)

	rc, err := c.GetBlob(ctx, src)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := c.PutBlob(ctx, dst, rc); err != nil {
		return ocierrors.Wrap(ocierrors.Network, op, "uploading blob", err)
	}
	return nil
}
