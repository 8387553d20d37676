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

package main

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/ociclient/ocitransfer/pkg/manifest"
	"github.com/ociclient/ocitransfer/pkg/name"
	"github.com/ociclient/ocitransfer/pkg/remote"
	"github.com/ociclient/ocitransfer/pkg/types"
)

// runCopyOrPrint implements the root command: with only src, print its
// manifest(s) as JSON; with src and dst, copy.
func runCopyOrPrint(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	src, err := resolveRef(args[0])
	if err != nil {
		return fmt.Errorf("parsing %q: %w", args[0], err)
	}

	var dst name.Reference
	hasDst := len(args) == 2
	if hasDst {
		dst, err = resolveRef(args[1])
		if err != nil {
			return fmt.Errorf("parsing %q: %w", args[1], err)
		}
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	refs, err := expandTagPattern(ctx, client, src)
	if err != nil {
		return err
	}

	for _, one := range refs {
		one, err := resolvePlatform(ctx, client, one)
		if err != nil {
			return err
		}
		if hasDst {
			target := dst.WithRef(one.Ref)
			logger.Infof("copying %s to %s", one, target)
			if err := client.Copy(ctx, one, target); err != nil {
				return fmt.Errorf("copying %s to %s: %w", one, target, err)
			}
			continue
		}

		m, err := client.GetManifest(ctx, one)
		if err != nil {
			return fmt.Errorf("fetching manifest %s: %w", one, err)
		}
		os.Stdout.Write(m.Raw())
		fmt.Println()
	}
	return nil
}

// expandTagPattern returns [src] unchanged when --tag-pattern is unset, or
// every tag in src's repository matching at least one pattern otherwise.
func expandTagPattern(ctx context.Context, client *remote.Client, src name.Reference) ([]name.Reference, error) {
	if len(tagPattern) == 0 {
		return []name.Reference{src}, nil
	}

	patterns := make([]*regexp.Regexp, len(tagPattern))
	for i, p := range tagPattern {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling --tag-pattern %q: %w", p, err)
		}
		patterns[i] = re
	}

	tags, err := client.ListTags(ctx, src.Repository)
	if err != nil {
		return nil, fmt.Errorf("listing tags for %s: %w", src.Repository, err)
	}

	var matched []name.Reference
	for _, tag := range tags {
		for _, re := range patterns {
			if re.MatchString(tag) {
				matched = append(matched, src.WithRef(tag))
				break
			}
		}
	}
	return matched, nil
}

// resolvePlatform returns ref unchanged when --platform is unset. Otherwise
// it fetches ref's manifest, requires it to be a multi-platform index, and
// returns a digest reference to the single child matching --platform.
func resolvePlatform(ctx context.Context, client *remote.Client, ref name.Reference) (name.Reference, error) {
	if platform == "" {
		return ref, nil
	}

	want, err := types.ParsePlatform(platform)
	if err != nil {
		return name.Reference{}, fmt.Errorf("parsing --platform %q: %w", platform, err)
	}

	m, err := client.GetManifest(ctx, ref)
	if err != nil {
		return name.Reference{}, fmt.Errorf("fetching manifest %s: %w", ref, err)
	}
	idx, ok := m.(*manifest.Index)
	if !ok {
		return name.Reference{}, fmt.Errorf("--platform %q given but %s is not a multi-platform index", platform, ref)
	}

	for _, dep := range idx.Manifests {
		if dep.Platform != nil && dep.Platform.Equals(*want) {
			return ref.WithRef(dep.Digest.String()), nil
		}
	}
	return name.Reference{}, fmt.Errorf("no manifest for platform %q in %s", platform, ref)
}

// resolveRef parses s and substitutes the package default registry when s
// names none.
func resolveRef(s string) (name.Reference, error) {
	ref, err := name.ParseReference(s)
	if err != nil {
		return name.Reference{}, err
	}
	return name.WithDefaultRegistry(ref, name.NewRegistry(name.DefaultRegistry)), nil
}
