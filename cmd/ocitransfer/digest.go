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
	"fmt"

	"github.com/spf13/cobra"
)

// newDigestCmd creates the "digest" subcommand.
func newDigestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest REF",
		Short: "Resolve a tag to its manifest digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := resolveRef(args[0])
			if err != nil {
				return fmt.Errorf("parsing %q: %w", args[0], err)
			}

			client, err := newClient()
			if err != nil {
				return err
			}

			resolved, err := client.ResolveTag(cmd.Context(), ref)
			if err != nil {
				return fmt.Errorf("resolving %s: %w", ref, err)
			}
			fmt.Println(resolved.Ref)
			return nil
		},
	}
}
