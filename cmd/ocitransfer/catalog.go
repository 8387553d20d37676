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

	"github.com/ociclient/ocitransfer/pkg/name"
)

// newCatalogCmd creates the "catalog" subcommand.
func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog REGISTRY",
		Short: "List the repositories visible in a registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			reg := name.NewRegistry(args[0])
			repos, err := client.Catalog(cmd.Context(), reg)
			if err != nil {
				return fmt.Errorf("listing catalog for %s: %w", args[0], err)
			}
			for _, repo := range repos {
				fmt.Println(repo)
			}
			return nil
		},
	}
}
