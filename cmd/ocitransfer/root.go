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
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ociclient/ocitransfer/internal/httpx"
	"github.com/ociclient/ocitransfer/internal/log"
	"github.com/ociclient/ocitransfer/pkg/authn"
	"github.com/ociclient/ocitransfer/pkg/remote"
)

var (
	authConfig string
	insecure   bool
	cafile     string
	capath     string
	verbosity  int
	tagPattern []string
	platform   string

	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ocitransfer SRC [DST]",
	Short: "Inspect and copy container images between registries",
	Args:  cobra.RangeArgs(1, 2),
	PersistentPreRun: func(*cobra.Command, []string) {
		logger = log.New(verbosity)
	},
	RunE: runCopyOrPrint,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&authConfig, "auth-config", "", "path to a Docker-style credential file (defaults to the user's Docker config)")
	flags.BoolVar(&insecure, "insecure", false, "disable TLS certificate verification")
	flags.StringVar(&cafile, "cafile", "", "path to a PEM file of additional trusted root certificates")
	flags.StringVar(&capath, "capath", "", "path to a directory of PEM files of additional trusted root certificates")
	flags.CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv)")

	rootCmd.Flags().StringArrayVar(&tagPattern, "tag-pattern", nil, "regex matched against source tags (repeatable); when set, the operation runs once per matching tag")
	rootCmd.Flags().StringVar(&platform, "platform", "", "select a single platform (e.g. linux/amd64) out of a multi-platform index, by digest")

	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newLsCmd())
	rootCmd.AddCommand(newDigestCmd())
}

// newKeychain resolves the credential source named by --auth-config, or
// the user's default Docker config if unset.
func newKeychain() authn.Keychain {
	if authConfig != "" {
		return authn.FileKeychain(authConfig)
	}
	return authn.DefaultKeychain
}

// newClient builds a remote.Client from the root command's persistent TLS
// and credential flags.
func newClient() (*remote.Client, error) {
	return remote.NewClient(newKeychain(), httpx.TLSOptions{
		InsecureSkipVerify: insecure,
		CAFile:             cafile,
		CAPath:             capath,
	})
}
