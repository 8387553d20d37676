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

// Package authn resolves basic-auth credentials for a registry host out of
// a Docker-style credential file.
package authn

import (
	"context"
	"os"

	"github.com/docker/cli/cli/config"
	"github.com/docker/cli/cli/config/configfile"
)

// AuthConfig is the basic-auth credential pair for a registry host.
type AuthConfig struct {
	Username string
	Password string
}

// Keychain resolves a registry host to a credential.
type Keychain interface {
	// Resolve looks up the credential for host. The second return value is
	// false when the credential file has no entry for host, which is not
	// an error: the caller proceeds anonymously.
	Resolve(ctx context.Context, host string) (AuthConfig, bool, error)
}

// defaultKeychain reads $DOCKER_CONFIG/config.json (or the legacy
// locations config.Load("") falls back to).
type defaultKeychain struct{}

// DefaultKeychain is backed by the user's Docker credential file.
var DefaultKeychain Keychain = defaultKeychain{}

// Resolve implements Keychain.
func (defaultKeychain) Resolve(_ context.Context, host string) (AuthConfig, bool, error) {
	cf, err := config.Load("")
	if err != nil {
		return AuthConfig{}, false, err
	}
	return resolveFromFile(cf, host)
}

// FileKeychain reads credentials from an explicit config file path (not a
// directory, unlike config.Load's configDir), used for the CLI's
// --auth-config flag.
func FileKeychain(path string) Keychain {
	return fileKeychain{path: path}
}

type fileKeychain struct {
	path string
}

// Resolve implements Keychain.
func (f fileKeychain) Resolve(_ context.Context, host string) (AuthConfig, bool, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return AuthConfig{}, false, err
	}
	defer file.Close()

	cf := configfile.New(f.path)
	if err := cf.LoadFromReader(file); err != nil {
		return AuthConfig{}, false, err
	}
	return resolveFromFile(cf, host)
}

func resolveFromFile(cf *configfile.ConfigFile, host string) (AuthConfig, bool, error) {
	cfg, err := cf.GetAuthConfig(host)
	if err != nil {
		return AuthConfig{}, false, err
	}
	if cfg.Username == "" && cfg.Password == "" && cfg.Auth == "" && cfg.IdentityToken == "" && cfg.RegistryToken == "" {
		return AuthConfig{}, false, nil
	}
	return AuthConfig{Username: cfg.Username, Password: cfg.Password}, true, nil
}
