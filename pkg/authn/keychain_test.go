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

package authn_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ociclient/ocitransfer/pkg/authn"
)

func writeConfig(t *testing.T, host, user, pass string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	auth := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
	contents := fmt.Sprintf(`{"auths":{%q:{"auth":%q}}}`, host, auth)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestFileKeychainResolvesKnownHost(t *testing.T) {
	path := writeConfig(t, "gcr.io", "me", "secret")
	kc := authn.FileKeychain(path)

	cfg, found, err := kc.Resolve(context.Background(), "gcr.io")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !found {
		t.Fatalf("expected credential to be found")
	}
	if cfg.Username != "me" || cfg.Password != "secret" {
		t.Errorf("got %+v, want me/secret", cfg)
	}
}

func TestFileKeychainUnknownHostNotFound(t *testing.T) {
	path := writeConfig(t, "gcr.io", "me", "secret")
	kc := authn.FileKeychain(path)

	_, found, err := kc.Resolve(context.Background(), "quay.io")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if found {
		t.Errorf("expected no credential for unrelated host")
	}
}
