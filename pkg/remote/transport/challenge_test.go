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

package transport

import "testing"

func TestParseBearerChallenge(t *testing.T) {
	header := `Bearer realm="https://auth/",service="svc",scope="repo:x/y:pull"`
	params, err := parseBearerChallenge(header)
	if err != nil {
		t.Fatalf("parseBearerChallenge: %v", err)
	}
	want := map[string]string{
		"realm":   "https://auth/",
		"service": "svc",
		"scope":   "repo:x/y:pull",
	}
	for k, v := range want {
		if params[k] != v {
			t.Errorf("params[%q] = %q, want %q", k, params[k], v)
		}
	}
}

// TestParseBearerChallengeQuotedCommasAndEquals covers testable property 5:
// quoted values may contain commas and equals signs that must not be
// treated as delimiters.
func TestParseBearerChallengeQuotedCommasAndEquals(t *testing.T) {
	header := `Bearer realm="https://a/",service="svc,with,commas",scope="repo=x:pull"`
	params, err := parseBearerChallenge(header)
	if err != nil {
		t.Fatalf("parseBearerChallenge: %v", err)
	}
	if len(params) != 3 {
		t.Fatalf("got %d params, want 3: %v", len(params), params)
	}
	if params["service"] != "svc,with,commas" {
		t.Errorf("service = %q, want %q", params["service"], "svc,with,commas")
	}
	if params["scope"] != "repo=x:pull" {
		t.Errorf("scope = %q, want %q", params["scope"], "repo=x:pull")
	}
}

func TestParseBearerChallengeMissingRealm(t *testing.T) {
	if _, err := parseBearerChallenge(`Bearer service="svc"`); err == nil {
		t.Fatalf("expected error for missing realm")
	}
}

func TestParseBearerChallengeNotBearer(t *testing.T) {
	if _, err := parseBearerChallenge(`Basic realm="foo"`); err == nil {
		t.Fatalf("expected error for non-Bearer scheme")
	}
}
