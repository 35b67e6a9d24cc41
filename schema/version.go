// Copyright 2024 The Tombi Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package schema

import (
	"strings"

	"golang.org/x/mod/semver"
)

// TomlVersion is one of the TOML revisions tombi understands
// (spec.md §6.2).
type TomlVersion string

const (
	TomlVersionV1_0_0 TomlVersion = "1.0.0"
	TomlVersionV1_1_0 TomlVersion = "1.1.0"
)

// VersionSource names which precedence tier supplied the resolved
// version, for diagnostics and the `tombi/getTomlVersion` LSP method
// (spec.md §6.2, §6.6).
type VersionSource int

const (
	VersionSourceDefault VersionSource = iota
	VersionSourceConfig
	VersionSourceSchema
	VersionSourceDirective
)

func (s VersionSource) String() string {
	switch s {
	case VersionSourceDirective:
		return "directive"
	case VersionSourceSchema:
		return "schema"
	case VersionSourceConfig:
		return "config"
	default:
		return "default"
	}
}

// ResolveTomlVersion applies spec.md §6.2's precedence: an inline
// `#:tombi toml-version` directive, then the schema's
// `x-tombi-toml-version`, then a `tombi.toml` config value, then the
// default (1.0.0). Each candidate is validated with
// [golang.org/x/mod/semver] (prefixed with "v" since TOML versions don't
// carry one) before being accepted, so a malformed version string falls
// through to the next tier instead of propagating garbage.
func ResolveTomlVersion(directiveVersion string, docSchema *DocumentSchema, configVersion string) (TomlVersion, VersionSource) {
	if validSemver(directiveVersion) {
		return TomlVersion(directiveVersion), VersionSourceDirective
	}
	if docSchema != nil && validSemver(docSchema.TomlVersion) {
		return TomlVersion(docSchema.TomlVersion), VersionSourceSchema
	}
	if validSemver(configVersion) {
		return TomlVersion(configVersion), VersionSourceConfig
	}
	return TomlVersionV1_0_0, VersionSourceDefault
}

func validSemver(v string) bool {
	if v == "" {
		return false
	}
	return semver.IsValid(canonicalize(v))
}

func canonicalize(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
