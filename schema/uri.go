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

// Package schema implements the schema store (spec.md §4.5): fetching,
// parsing, and resolving JSON-Schema documents, plus the catalog that maps
// a file path to a schema by glob.
package schema

import (
	"net/url"
	"path/filepath"
	"strings"

	digest "github.com/opencontainers/go-digest"
)

// Uri wraps a resolved schema or catalog location. file:// values are
// canonicalized to an absolute, slash-normalized path so that two
// spellings of the same path (relative vs. absolute, backslash vs.
// forward slash) compare equal (original_source supplement: the
// `tombi-uri` crate's SchemaUri/CatalogUri canonicalization, grounded in
// cue/mod/module's canonical-path handling).
type Uri struct {
	raw string
}

// SchemaUri identifies a schema document.
type SchemaUri = Uri

// CatalogUri identifies a catalog document; the same representation as a
// SchemaUri, kept as a distinct name for readability at call sites.
type CatalogUri = Uri

// ParseUri canonicalizes s into a Uri. file:// URIs and bare filesystem
// paths are made absolute and slash-normalized; everything else (http(s),
// tombi://) is kept as-is beyond trimming whitespace.
func ParseUri(s string) (Uri, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Uri{}, &url.Error{Op: "parse", URL: s, Err: errEmptyUri}
	}

	u, err := url.Parse(s)
	if err != nil {
		return Uri{}, err
	}

	switch u.Scheme {
	case "http", "https", "tombi":
		return Uri{raw: s}, nil
	case "file", "":
		path := u.Path
		if u.Scheme == "" {
			path = s
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return Uri{}, err
		}
		return Uri{raw: "file://" + filepath.ToSlash(abs)}, nil
	default:
		return Uri{raw: s}, nil
	}
}

// String returns the canonical string form.
func (u Uri) String() string { return u.raw }

// IsZero reports whether u was never assigned.
func (u Uri) IsZero() bool { return u.raw == "" }

// Scheme returns the URI scheme ("file", "http", "https", "tombi").
func (u Uri) Scheme() string {
	if i := strings.Index(u.raw, "://"); i >= 0 {
		return u.raw[:i]
	}
	return ""
}

// CacheKey returns a stable, filesystem-safe identifier for u, used as the
// on-disk cache file name for fetched content (spec.md §4.5 "TTL-bounded
// on-disk caching").
func (u Uri) CacheKey() string {
	return digest.FromString(u.raw).Encoded()
}

type uriError string

func (e uriError) Error() string { return string(e) }

const errEmptyUri uriError = "empty schema/catalog uri"
