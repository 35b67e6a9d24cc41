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
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rogpeppe/go-internal/lockedfile"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is the default on-disk cache lifetime for http(s)-fetched
// schemas (spec.md §4.5: "TTL defaulting to 24 hours, overridable").
const DefaultCacheTTL = 24 * time.Hour

// Bundled holds the fixtures embedded in the binary under the
// `tombi://` scheme; callers that don't need bundled fixtures (tests)
// can leave this as the zero value.
var Bundled embed.FS

// Store is the process-wide schema cache (spec.md §3 "SchemaStore",
// §5 "the schema store is process-wide"). Zero value is unusable; build
// one with [NewStore].
type Store struct {
	mu        sync.RWMutex
	documents map[string]*DocumentSchema // keyed by SchemaUri.String()

	cacheDir string
	ttl      time.Duration
	strict   bool
	client   *http.Client

	fetchGroup singleflight.Group
	cycle      *CycleGuard

	Catalog *Catalog
}

// NewStore builds a Store that caches http(s) fetches under cacheDir.
func NewStore(cacheDir string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Store{
		documents: make(map[string]*DocumentSchema),
		cacheDir:  cacheDir,
		ttl:       ttl,
		client:    http.DefaultClient,
		cycle:     NewCycleGuard(),
		Catalog:   &Catalog{},
	}
}

// SetStrict sets the strict flag passed to [ParseDocumentSchema] for
// schemas parsed afterwards; unknown keywords are not rejected either way.
func (s *Store) SetStrict(strict bool) { s.strict = strict }

// TryGetDocumentSchema returns the parsed schema for uri, fetching and
// parsing it on first use and caching the result for the lifetime of the
// Store (spec.md §3 "SchemaStore", §5 "suspension point"). Concurrent
// callers requesting the same uri share one in-flight fetch via
// singleflight, so a burst of documents referencing the same schema at
// startup issues exactly one network request.
func (s *Store) TryGetDocumentSchema(ctx context.Context, uri SchemaUri) (*DocumentSchema, error) {
	s.mu.RLock()
	if doc, ok := s.documents[uri.String()]; ok {
		s.mu.RUnlock()
		return doc, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.fetchGroup.Do(uri.String(), func() (any, error) {
		raw, err := s.fetch(ctx, uri)
		if err != nil {
			return nil, err
		}
		doc, err := ParseDocumentSchema(uri, raw, s.strict)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.documents[uri.String()] = doc
		s.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*DocumentSchema), nil
}

// Prefetch warms the store for every uri concurrently, bounded by
// ctx cancellation; the first fetch error cancels the remaining fetches
// (spec.md §5 "all I/O ... lives behind async boundaries").
func (s *Store) Prefetch(ctx context.Context, uris []SchemaUri) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, u := range uris {
		u := u
		g.Go(func() error {
			_, err := s.TryGetDocumentSchema(gctx, u)
			return err
		})
	}
	return g.Wait()
}

// RefreshCache drops every fetched-content cache entry but preserves
// already-resolved DocumentSchemas until their next fetch (spec.md §4.5
// "Cache invalidation").
func (s *Store) RefreshCache() error {
	if s.cacheDir == "" {
		return nil
	}
	entries, err := os.ReadDir(s.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		_ = os.Remove(filepath.Join(s.cacheDir, e.Name()))
	}
	return nil
}

// CycleGuard returns the store's shared cycle guard, threaded through
// Referable resolution by the validator (spec.md §4.5 "Cycle
// prevention").
func (s *Store) CycleGuard() *CycleGuard { return s.cycle }

func (s *Store) fetch(ctx context.Context, uri SchemaUri) ([]byte, error) {
	switch uri.Scheme() {
	case "file":
		return os.ReadFile(uri.String()[len("file://"):])
	case "tombi":
		return Bundled.ReadFile(uri.String()[len("tombi://"):])
	case "http", "https":
		return s.fetchHTTP(ctx, uri)
	default:
		return nil, fmt.Errorf("unsupported schema uri scheme: %s", uri)
	}
}

// fetchHTTP reads uri through the TTL-bounded on-disk cache, grounded on
// mod/modcache's writeDiskCache pattern from the teacher repo: a
// content-addressed cache file guarded by a file lock so concurrent
// tombi processes never observe a torn write.
func (s *Store) fetchHTTP(ctx context.Context, uri SchemaUri) ([]byte, error) {
	if s.cacheDir == "" {
		return s.fetchHTTPLive(ctx, uri)
	}

	cachePath := filepath.Join(s.cacheDir, uri.CacheKey()+".json")
	if info, err := os.Stat(cachePath); err == nil && time.Since(info.ModTime()) < s.ttl {
		if data, err := lockedfile.Read(cachePath); err == nil {
			return data, nil
		}
	}

	data, err := s.fetchHTTPLive(ctx, uri)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.cacheDir, 0o755); err == nil {
		_ = lockedfile.Write(cachePath, bytes.NewReader(data), 0o644)
	}
	return data, nil
}

func (s *Store) fetchHTTPLive(ctx context.Context, uri SchemaUri) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching schema %s: HTTP %d", uri, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

