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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-quicktest/qt"
)

func writeSchemaFile(t *testing.T, contents string) SchemaUri {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte(contents), 0o644)))
	u, err := ParseUri(path)
	qt.Assert(t, qt.IsNil(err))
	return u
}

func TestStoreTryGetDocumentSchemaCachesResult(t *testing.T) {
	uri := writeSchemaFile(t, `{"type": "object"}`)
	store := NewStore(t.TempDir(), time.Minute)

	doc1, err := store.TryGetDocumentSchema(context.Background(), uri)
	qt.Assert(t, qt.IsNil(err))
	doc2, err := store.TryGetDocumentSchema(context.Background(), uri)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(doc1 == doc2))
}

func TestStorePrefetchWarmsMultiple(t *testing.T) {
	a := writeSchemaFile(t, `{"type": "string"}`)
	b := writeSchemaFile(t, `{"type": "boolean"}`)
	store := NewStore(t.TempDir(), time.Minute)

	err := store.Prefetch(context.Background(), []SchemaUri{a, b})
	qt.Assert(t, qt.IsNil(err))

	doc, err := store.TryGetDocumentSchema(context.Background(), a)
	qt.Assert(t, qt.IsNil(err))
	root, _ := doc.Root.Resolve(nil)
	_, ok := root.(*StringSchema)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestStoreRefreshCacheNoCacheDirIsNoop(t *testing.T) {
	store := NewStore("", time.Minute)
	qt.Assert(t, qt.IsNil(store.RefreshCache()))
}

func TestStoreCycleGuardShared(t *testing.T) {
	store := NewStore(t.TempDir(), time.Minute)
	qt.Assert(t, qt.IsTrue(store.CycleGuard() == store.CycleGuard()))
}

func TestStoreUnsupportedSchemeErrors(t *testing.T) {
	store := NewStore(t.TempDir(), time.Minute)
	_, err := store.TryGetDocumentSchema(context.Background(), Uri{raw: "ftp://example.com/s.json"})
	qt.Assert(t, qt.IsTrue(err != nil))
}
