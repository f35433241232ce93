// Package testutil provides shared test utilities and fixtures.
//
// This package centralises the store fixtures used by extraction and CLI
// tests so each test opens, seeds and closes stores the same way.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/banshee-data/sceneview/internal/viewer/store"
	"github.com/banshee-data/sceneview/internal/viewer/store/badger"
	"github.com/banshee-data/sceneview/internal/viewer/store/sqlite"
	"github.com/banshee-data/sceneview/internal/viewer/synthetic"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// OpenSQLite opens a migrated component store in the test's temp dir and
// closes it when the test ends.
func OpenSQLite(t testing.TB) *sqlite.ComponentStore {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "components.db"), sqlite.Options{})
	AssertNoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// OpenBadger opens an in-memory badger object store and closes it when the
// test ends.
func OpenBadger(t testing.TB) *badger.ObjectStores {
	t.Helper()
	s, err := badger.Open(badger.InMemoryConfig())
	AssertNoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// Stores holds one seeded instance of every store implementation.
type Stores struct {
	MemLegacy      *store.MemObjectStores
	MemColumnar    *store.MemComponentStore
	BadgerLegacy   *badger.ObjectStores
	SQLiteColumnar *sqlite.ComponentStore
}

// SeedStores writes data on timeline into all four store implementations.
func SeedStores(t testing.TB, data *synthetic.Dataset, timeline store.Timeline) *Stores {
	t.Helper()
	s := &Stores{
		MemLegacy:      store.NewMemObjectStores(),
		MemColumnar:    store.NewMemComponentStore(),
		BadgerLegacy:   OpenBadger(t),
		SQLiteColumnar: OpenSQLite(t),
	}
	AssertNoError(t, data.WriteLegacy(s.MemLegacy, timeline))
	AssertNoError(t, data.WriteLegacy(s.BadgerLegacy, timeline))
	AssertNoError(t, data.WriteColumnar(s.MemColumnar, timeline))
	AssertNoError(t, data.WriteColumnar(s.SQLiteColumnar, timeline))
	return s
}
