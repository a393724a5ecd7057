package storage

import (
	"context"
	"path/filepath"
	"testing"

	"GameScanner/internal/domain"
)

func TestSQLiteCacheRoundTrip(t *testing.T) {
	t.Parallel()

	cache, err := OpenSQLiteCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	if err := cache.Save(ctx, sampleResults()); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := cache.LoadPrevious(ctx)
	if err != nil {
		t.Fatalf("LoadPrevious error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}

	one := got["https://fap-nation.com/games/one/"]
	if one.Title != "Game One" || one.IsRecent != domain.RecencyRecent {
		t.Fatalf("unexpected row: %+v", one)
	}
}

func TestSQLiteCacheUpsert(t *testing.T) {
	t.Parallel()

	cache, err := OpenSQLiteCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	results := sampleResults()
	if err := cache.Save(ctx, results); err != nil {
		t.Fatalf("first save: %v", err)
	}

	results[0].Version = "v1.1"
	results[0].ChangeStatus = domain.ChangeUpdated
	if err := cache.Save(ctx, results[:1]); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := cache.LoadPrevious(ctx)
	if err != nil {
		t.Fatalf("LoadPrevious error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("upsert must keep one row per url, got %d", len(got))
	}

	one := got["https://fap-nation.com/games/one/"]
	if one.Version != "v1.1" || one.ChangeStatus != domain.ChangeUpdated {
		t.Fatalf("row not updated: %+v", one)
	}
}

func TestSQLiteCacheEmptySave(t *testing.T) {
	t.Parallel()

	cache, err := OpenSQLiteCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	if err := cache.Save(context.Background(), nil); err != nil {
		t.Fatalf("empty save should be a no-op: %v", err)
	}
}
