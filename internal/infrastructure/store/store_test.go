package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

func TestEntryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := NewEntryStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewEntryStore error: %v", err)
	}
	ctx := context.Background()

	entry := domain.Entry{
		Name:            "CBD",
		Slug:            "cbd",
		Category:        "קנבינואידים",
		Summary:         "תקציר",
		Status:          domain.EntryVerified,
		ConfidenceScore: 0.91,
		GeneratedAt:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.Save(ctx, entry); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := s.Get(ctx, "cbd")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Name != entry.Name || got.Status != entry.Status || got.ConfidenceScore != entry.ConfidenceScore {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestEntryStoreFilenameOverridesPayloadSlug(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewEntryStore(dir, nil)
	if err != nil {
		t.Fatalf("NewEntryStore error: %v", err)
	}
	ctx := context.Background()

	if err := s.Save(ctx, domain.Entry{Name: "THC", Slug: "old-slug"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := os.Rename(filepath.Join(dir, "old-slug.json"), filepath.Join(dir, "new-slug.json")); err != nil {
		t.Fatalf("rename: %v", err)
	}

	got, err := s.Get(ctx, "new-slug")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Slug != "new-slug" {
		t.Fatalf("file name must win over payload slug, got %q", got.Slug)
	}
	if _, err := s.Get(ctx, "old-slug"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for old slug, got %v", err)
	}
}

func TestEntryStoreListSkipsGarbage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewEntryStore(dir, nil)
	if err != nil {
		t.Fatalf("NewEntryStore error: %v", err)
	}
	ctx := context.Background()

	if err := s.Save(ctx, domain.Entry{Name: "CBD", Slug: "cbd"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0o644); err != nil {
		t.Fatalf("write txt: %v", err)
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(entries) != 1 || entries[0].Slug != "cbd" {
		t.Fatalf("expected one good entry, got %+v", entries)
	}
}

func TestQueueStoreMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	s := NewQueueStore(filepath.Join(t.TempDir(), "queue.json"))
	items, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty queue, got %+v", items)
	}
}

func TestQueueStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewQueueStore(filepath.Join(t.TempDir(), "nested", "queue.json"))
	ctx := context.Background()

	in := []domain.QueueItem{
		{Name: "CBD", Slug: "cbd", Status: domain.QueuePending},
		{Name: "THC", Slug: "thc", Status: domain.QueueFailed, Attempts: 3, LastError: "schema violation"},
	}
	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	out, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(out) != 2 || out[1].Attempts != 3 || out[1].LastError != "schema violation" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestCatalogSourceToleratesMissingAndCorrupt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	missing := NewCatalogSource(filepath.Join(t.TempDir(), "catalog.json"), nil)
	if catalog, err := missing.Load(ctx); err != nil || len(catalog) != 0 {
		t.Fatalf("missing snapshot must be empty, got %v %v", catalog, err)
	}

	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	corrupt := NewCatalogSource(path, nil)
	if catalog, err := corrupt.Load(ctx); err != nil || len(catalog) != 0 {
		t.Fatalf("corrupt snapshot must be empty, got %v %v", catalog, err)
	}
}

func TestCatalogSourceLoadsEntries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.json")
	payload := `[{"name":"OG Kush","attributes":{"dominance":"אינדיקה"},"tags":["הרגעה"],"categories":["תפרחות"],"inStock":true,"link":"https://shop.example/og"}]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	catalog, err := NewCatalogSource(path, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(catalog) != 1 || catalog[0].Name != "OG Kush" || !catalog[0].InStock {
		t.Fatalf("unexpected catalog: %+v", catalog)
	}
	if catalog[0].Attributes["dominance"] != "אינדיקה" {
		t.Fatalf("attributes not decoded: %+v", catalog[0].Attributes)
	}
}
