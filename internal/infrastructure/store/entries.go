package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

// EntryStore keeps one JSON document per slug under a directory. The file
// name is the authoritative slug: on read it overrides whatever the payload
// carries, so a renamed file is a renamed entry.
type EntryStore struct {
	dir    string
	logger *slog.Logger
}

var _ ports.EntryStore = (*EntryStore)(nil)

// NewEntryStore creates the directory if needed.
func NewEntryStore(dir string, logger *slog.Logger) (*EntryStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create entries dir: %w", err)
	}
	return &EntryStore{dir: dir, logger: logger}, nil
}

// Save writes the entry atomically via a temp file plus rename.
func (s *EntryStore) Save(_ context.Context, entry domain.Entry) error {
	if entry.Slug == "" {
		return fmt.Errorf("entry has empty slug")
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal entry %s: %w", entry.Slug, err)
	}
	return writeAtomic(s.path(entry.Slug), data)
}

// Get loads one entry by slug.
func (s *EntryStore) Get(_ context.Context, slug string) (domain.Entry, error) {
	raw, err := os.ReadFile(s.path(slug))
	if os.IsNotExist(err) {
		return domain.Entry{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.Entry{}, fmt.Errorf("read entry %s: %w", slug, err)
	}
	var entry domain.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return domain.Entry{}, fmt.Errorf("parse entry %s: %w", slug, err)
	}
	entry.Slug = slug
	return entry, nil
}

// List loads every entry in the directory. Unparsable files are skipped with
// a warning rather than failing the listing.
func (s *EntryStore) List(ctx context.Context) ([]domain.Entry, error) {
	items, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read entries dir: %w", err)
	}

	var entries []domain.Entry
	for _, item := range items {
		if item.IsDir() || !strings.HasSuffix(item.Name(), ".json") {
			continue
		}
		slug := strings.TrimSuffix(item.Name(), ".json")
		entry, err := s.Get(ctx, slug)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("skipping unreadable entry file", "file", item.Name(), "error", err)
			}
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *EntryStore) path(slug string) string {
	return filepath.Join(s.dir, slug+".json")
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
