package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

// QueueStore persists the whole bulk queue as one JSON file. Each Save is a
// full atomic rewrite, so an interrupted run loses at most the item in flight.
type QueueStore struct {
	path string
}

var _ ports.QueueStore = (*QueueStore)(nil)

// NewQueueStore wires the queue file path.
func NewQueueStore(path string) *QueueStore {
	return &QueueStore{path: path}
}

// Load reads the queue. A missing file is an empty queue.
func (s *QueueStore) Load(_ context.Context) ([]domain.QueueItem, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read queue: %w", err)
	}
	var items []domain.QueueItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse queue: %w", err)
	}
	return items, nil
}

// Save rewrites the queue atomically.
func (s *QueueStore) Save(_ context.Context, items []domain.QueueItem) error {
	if items == nil {
		items = []domain.QueueItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create queue dir: %w", err)
	}
	return writeAtomic(s.path, data)
}
