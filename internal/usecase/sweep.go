package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

// Sweep re-queues verified entries whose newest cited source predates the
// cutoff year. It is a scheduling policy, not a verification transition: the
// entry stays verified and published until regeneration replaces it.
type Sweep struct {
	entries    ports.EntryStore
	queue      ports.QueueStore
	cutoffYear int
	logger     *slog.Logger
}

// NewSweep wires the staleness sweep.
func NewSweep(entries ports.EntryStore, queue ports.QueueStore, cutoffYear int, logger *slog.Logger) *Sweep {
	return &Sweep{entries: entries, queue: queue, cutoffYear: cutoffYear, logger: logger}
}

// Run enumerates entries and appends a pending queue item for every stale
// one not already queued. Returns the number of entries re-queued.
func (s *Sweep) Run(ctx context.Context) (int, error) {
	entries, err := s.entries.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list entries: %w", err)
	}
	items, err := s.queue.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load queue: %w", err)
	}

	queued := map[string]struct{}{}
	for _, item := range items {
		if item.Status == domain.QueuePending {
			queued[item.Slug] = struct{}{}
		}
	}

	added := 0
	for _, entry := range entries {
		if entry.Status != domain.EntryVerified || s.isFresh(entry) {
			continue
		}
		if _, ok := queued[entry.Slug]; ok {
			continue
		}
		items = append(items, domain.QueueItem{
			Name:     entry.Name,
			Slug:     entry.Slug,
			Category: entry.Category,
			Status:   domain.QueuePending,
		})
		added++
		if s.logger != nil {
			s.logger.Info("entry re-queued as stale", "slug", entry.Slug)
		}
	}

	if added == 0 {
		return 0, nil
	}
	if err := s.queue.Save(ctx, items); err != nil {
		return 0, fmt.Errorf("save queue: %w", err)
	}
	return added, nil
}

// isFresh reports whether the entry's newest cited source reaches the cutoff
// year. Entries without sources are never considered fresh.
func (s *Sweep) isFresh(entry domain.Entry) bool {
	newest := 0
	for _, src := range entry.Sources {
		if y := src.Date.Year(); y > newest {
			newest = y
		}
	}
	return newest >= s.cutoffYear
}
