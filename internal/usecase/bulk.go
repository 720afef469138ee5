package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

// ConceptProcessor runs one concept end-to-end. Satisfied by *Pipeline.
type ConceptProcessor interface {
	ProcessConcept(ctx context.Context, name, slug, category string) (domain.Entry, error)
}

// BulkDeps wires the batch driver.
type BulkDeps struct {
	Processor ConceptProcessor
	Queue     ports.QueueStore
	Entries   ports.EntryStore
	Logger    *slog.Logger

	MaxAttempts int
	ItemDelay   time.Duration
	BaseBackoff time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
}

// Bulk processes the queue one concept at a time with an explicit inter-item
// delay. Concurrency across concepts is never attempted; only the context
// channels within one concept fan out.
type Bulk struct {
	processor   ConceptProcessor
	queue       ports.QueueStore
	entries     ports.EntryStore
	logger      *slog.Logger
	maxAttempts int
	itemDelay   time.Duration
	baseBackoff time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewBulk constructs the batch driver with safe defaults.
func NewBulk(deps BulkDeps) *Bulk {
	b := &Bulk{
		processor:   deps.Processor,
		queue:       deps.Queue,
		entries:     deps.Entries,
		logger:      deps.Logger,
		maxAttempts: deps.MaxAttempts,
		itemDelay:   deps.ItemDelay,
		baseBackoff: deps.BaseBackoff,
		sleep:       deps.Sleep,
	}
	if b.maxAttempts <= 0 {
		b.maxAttempts = 3
	}
	if b.baseBackoff <= 0 {
		b.baseBackoff = 2 * time.Second
	}
	if b.sleep == nil {
		b.sleep = sleepCtx
	}
	return b
}

// Run drains pending queue items. The queue file is rewritten atomically
// after every item so an interrupted run resumes where it stopped. A failure
// after partial work discards that work; the next attempt restarts the
// concept from scratch.
func (b *Bulk) Run(ctx context.Context) error {
	items, err := b.queue.Load(ctx)
	if err != nil {
		return fmt.Errorf("load queue: %w", err)
	}

	for i := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		item := &items[i]
		if item.Status != domain.QueuePending {
			continue
		}

		if b.alreadyVerified(ctx, item.Slug) {
			item.Status = domain.QueueSkipped
			b.finishItem(ctx, items, item)
			continue
		}

		b.processItem(ctx, item)
		b.finishItem(ctx, items, item)

		if b.itemDelay > 0 {
			if err := b.sleep(ctx, b.itemDelay); err != nil {
				return err
			}
		}
	}

	return nil
}

func (b *Bulk) processItem(ctx context.Context, item *domain.QueueItem) {
	for item.Attempts < b.maxAttempts {
		item.Attempts++

		_, err := b.processor.ProcessConcept(ctx, item.Name, item.Slug, item.Category)
		if err == nil {
			now := time.Now()
			item.Status = domain.QueueCompleted
			item.LastError = ""
			item.CompletedAt = &now
			return
		}

		item.LastError = err.Error()
		b.warn("concept attempt failed",
			"slug", item.Slug, "attempt", item.Attempts, "error", err)

		if errors.Is(err, context.Canceled) {
			break
		}
		if !ports.IsTransient(err) || item.Attempts >= b.maxAttempts {
			break
		}

		backoff := b.baseBackoff << (item.Attempts - 1)
		if sleepErr := b.sleep(ctx, backoff); sleepErr != nil {
			break
		}
	}

	if item.Attempts >= b.maxAttempts {
		item.Status = domain.QueueFailed
	} else {
		item.Status = domain.QueuePending
	}
}

func (b *Bulk) alreadyVerified(ctx context.Context, slug string) bool {
	if b.entries == nil || slug == "" {
		return false
	}
	entry, err := b.entries.Get(ctx, slug)
	if err != nil {
		return false
	}
	return entry.Status == domain.EntryVerified
}

func (b *Bulk) finishItem(ctx context.Context, items []domain.QueueItem, item *domain.QueueItem) {
	if err := b.queue.Save(ctx, items); err != nil {
		b.warn("queue save failed", "slug", item.Slug, "error", err)
	}
}

func (b *Bulk) warn(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Warn(msg, args...)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
