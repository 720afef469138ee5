package ports

import (
	"context"
	"errors"

	"github.com/orenlebo/cannapedia/internal/domain"
)

// ErrNotFound is returned by stores when a slug has no entry.
var ErrNotFound = errors.New("entry not found")

// ErrTransient marks rate-limit or transient server failures that the bulk
// driver may retry with backoff.
var ErrTransient = errors.New("transient upstream failure")

// IsTransient reports whether err carries the retryable marker.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// ArchiveSource enumerates all archive articles meeting the corpus minimums.
type ArchiveSource interface {
	LoadAll(ctx context.Context) ([]domain.ArchiveArticle, error)
}

// ChannelResult is the common shape of every external context lookup.
type ChannelResult struct {
	ContextText string
	Sources     []domain.Source
}

// ContextChannel performs one external lookup for a concept. Implementations
// convert network failures and missing credentials into an empty result; the
// aggregator never sees exceptions from these channels, only absence.
type ContextChannel interface {
	Name() string
	Fetch(ctx context.Context, name string, aliases []string) (ChannelResult, error)
}

// DraftRequest carries everything the drafting collaborator needs.
type DraftRequest struct {
	Name       string
	Category   string
	Aliases    []string
	Context    string
	HasContext bool
}

// Drafter generates entry content via an external model. Draft must support
// HasContext=false and still return a best-effort entry.
type Drafter interface {
	SuggestAliases(ctx context.Context, name, category string) ([]string, error)
	Draft(ctx context.Context, req DraftRequest) (domain.Entry, error)
}

// ClaimChecker submits an entry plus its context bundle for claim-level
// verification.
type ClaimChecker interface {
	CheckClaims(ctx context.Context, entry domain.Entry, contextText string) (domain.ClaimReport, error)
}

// Notifier delivers review notifications best-effort; delivery failure must
// never fail the pipeline.
type Notifier interface {
	NotifyReview(ctx context.Context, n domain.ReviewNotification) error
}

// EntryStore persists one entry per slug. The store, not the payload, is the
// authority on slugs.
type EntryStore interface {
	Save(ctx context.Context, entry domain.Entry) error
	Get(ctx context.Context, slug string) (domain.Entry, error)
	List(ctx context.Context) ([]domain.Entry, error)
}

// QueueStore reads and atomically rewrites the bulk-driver queue file.
type QueueStore interface {
	Load(ctx context.Context) ([]domain.QueueItem, error)
	Save(ctx context.Context, items []domain.QueueItem) error
}

// CatalogSource loads the commerce catalog snapshot fresh per call. A missing
// or unparsable snapshot yields an empty catalog, not an error.
type CatalogSource interface {
	Load(ctx context.Context) ([]domain.CatalogEntry, error)
}
