package verification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

// MinConfidence is the auto-verification confidence threshold.
const MinConfidence = 0.85

// Decision is the gate outcome applied to an entry before persistence.
type Decision struct {
	Status           domain.EntryStatus
	NeedsHumanReview bool
}

// Decide applies the verification gate: an entry auto-verifies only when
// confidence clears the threshold, risk is not high, and the context bundle
// was non-empty. An entry generated with zero supporting sources can never
// auto-verify, regardless of its confidence score.
func Decide(v domain.Verdict, hasContext bool) Decision {
	if v.ConfidenceScore >= MinConfidence && v.RiskLevel != domain.RiskHigh && hasContext {
		return Decision{Status: domain.EntryVerified}
	}
	return Decision{Status: domain.EntryPending, NeedsHumanReview: true}
}

// Service persists verification state and handles the human approval path.
type Service struct {
	store    ports.EntryStore
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewService wires the entry store and the review notifier.
func NewService(store ports.EntryStore, notifier ports.Notifier, logger *slog.Logger) *Service {
	return &Service{store: store, notifier: notifier, logger: logger}
}

// Approve flips a pending entry to verified. Human-triggered only; approving
// an already-verified entry is a no-op that succeeds.
func (s *Service) Approve(ctx context.Context, slug string) error {
	entry, err := s.store.Get(ctx, slug)
	if err != nil {
		return fmt.Errorf("load entry %s: %w", slug, err)
	}

	if entry.Status == domain.EntryVerified {
		return nil
	}

	entry.Status = domain.EntryVerified
	entry.NeedsHumanReview = false
	if err := s.store.Save(ctx, entry); err != nil {
		return fmt.Errorf("save entry %s: %w", slug, err)
	}
	return nil
}

// NotifyPending sends the review notification for a pending entry. Delivery
// failure is logged only; verification status is already persisted by the
// time this runs.
func (s *Service) NotifyPending(ctx context.Context, entry domain.Entry) {
	if s.notifier == nil {
		return
	}

	titles := make([]string, 0, len(entry.Sources))
	for _, src := range entry.Sources {
		titles = append(titles, src.Title)
	}

	err := s.notifier.NotifyReview(ctx, domain.ReviewNotification{
		Name:             entry.Name,
		Slug:             entry.Slug,
		Category:         entry.Category,
		ConfidenceScore:  entry.ConfidenceScore,
		RiskLevel:        entry.RiskLevel,
		UnverifiedClaims: entry.UnverifiedClaims,
		SourceTitles:     titles,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("review notification failed", "slug", entry.Slug, "error", err)
	}
}

// GetPublished looks up an entry by slug for the public site. Pending entries
// are treated as not-found.
func (s *Service) GetPublished(ctx context.Context, slug string) (domain.Entry, error) {
	entry, err := s.store.Get(ctx, slug)
	if err != nil {
		return domain.Entry{}, err
	}
	if entry.Status != domain.EntryVerified {
		return domain.Entry{}, ports.ErrNotFound
	}
	return entry, nil
}

// ListPublished returns only verified entries for public listings.
func (s *Service) ListPublished(ctx context.Context) ([]domain.Entry, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	published := make([]domain.Entry, 0, len(all))
	for _, e := range all {
		if e.Status == domain.EntryVerified {
			published = append(published, e)
		}
	}
	return published, nil
}

// ListAll exposes every entry, pending included, for privileged tooling.
func (s *Service) ListAll(ctx context.Context) ([]domain.Entry, error) {
	return s.store.List(ctx)
}
