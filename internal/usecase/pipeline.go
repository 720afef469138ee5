package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/orenlebo/cannapedia/internal/contextagg"
	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/factcheck"
	"github.com/orenlebo/cannapedia/internal/ports"
	"github.com/orenlebo/cannapedia/internal/verification"
)

// PipelineDeps wires all collaborators into the factory pipeline.
type PipelineDeps struct {
	Aggregator *contextagg.Aggregator
	Drafter    ports.Drafter
	Gate       *factcheck.Gate
	Entries    ports.EntryStore
	Verifier   *verification.Service
	Logger     *slog.Logger
	Now        func() time.Time
}

// Pipeline runs one concept end-to-end: aliases → context → draft →
// fact-check → verification decision → persist → notify.
type Pipeline struct {
	aggregator *contextagg.Aggregator
	drafter    ports.Drafter
	gate       *factcheck.Gate
	entries    ports.EntryStore
	verifier   *verification.Service
	logger     *slog.Logger
	now        func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		aggregator: deps.Aggregator,
		drafter:    deps.Drafter,
		gate:       deps.Gate,
		entries:    deps.Entries,
		verifier:   deps.Verifier,
		logger:     deps.Logger,
		now:        now,
	}
}

// ProcessConcept generates, gates, and persists one encyclopedia entry. A
// drafting failure is fatal for this attempt; fact-check failures fail closed
// inside the gate and never abort the item.
func (p *Pipeline) ProcessConcept(ctx context.Context, name, slug, category string) (domain.Entry, error) {
	if p.drafter == nil {
		return domain.Entry{}, fmt.Errorf("drafter is not configured")
	}
	if slug == "" {
		slug = domain.Slugify(name)
	}

	aliases, err := p.drafter.SuggestAliases(ctx, name, category)
	if err != nil {
		// Best effort: the concept name alone still drives retrieval.
		p.warn("alias suggestion failed", "concept", name, "error", err)
		aliases = nil
	}

	bundle := p.aggregator.Gather(ctx, name, aliases, []string{category})
	p.debug("context gathered", "concept", name,
		"hasContext", bundle.HasContext, "sources", len(bundle.Sources))

	entry, err := p.drafter.Draft(ctx, ports.DraftRequest{
		Name:       name,
		Category:   category,
		Aliases:    aliases,
		Context:    bundle.ContextText,
		HasContext: bundle.HasContext,
	})
	if err != nil {
		return domain.Entry{}, fmt.Errorf("draft %s: %w", name, err)
	}

	entry.Name = name
	entry.Slug = slug
	entry.Category = category
	entry.Sources = bundle.Sources
	entry.SourceType = domain.SourceTypeArchive
	if !bundle.HasContext {
		entry.SourceType = domain.SourceTypeGlobalAI
	}
	if len(entry.Aliases) == 0 {
		entry.Aliases = aliases
	}

	verdict := p.gate.Check(ctx, entry, bundle.ContextText)
	entry.ConfidenceScore = verdict.ConfidenceScore
	entry.RiskLevel = verdict.RiskLevel
	entry.UnverifiedClaims = verdict.UnverifiedClaims

	decision := verification.Decide(verdict, bundle.HasContext)
	entry.Status = decision.Status
	entry.NeedsHumanReview = decision.NeedsHumanReview
	entry.GeneratedAt = p.now()

	if err := p.entries.Save(ctx, entry); err != nil {
		return domain.Entry{}, fmt.Errorf("save entry %s: %w", slug, err)
	}

	// Notification runs strictly after persistence; its failure is logged
	// inside the verifier and never fails the item.
	if entry.Status == domain.EntryPending && p.verifier != nil {
		p.verifier.NotifyPending(ctx, entry)
	}

	return entry, nil
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
