package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orenlebo/cannapedia/internal/config"
	"github.com/orenlebo/cannapedia/internal/contextagg"
	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/factcheck"
	"github.com/orenlebo/cannapedia/internal/infrastructure/archive"
	"github.com/orenlebo/cannapedia/internal/infrastructure/channels"
	"github.com/orenlebo/cannapedia/internal/infrastructure/llm"
	"github.com/orenlebo/cannapedia/internal/infrastructure/scheduler"
	"github.com/orenlebo/cannapedia/internal/infrastructure/store"
	"github.com/orenlebo/cannapedia/internal/infrastructure/telegram"
	"github.com/orenlebo/cannapedia/internal/logging"
	"github.com/orenlebo/cannapedia/internal/ports"
	"github.com/orenlebo/cannapedia/internal/products"
	"github.com/orenlebo/cannapedia/internal/ratelimit"
	"github.com/orenlebo/cannapedia/internal/retrieval"
	"github.com/orenlebo/cannapedia/internal/search"
	"github.com/orenlebo/cannapedia/internal/usecase"
	"github.com/orenlebo/cannapedia/internal/verification"
)

// Application wires configuration to use cases and owns shared resources.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	bulk     *usecase.Bulk
	sweep    *usecase.Sweep
	verifier *verification.Service
	matcher  *products.Matcher
	entries  ports.EntryStore
	closers  []func() error
}

// New builds a runnable application instance. Missing credentials disable
// the matching collaborator rather than failing startup; only the entry
// store is mandatory.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	a := &Application{cfg: cfg, logger: baseLogger}

	entries, err := store.NewEntryStore(cfg.Store.EntriesDir, baseLogger.With("component", "store.entries"))
	if err != nil {
		return nil, fmt.Errorf("entry store: %w", err)
	}
	a.entries = entries
	queue := store.NewQueueStore(cfg.Store.QueuePath)
	catalog := store.NewCatalogSource(cfg.Store.CatalogPath, baseLogger.With("component", "store.catalog"))

	source, err := a.buildArchiveSource(ctx, baseLogger)
	if err != nil {
		return nil, err
	}

	retriever := retrieval.NewRetriever(source, baseLogger.With("component", "retriever"))
	aggregator := contextagg.New(retriever, a.buildChannels(baseLogger),
		cfg.Retrieval.MaxArticles, cfg.Retrieval.MaxTotalChunks,
		baseLogger.With("component", "aggregator"))

	var (
		drafter ports.Drafter
		checker ports.ClaimChecker
	)
	if cfg.LLM.APIKey != "" {
		client := llm.NewClient(cfg.LLM)
		drafter = llm.NewDrafter(client, cfg.Store.RawOutputDir, baseLogger.With("component", "drafter"))
		checker = llm.NewChecker(client)
	} else {
		baseLogger.Warn("llm api key missing; generation commands will fail")
	}

	notifier := a.buildNotifier(baseLogger)
	a.verifier = verification.NewService(entries, notifier, baseLogger.With("component", "verification"))
	a.matcher = products.NewMatcher(catalog, baseLogger.With("component", "products"))

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Aggregator: aggregator,
		Drafter:    drafter,
		Gate:       factcheck.NewGate(checker, baseLogger.With("component", "factcheck")),
		Entries:    entries,
		Verifier:   a.verifier,
		Logger:     baseLogger.With("component", "pipeline"),
	})
	a.bulk = usecase.NewBulk(usecase.BulkDeps{
		Processor:   a.pipeline,
		Queue:       queue,
		Entries:     entries,
		MaxAttempts: cfg.Bulk.MaxAttempts,
		ItemDelay:   cfg.Bulk.ItemDelay(),
		BaseBackoff: cfg.Bulk.Backoff(),
		Logger:      baseLogger.With("component", "bulk"),
	})
	a.sweep = usecase.NewSweep(entries, queue, cfg.Sweep.CutoffYear, baseLogger.With("component", "sweep"))

	return a, nil
}

func (a *Application) buildArchiveSource(ctx context.Context, logger *slog.Logger) (ports.ArchiveSource, error) {
	if a.cfg.Database.DSN == "" {
		return archive.NewFSSource(a.cfg.Archive.SnapshotPath, logger.With("component", "archive.fs")), nil
	}
	pg, err := archive.OpenPostgres(ctx, a.cfg.Database.DSN, logger.With("component", "archive.pg"))
	if err != nil {
		return nil, fmt.Errorf("archive database: %w", err)
	}
	a.closers = append(a.closers, pg.Close)
	return pg, nil
}

func (a *Application) buildChannels(logger *slog.Logger) []ports.ContextChannel {
	return []ports.ContextChannel{
		channels.NewMagazine(a.cfg.Channels.MagazineSearchURL, nil, logger.With("channel", "magazine")),
		channels.NewMirror(a.cfg.Channels.MirrorBaseURL, nil, logger.With("channel", "mirror")),
		channels.NewWebSearch(a.cfg.Channels.WebSearch.Endpoint, a.cfg.Channels.WebSearch.APIKey,
			nil, logger.With("channel", "websearch")),
	}
}

// buildNotifier returns the Telegram notifier wrapped in a per-slug throttle,
// or nil when unconfigured. One pending entry should produce one ping per
// day even if the bulk driver regenerates it repeatedly.
func (a *Application) buildNotifier(logger *slog.Logger) ports.Notifier {
	tg := a.cfg.Notifications.Telegram
	if tg.BotToken == "" || tg.ChatID == 0 {
		logger.Warn("telegram notifier unconfigured; review notifications disabled")
		return nil
	}
	notifier, err := telegram.NewNotifier(tg.BotToken, tg.ChatID)
	if err != nil {
		logger.Warn("telegram notifier unavailable", "error", err)
		return nil
	}
	return &throttledNotifier{
		inner:  notifier,
		limits: ratelimit.New(nil),
	}
}

// throttledNotifier drops repeat review notifications for the same slug
// within the throttle window.
type throttledNotifier struct {
	inner  ports.Notifier
	limits *ratelimit.Store
}

const notifyWindow = 24 * time.Hour

func (t *throttledNotifier) NotifyReview(ctx context.Context, n domain.ReviewNotification) error {
	if !t.limits.Allow("review:"+n.Slug, 1, notifyWindow) {
		return nil
	}
	return t.inner.NotifyReview(ctx, n)
}

// Close releases pooled resources.
func (a *Application) Close() {
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			a.logger.Warn("close resource", "error", err)
		}
	}
}

// Generate runs the full pipeline for one concept and prints the outcome.
func (a *Application) Generate(ctx context.Context, name, category string) error {
	entry, err := a.pipeline.ProcessConcept(ctx, name, "", category)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s): status=%s confidence=%.2f risk=%s sources=%d\n",
		entry.Name, entry.Slug, entry.Status, entry.ConfidenceScore, entry.RiskLevel, len(entry.Sources))
	return nil
}

// RunBulk drains the pending queue once.
func (a *Application) RunBulk(ctx context.Context) error {
	return a.bulk.Run(ctx)
}

// RunSweep re-queues stale entries once.
func (a *Application) RunSweep(ctx context.Context) error {
	added, err := a.sweep.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("re-queued %d stale entries\n", added)
	return nil
}

// Serve schedules the staleness sweep followed by a bulk run and blocks
// until interrupted.
func (a *Application) Serve(ctx context.Context) error {
	cron, err := scheduler.New(a.cfg.Sweep.Timezone, a.logger.With("component", "scheduler"))
	if err != nil {
		return err
	}
	err = cron.Schedule(a.cfg.Sweep.CronExpression, func() {
		if _, err := a.sweep.Run(ctx); err != nil {
			a.logger.Error("scheduled sweep failed", "error", err)
			return
		}
		if err := a.bulk.Run(ctx); err != nil {
			a.logger.Error("scheduled bulk run failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	cron.Start()
	defer cron.Stop()

	stop, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-stop.Done()
	return nil
}

// Approve promotes a pending entry to verified.
func (a *Application) Approve(ctx context.Context, slug string) error {
	if err := a.verifier.Approve(ctx, slug); err != nil {
		return err
	}
	fmt.Printf("approved %s\n", slug)
	return nil
}

// Search ranks the published corpus against a query and prints the top hits.
func (a *Application) Search(ctx context.Context, query string) error {
	published, err := a.verifier.ListPublished(ctx)
	if err != nil {
		return err
	}
	indexed := make([]search.IndexedEntry, 0, len(published))
	for _, e := range published {
		indexed = append(indexed, search.IndexedEntry{
			Name:     e.Name,
			Slug:     e.Slug,
			Category: e.Category,
			Aliases:  e.Aliases,
			Body:     e.Summary + "\n" + e.Body,
		})
	}

	results := search.Rank(indexed, query, 10)
	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%4d  %s (%s)\n", r.Score, r.Entry.Name, r.Entry.Slug)
	}
	return nil
}

// Products prints catalog products relevant to one entry.
func (a *Application) Products(ctx context.Context, slug string) error {
	entry, err := a.entries.Get(ctx, slug)
	if err != nil {
		return err
	}
	matches, err := a.matcher.Find(ctx, append([]string{entry.Name}, entry.Aliases...), 4)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("no matching products")
		return nil
	}
	for _, p := range matches {
		fmt.Printf("%s  %s\n", p.Name, p.Link)
	}
	return nil
}
