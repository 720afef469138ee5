package contextagg

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
	"github.com/orenlebo/cannapedia/internal/retrieval"
)

// Bundle is the merged evidentiary context handed to the drafting
// collaborator.
type Bundle struct {
	ContextText string
	Sources     []domain.Source
	HasContext  bool
	Archive     domain.RetrievalResult
}

// Aggregator merges the local-archive bundle with the external context
// channels in a fixed recency-priority concatenation order: archive first,
// then the channels in their registered order, so the most time-sensitive
// source reads freshest-in-context. Newer sources override older ones when
// they conflict, and the prompt downstream says so.
type Aggregator struct {
	retriever *retrieval.Retriever
	channels  []ports.ContextChannel
	logger    *slog.Logger

	maxArticles    int
	maxTotalChunks int
}

// New wires the archive retriever and the external channels. The channel
// slice order is the concatenation order after the archive block.
func New(retriever *retrieval.Retriever, channels []ports.ContextChannel, maxArticles, maxTotalChunks int, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		retriever:      retriever,
		channels:       channels,
		logger:         logger,
		maxArticles:    maxArticles,
		maxTotalChunks: maxTotalChunks,
	}
}

// Gather fans out across the archive and all channels concurrently; the four
// reads are independent, only the final concatenation order is fixed. Any
// channel failure contributes nothing.
func (g *Aggregator) Gather(ctx context.Context, name string, aliases, broadLabels []string) Bundle {
	var archive domain.RetrievalResult
	results := make([]ports.ChannelResult, len(g.channels))

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		res, err := g.retriever.Retrieve(gctx, name, aliases, broadLabels, g.maxArticles, g.maxTotalChunks)
		if err != nil {
			g.warn("archive retrieval failed", "error", err)
			return nil
		}
		archive = res
		return nil
	})
	for i, ch := range g.channels {
		i, ch := i, ch
		eg.Go(func() error {
			res, err := ch.Fetch(gctx, name, aliases)
			if err != nil {
				g.warn("context channel failed", "channel", ch.Name(), "error", err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = eg.Wait()

	var blocks []string
	var sources []domain.Source
	seen := map[string]struct{}{}

	appendSources := func(src []domain.Source) {
		for _, s := range src {
			if _, ok := seen[s.URL]; ok {
				continue
			}
			seen[s.URL] = struct{}{}
			sources = append(sources, s)
		}
	}

	if len(archive.Chunks) > 0 {
		blocks = append(blocks, formatArchiveBlock(archive))
		appendSources(archive.Sources)
	}
	for i, res := range results {
		text := strings.TrimSpace(res.ContextText)
		if text == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("== %s ==\n%s", g.channels[i].Name(), text))
		appendSources(res.Sources)
	}

	return Bundle{
		ContextText: strings.Join(blocks, "\n\n"),
		Sources:     sources,
		HasContext:  len(blocks) > 0,
		Archive:     archive,
	}
}

func formatArchiveBlock(res domain.RetrievalResult) string {
	var b strings.Builder
	b.WriteString("== ארכיון המגזין ==\n")
	for _, c := range res.Chunks {
		fmt.Fprintf(&b, "\n### %s (%s)\n%s\n", c.Title, c.PublishedAt.Format("2006-01-02"), c.Text)
	}
	return strings.TrimSpace(b.String())
}

func (g *Aggregator) warn(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Warn(msg, args...)
	}
}
