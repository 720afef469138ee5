package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
	"github.com/orenlebo/cannapedia/internal/terms"
)

// Retriever runs the expand → score → select → chunk → reorder pipeline over
// a fresh archive snapshot per call.
type Retriever struct {
	source      ports.ArchiveSource
	logger      *slog.Logger
	targetWords int
	maxPerArt   int
}

// NewRetriever wires an archive source with default chunking bounds.
func NewRetriever(source ports.ArchiveSource, logger *slog.Logger) *Retriever {
	return &Retriever{
		source:      source,
		logger:      logger,
		targetWords: ChunkTargetWords,
		maxPerArt:   MaxChunksPerArticle,
	}
}

// Retrieve scores every archived article against the expanded term sets,
// selects the top maxArticles by score, chunks them up to maxTotalChunks, and
// finally reorders the whole chunk list by publication date ascending so the
// consumer reads old evidence before new.
func (r *Retriever) Retrieve(ctx context.Context, name string, aliases, broadLabels []string, maxArticles, maxTotalChunks int) (domain.RetrievalResult, error) {
	if maxArticles <= 0 {
		maxArticles = 5
	}
	if maxTotalChunks <= 0 {
		maxTotalChunks = 10
	}

	articles, err := r.source.LoadAll(ctx)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("load archive: %w", err)
	}

	specific := terms.Expand(append([]string{name}, aliases...))
	broad := terms.Expand(broadLabels)

	result := domain.RetrievalResult{TotalScanned: len(articles)}

	var scored []ArticleScore
	for _, a := range articles {
		s := ScoreArticle(a, specific, broad)
		if s.Final <= 0 {
			continue
		}
		if s.HasSpecific {
			result.SpecificMatches++
		}
		if s.HasBroad {
			result.BroadMatches++
		}
		scored = append(scored, s)
	}
	result.Matched = len(scored)

	// Ties keep corpus order; only relative ranking is consumed.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Final > scored[j].Final
	})
	if len(scored) > maxArticles {
		scored = scored[:maxArticles]
	}

	var chunks []domain.RetrievedChunk
selection:
	for _, s := range scored {
		for _, c := range ChunkArticle(s.Article, r.targetWords, r.maxPerArt) {
			chunks = append(chunks, c)
			if len(chunks) >= maxTotalChunks {
				break selection
			}
		}
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].PublishedAt.Before(chunks[j].PublishedAt)
	})

	seen := map[int64]struct{}{}
	for _, c := range chunks {
		if _, ok := seen[c.ArticleID]; ok {
			continue
		}
		seen[c.ArticleID] = struct{}{}
		result.Sources = append(result.Sources, domain.Source{
			Title: c.Title,
			URL:   c.URL,
			Date:  c.PublishedAt,
		})
	}
	result.Chunks = chunks

	if r.logger != nil {
		r.logger.Debug("retrieval done",
			"scanned", result.TotalScanned,
			"matched", result.Matched,
			"chunks", len(result.Chunks))
	}

	return result, nil
}
