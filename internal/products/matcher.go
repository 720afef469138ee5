package products

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

const (
	attributeScore = 10
	tagScore       = 8
	tagScoreCap    = 18
	nameScore      = 3
	flowerBonus    = 5

	poolFactor = 2
)

// flower/bud product categories get a flat display bonus.
var flowerCategories = []string{"תפרחות", "פרחים", "flower", "flowers", "bud"}

// Match pairs a catalog entry with its relevance score.
type Match struct {
	Entry domain.CatalogEntry
	Score int
}

// Matcher ranks commerce catalog entries against a concept's aliases. The
// catalog is read fresh per call so matches reflect the latest snapshot.
type Matcher struct {
	catalog ports.CatalogSource
	logger  *slog.Logger
}

// NewMatcher wires a catalog source.
func NewMatcher(catalog ports.CatalogSource, logger *slog.Logger) *Matcher {
	return &Matcher{catalog: catalog, logger: logger}
}

// Find returns up to n in-stock products relevant to the aliases. The result
// order is diversified deterministically: identical catalog and aliases
// always produce the identical order.
func (m *Matcher) Find(ctx context.Context, aliases []string, n int) ([]domain.CatalogEntry, error) {
	if m.catalog == nil || n <= 0 {
		return nil, nil
	}

	entries, err := m.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	lowered := make([]string, 0, len(aliases))
	for _, a := range aliases {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			lowered = append(lowered, a)
		}
	}

	var scored []Match
	for _, e := range entries {
		if !e.InStock {
			continue
		}
		score := scoreEntry(e, lowered)
		if score == 0 {
			continue
		}
		scored = append(scored, Match{Entry: e, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	pool := scored
	if len(pool) > poolFactor*n {
		pool = pool[:poolFactor*n]
	}
	diversify(pool)

	if len(pool) > n {
		pool = pool[:n]
	}
	out := make([]domain.CatalogEntry, len(pool))
	for i, match := range pool {
		out[i] = match.Entry
	}
	return out, nil
}

func scoreEntry(e domain.CatalogEntry, aliases []string) int {
	score := 0

attributes:
	for _, value := range e.Attributes {
		lv := strings.ToLower(value)
		for _, alias := range aliases {
			if strings.Contains(lv, alias) {
				score += attributeScore
				break attributes
			}
		}
	}

	tagPoints := 0
	for _, tag := range e.Tags {
		lt := strings.ToLower(tag)
		for _, alias := range aliases {
			if strings.Contains(lt, alias) {
				tagPoints += tagScore
				break
			}
		}
	}
	if tagPoints > tagScoreCap {
		tagPoints = tagScoreCap
	}
	score += tagPoints

	name := strings.ToLower(e.Name)
	for _, alias := range aliases {
		if strings.Contains(name, alias) {
			score += nameScore
			break
		}
	}

	if isFlowerProduct(e) {
		score += flowerBonus
	}

	return score
}

func isFlowerProduct(e domain.CatalogEntry) bool {
	for _, cat := range e.Categories {
		lc := strings.ToLower(cat)
		for _, marker := range flowerCategories {
			if strings.Contains(lc, marker) {
				return true
			}
		}
	}
	return false
}

// diversify is the stable display diversifier: a Fisher-Yates-shaped pass
// whose swap index is an arithmetic hash of score and position instead of
// randomness. Same score/position pairs always produce the same order, so
// repeated renders look varied but never flicker.
func diversify(pool []Match) {
	for i := len(pool) - 1; i >= 1; i-- {
		j := (pool[i].Score*31 + i*17) % (i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
}
