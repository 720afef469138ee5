package retrieval

import (
	"strings"

	"github.com/orenlebo/cannapedia/internal/domain"
)

const (
	titleHitScore    = 100
	contentHitWeight = 2
	contentHitCap    = 20
	densityThreshold = 3
	densityBonus     = 40

	recencyBaseYear = 2010
	recencyStep     = 0.1
	defaultYear     = 2015

	prPenalty    = 0.5
	broadPenalty = 0.3
)

// ArticleScore is the ephemeral scoring breakdown for one article against one
// retrieval request. Never persisted; recomputed per call.
type ArticleScore struct {
	Article       domain.ArchiveArticle
	TitleTagScore int
	ContentScore  int
	DensityBonus  int
	Recency       float64
	PRPenalty     float64
	BroadPenalty  float64
	HasSpecific   bool
	HasBroad      bool
	Final         float64
}

// ScoreArticle scores one article against the specific and broad term sets.
// Pure function of its inputs; a zero base score yields Final == 0 and the
// caller drops the article entirely.
func ScoreArticle(a domain.ArchiveArticle, specific, broad []string) ArticleScore {
	title := strings.ToLower(a.Title)
	content := strings.ToLower(a.Text)

	s := ArticleScore{Article: a, Recency: 1, PRPenalty: 1, BroadPenalty: 1}

	dense := false
	for _, term := range specific {
		hit := false
		if strings.Contains(title, term) {
			s.TitleTagScore += titleHitScore
			hit = true
		}
		if n := strings.Count(content, term); n > 0 {
			s.ContentScore += capInt(contentHitWeight*n, contentHitCap)
			if n >= densityThreshold {
				dense = true
			}
			hit = true
		}
		if hit {
			s.HasSpecific = true
		}
	}
	if dense {
		s.DensityBonus = densityBonus
	}

	for _, term := range broad {
		if strings.Contains(title, term) {
			s.TitleTagScore += titleHitScore
			s.HasBroad = true
		}
		if n := strings.Count(content, term); n > 0 {
			s.ContentScore += capInt(contentHitWeight*n, contentHitCap)
			s.HasBroad = true
		}
	}

	base := s.TitleTagScore + s.ContentScore + s.DensityBonus
	if base == 0 {
		return s
	}

	year := a.PublishedAt.Year()
	if a.PublishedAt.IsZero() {
		year = defaultYear
	}
	// Deliberately uncapped in both directions.
	s.Recency = 1 + float64(year-recencyBaseYear)*recencyStep

	if s.TitleTagScore == 0 {
		s.PRPenalty = prPenalty
	}
	if s.HasBroad && !s.HasSpecific {
		s.BroadPenalty = broadPenalty
	}

	s.Final = float64(base) * s.Recency * s.PRPenalty * s.BroadPenalty
	return s
}

func capInt(v, max int) int {
	if v > max {
		return max
	}
	return v
}
