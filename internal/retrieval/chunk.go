package retrieval

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/orenlebo/cannapedia/internal/domain"
)

const (
	// ChunkTargetWords is the approximate word budget of one chunk.
	ChunkTargetWords = 400
	// MaxChunksPerArticle caps how much one article may contribute.
	MaxChunksPerArticle = 3

	minParagraphChars = 30
	fallbackMaxChars  = 2000
)

var paragraphSplit = regexp.MustCompile(`\r?\n\s*\r?\n`)

// ChunkArticle splits an article into at most maxChunks chunks of roughly
// targetWords words, breaking only at paragraph boundaries. Paragraphs under
// the noise floor are discarded. If no paragraph survives, the raw text is
// returned truncated as a single chunk, so non-empty input never yields an
// empty chunk list.
func ChunkArticle(a domain.ArchiveArticle, targetWords, maxChunks int) []domain.RetrievedChunk {
	if strings.TrimSpace(a.Text) == "" {
		return nil
	}
	if targetWords <= 0 {
		targetWords = ChunkTargetWords
	}
	if maxChunks <= 0 {
		maxChunks = MaxChunksPerArticle
	}

	var paragraphs []string
	for _, p := range paragraphSplit.Split(a.Text, -1) {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) < minParagraphChars {
			continue
		}
		paragraphs = append(paragraphs, p)
	}

	if len(paragraphs) == 0 {
		return []domain.RetrievedChunk{newChunk(a, 0, truncateRunes(a.Text, fallbackMaxChars))}
	}

	var (
		chunks   []domain.RetrievedChunk
		current  []string
		curWords int
	)
	flush := func() {
		chunks = append(chunks, newChunk(a, len(chunks), strings.Join(current, "\n\n")))
		current = nil
		curWords = 0
	}

	for _, p := range paragraphs {
		words := len(strings.Fields(p))
		if curWords > 0 && curWords+words > targetWords {
			flush()
			if len(chunks) >= maxChunks {
				return chunks
			}
		}
		current = append(current, p)
		curWords += words
	}
	if len(current) > 0 {
		flush()
	}

	return chunks
}

func newChunk(a domain.ArchiveArticle, index int, text string) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		ArticleID:   a.ID,
		Title:       a.Title,
		URL:         a.URL,
		PublishedAt: a.PublishedAt,
		Index:       index,
		Text:        text,
	}
}

func truncateRunes(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
