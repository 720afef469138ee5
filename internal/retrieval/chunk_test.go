package retrieval

import (
	"strings"
	"testing"

	"github.com/orenlebo/cannapedia/internal/domain"
)

func paragraph(word string, count int) string {
	return strings.TrimSpace(strings.Repeat(word+" ", count))
}

func TestChunkArticleAccumulatesParagraphs(t *testing.T) {
	t.Parallel()

	// Three 300-word paragraphs against a 400-word target: the second
	// paragraph overflows the first chunk, the third overflows the second.
	text := strings.Join([]string{
		paragraph("אחד", 300),
		paragraph("שתיים", 300),
		paragraph("שלוש", 300),
	}, "\n\n")

	a := domain.ArchiveArticle{ID: 7, Title: "מבחן", Text: text}
	chunks := ChunkArticle(a, 400, 3)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Fatalf("chunk %d has index %d", i, c.Index)
		}
		if c.ArticleID != 7 {
			t.Fatalf("chunk missing parent article id")
		}
	}
}

func TestChunkArticleHardCap(t *testing.T) {
	t.Parallel()

	parts := make([]string, 10)
	for i := range parts {
		parts[i] = paragraph("מילה", 500)
	}
	a := domain.ArchiveArticle{ID: 1, Text: strings.Join(parts, "\n\n")}

	chunks := ChunkArticle(a, 400, 3)
	if len(chunks) != 3 {
		t.Fatalf("expected hard cap of 3 chunks, got %d", len(chunks))
	}
}

func TestChunkArticleDiscardsNoiseParagraphs(t *testing.T) {
	t.Parallel()

	text := "קצר\n\n" + paragraph("ארוך", 50) + "\n\nגם קצר"
	a := domain.ArchiveArticle{ID: 1, Text: text}

	chunks := ChunkArticle(a, 400, 3)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if strings.Contains(chunks[0].Text, "קצר") {
		t.Fatalf("noise paragraph leaked into chunk: %q", chunks[0].Text)
	}
}

func TestChunkArticleFallbackWhenNoParagraphSurvives(t *testing.T) {
	t.Parallel()

	a := domain.ArchiveArticle{ID: 1, Text: "שורה\n\nקצרה\n\nבלבד"}
	chunks := ChunkArticle(a, 400, 3)

	if len(chunks) != 1 {
		t.Fatalf("expected single fallback chunk, got %d", len(chunks))
	}
	if chunks[0].Text == "" {
		t.Fatalf("fallback chunk must not be empty")
	}
}

func TestChunkArticleEmptyText(t *testing.T) {
	t.Parallel()

	if chunks := ChunkArticle(domain.ArchiveArticle{Text: "   "}, 400, 3); chunks != nil {
		t.Fatalf("expected nil for blank text, got %v", chunks)
	}
}
