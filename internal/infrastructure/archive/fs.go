package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

// Articles below these thresholds are navigation stubs, category pages and
// image posts; they add noise to retrieval without adding evidence.
const (
	minArticleWords = 80
	minArticleChars = 400
)

// snapshotRecord is one exported WordPress post in the archive snapshot.
// Content arrives as rendered HTML.
type snapshotRecord struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	PublishedAt string `json:"publishedAt"`
}

// FSSource loads the archive from a JSON snapshot file on local disk.
type FSSource struct {
	path   string
	logger *slog.Logger
}

var _ ports.ArchiveSource = (*FSSource)(nil)

// NewFSSource wires the snapshot path.
func NewFSSource(path string, logger *slog.Logger) *FSSource {
	return &FSSource{path: path, logger: logger}
}

// LoadAll parses the snapshot and returns every article that clears the
// corpus minimums. A missing snapshot is an empty archive; malformed records
// are skipped individually.
func (s *FSSource) LoadAll(_ context.Context) ([]domain.ArchiveArticle, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		if s.logger != nil {
			s.logger.Warn("archive snapshot missing", "path", s.path)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read archive snapshot: %w", err)
	}

	var records []snapshotRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse archive snapshot: %w", err)
	}

	articles := make([]domain.ArchiveArticle, 0, len(records))
	skipped := 0
	for _, rec := range records {
		article, ok := s.buildArticle(rec)
		if !ok {
			skipped++
			continue
		}
		articles = append(articles, article)
	}
	if s.logger != nil {
		s.logger.Info("archive snapshot loaded",
			"articles", len(articles), "skipped", skipped)
	}
	return articles, nil
}

func (s *FSSource) buildArticle(rec snapshotRecord) (domain.ArchiveArticle, bool) {
	if rec.Title == "" || rec.Content == "" {
		return domain.ArchiveArticle{}, false
	}

	text := StripHTML(rec.Content)
	words := len(strings.Fields(text))
	if words < minArticleWords || len([]rune(text)) < minArticleChars {
		return domain.ArchiveArticle{}, false
	}

	var published time.Time
	if rec.PublishedAt != "" {
		parsed, err := time.Parse(time.RFC3339, rec.PublishedAt)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", rec.PublishedAt)
		}
		if err != nil {
			if s.logger != nil {
				s.logger.Debug("unparsable publish date", "id", rec.ID, "value", rec.PublishedAt)
			}
		} else {
			published = parsed
		}
	}

	return domain.ArchiveArticle{
		ID:          rec.ID,
		Title:       strings.TrimSpace(rec.Title),
		URL:         rec.URL,
		Text:        text,
		WordCount:   words,
		PublishedAt: published,
	}, true
}

// StripHTML reduces rendered post HTML to paragraph-delimited plain text.
// Paragraph and heading boundaries become blank lines so downstream chunking
// sees the same structure the reader did.
func StripHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	doc.Find("script, style").Remove()

	var paragraphs []string
	doc.Find("p, h1, h2, h3, h4, li, blockquote").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return strings.TrimSpace(doc.Text())
	}
	return strings.Join(paragraphs, "\n\n")
}
