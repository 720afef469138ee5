package channels

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

const mirrorMaxChars = 2500

// Mirror reads the public encyclopedia mirror, which carries older entries
// for the same concepts. A previous generation of an entry is useful grounding
// for regenerating it; a missing page simply means the concept is new.
type Mirror struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ ports.ContextChannel = (*Mirror)(nil)

// NewMirror wires the mirror base URL; empty URL disables the channel.
func NewMirror(baseURL string, client *http.Client, logger *slog.Logger) *Mirror {
	return &Mirror{baseURL: strings.TrimRight(baseURL, "/"), client: defaultClient(client), logger: logger}
}

// Name identifies the channel in context blocks and logs.
func (m *Mirror) Name() string {
	return "מראה האנציקלופדיה"
}

// Fetch tries the concept's mirror page by slug, falling back to each alias.
// The first page with real body text wins.
func (m *Mirror) Fetch(ctx context.Context, name string, aliases []string) (ports.ChannelResult, error) {
	if m.baseURL == "" {
		return ports.ChannelResult{}, nil
	}

	for _, candidate := range append([]string{name}, aliases...) {
		slug := domain.Slugify(candidate)
		if slug == "" {
			continue
		}
		pageURL := m.baseURL + "/" + url.PathEscape(slug)
		doc, err := fetchDocument(ctx, m.client, pageURL)
		if err != nil {
			if m.logger != nil {
				m.logger.Debug("mirror page unavailable", "slug", slug, "error", err)
			}
			continue
		}

		text := extractBody(doc)
		if text == "" {
			continue
		}
		title := strings.TrimSpace(doc.Find("h1").First().Text())
		if title == "" {
			title = name
		}
		return ports.ChannelResult{
			ContextText: truncateRunes(text, mirrorMaxChars),
			Sources:     []domain.Source{{Title: title, URL: pageURL}},
		}, nil
	}
	return ports.ChannelResult{}, nil
}

func extractBody(doc *goquery.Document) string {
	var paragraphs []string
	doc.Find("main p, article p, .entry-content p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n")
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
