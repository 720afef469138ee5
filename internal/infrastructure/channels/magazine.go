package channels

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

const magazineMaxHits = 3

// Magazine queries the live magazine's WordPress search page and extracts
// result excerpts. Any failure degrades to an empty result; the live site is
// an enrichment over the archive, never a dependency.
type Magazine struct {
	searchURL string
	client    *http.Client
	logger    *slog.Logger
}

var _ ports.ContextChannel = (*Magazine)(nil)

// NewMagazine wires the search URL; empty URL disables the channel.
func NewMagazine(searchURL string, client *http.Client, logger *slog.Logger) *Magazine {
	return &Magazine{searchURL: searchURL, client: defaultClient(client), logger: logger}
}

// Name identifies the channel in context blocks and logs.
func (m *Magazine) Name() string {
	return "המגזין החי"
}

// Fetch searches the live site for the concept name and returns the top
// excerpts as context text.
func (m *Magazine) Fetch(ctx context.Context, name string, _ []string) (ports.ChannelResult, error) {
	if m.searchURL == "" {
		return ports.ChannelResult{}, nil
	}

	doc, err := fetchDocument(ctx, m.client, m.searchURL+"?s="+url.QueryEscape(name))
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("magazine search failed", "concept", name, "error", err)
		}
		return ports.ChannelResult{}, nil
	}

	var (
		blocks  []string
		sources []domain.Source
	)
	doc.Find("article").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= magazineMaxHits {
			return false
		}
		link := sel.Find("h2 a, h3 a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		excerpt := strings.TrimSpace(sel.Find(".entry-summary, .entry-content, p").First().Text())
		if title == "" || excerpt == "" {
			return true
		}
		blocks = append(blocks, fmt.Sprintf("%s\n%s", title, excerpt))
		if href != "" {
			sources = append(sources, domain.Source{Title: title, URL: href})
		}
		return true
	})

	return ports.ChannelResult{
		ContextText: strings.Join(blocks, "\n\n"),
		Sources:     sources,
	}, nil
}
