package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

const (
	webSearchMaxHits      = 2
	webSearchMaxCharsEach = 1500
)

type searchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// searchResponse is the JSON search API shape.
type searchResponse struct {
	Results []searchHit `json:"results"`
}

// WebSearch queries a JSON search API and extracts readable text from the top
// hits. Without an API key the channel is silently disabled.
type WebSearch struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.ContextChannel = (*WebSearch)(nil)

// NewWebSearch wires the search endpoint and key.
func NewWebSearch(endpoint, apiKey string, client *http.Client, logger *slog.Logger) *WebSearch {
	return &WebSearch{endpoint: endpoint, apiKey: apiKey, client: defaultClient(client), logger: logger}
}

// Name identifies the channel in context blocks and logs.
func (w *WebSearch) Name() string {
	return "חיפוש רשת"
}

// Fetch searches the web for the concept and returns readable extracts of the
// top hits. Every failure path yields an empty result.
func (w *WebSearch) Fetch(ctx context.Context, name string, _ []string) (ports.ChannelResult, error) {
	if w.endpoint == "" || w.apiKey == "" {
		return ports.ChannelResult{}, nil
	}

	results, err := w.search(ctx, name)
	if err != nil {
		if w.logger != nil {
			w.logger.Warn("web search failed", "concept", name, "error", err)
		}
		return ports.ChannelResult{}, nil
	}

	var (
		blocks  []string
		sources []domain.Source
	)
	for _, hit := range results {
		if len(blocks) >= webSearchMaxHits {
			break
		}
		text := w.extract(ctx, hit.URL)
		if text == "" {
			text = strings.TrimSpace(hit.Snippet)
		}
		if text == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("%s\n%s", hit.Title, truncateRunes(text, webSearchMaxCharsEach)))
		sources = append(sources, domain.Source{Title: hit.Title, URL: hit.URL})
	}

	return ports.ChannelResult{
		ContextText: strings.Join(blocks, "\n\n"),
		Sources:     sources,
	}, nil
}

func (w *WebSearch) search(ctx context.Context, name string) ([]searchHit, error) {
	query := url.Values{}
	query.Set("q", name+" קנאביס")
	query.Set("count", "5")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	return parsed.Results, nil
}

// extract pulls the readable article text from one hit; failures fall back to
// the search snippet at the call site.
func (w *WebSearch) extract(ctx context.Context, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, 2<<20), parsed)
	if err != nil {
		if w.logger != nil {
			w.logger.Debug("readability extraction failed", "url", pageURL, "error", err)
		}
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}
