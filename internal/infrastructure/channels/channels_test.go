package channels

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMagazineParsesSearchResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("s"); got != "CBD" {
			t.Errorf("unexpected search query %q", got)
		}
		w.Write([]byte(`
			<article><h2><a href="https://magazine.example/a">CBD בראי המחקר</a></h2>
				<div class="entry-summary">סקירה של מחקרים עדכניים.</div></article>
			<article><h2><a href="https://magazine.example/b">מדריך CBD</a></h2>
				<div class="entry-summary">מדריך למתחילים.</div></article>`))
	}))
	defer srv.Close()

	m := NewMagazine(srv.URL, srv.Client(), nil)
	res, err := m.Fetch(context.Background(), "CBD", nil)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if len(res.Sources) != 2 || res.Sources[0].URL != "https://magazine.example/a" {
		t.Fatalf("unexpected sources: %+v", res.Sources)
	}
	if !strings.Contains(res.ContextText, "סקירה של מחקרים עדכניים") {
		t.Fatalf("excerpt missing from context: %q", res.ContextText)
	}
}

func TestMagazineFailureYieldsEmptyResult(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewMagazine(srv.URL, srv.Client(), nil)
	res, err := m.Fetch(context.Background(), "CBD", nil)
	if err != nil {
		t.Fatalf("channel failures must not surface errors, got %v", err)
	}
	if res.ContextText != "" || len(res.Sources) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestMagazineDisabledWithoutURL(t *testing.T) {
	t.Parallel()

	m := NewMagazine("", nil, nil)
	res, err := m.Fetch(context.Background(), "CBD", nil)
	if err != nil || res.ContextText != "" {
		t.Fatalf("unconfigured channel must be a no-op, got %+v %v", res, err)
	}
}

func TestMirrorFallsBackThroughAliases(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/קנבידיול" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<html><body><h1>קנבידיול</h1><article><p>ערך קודם על הרכיב.</p></article></body></html>`))
	}))
	defer srv.Close()

	m := NewMirror(srv.URL, srv.Client(), nil)
	res, err := m.Fetch(context.Background(), "CBD", []string{"קנבידיול"})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if !strings.Contains(res.ContextText, "ערך קודם על הרכיב") {
		t.Fatalf("mirror body missing: %q", res.ContextText)
	}
	if len(res.Sources) != 1 || res.Sources[0].Title != "קנבידיול" {
		t.Fatalf("unexpected sources: %+v", res.Sources)
	}
}

func TestMirrorMissingPageIsEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	m := NewMirror(srv.URL, srv.Client(), nil)
	res, err := m.Fetch(context.Background(), "מונח חדש", nil)
	if err != nil || res.ContextText != "" {
		t.Fatalf("missing page must be empty, got %+v %v", res, err)
	}
}

func TestWebSearchUsesSnippetWhenExtractionFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
				t.Errorf("missing auth header, got %q", got)
			}
			w.Write([]byte(`{"results":[{"title":"מאמר חיצוני","url":"http://127.0.0.1:1/dead","snippet":"תקציר מהחיפוש"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ws := NewWebSearch(srv.URL+"/search", "key-1", srv.Client(), nil)
	res, err := ws.Fetch(context.Background(), "CBD", nil)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if !strings.Contains(res.ContextText, "תקציר מהחיפוש") {
		t.Fatalf("snippet fallback missing: %q", res.ContextText)
	}
	if len(res.Sources) != 1 || res.Sources[0].Title != "מאמר חיצוני" {
		t.Fatalf("unexpected sources: %+v", res.Sources)
	}
}

func TestWebSearchDisabledWithoutKey(t *testing.T) {
	t.Parallel()

	ws := NewWebSearch("https://search.example", "", nil, nil)
	res, err := ws.Fetch(context.Background(), "CBD", nil)
	if err != nil || res.ContextText != "" {
		t.Fatalf("keyless channel must be a no-op, got %+v %v", res, err)
	}
}
