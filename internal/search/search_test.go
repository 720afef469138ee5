package search

import "testing"

func corpus() []IndexedEntry {
	return []IndexedEntry{
		{Name: "CBD", Slug: "cbd", Category: "קנבינואידים", Aliases: []string{"קנאבידיול"}, Body: "רכיב לא פסיכואקטיבי. cbd נפוץ בשמנים."},
		{Name: "THC", Slug: "thc", Category: "קנבינואידים", Aliases: []string{"טטרהידרוקנבינול"}, Body: "הרכיב הפסיכואקטיבי המרכזי."},
		{Name: "טרפנים", Slug: "terpenes", Category: "בוטניקה", Body: "תרכובות ארומטיות בצמח."},
	}
}

func TestRankNameBeatsBody(t *testing.T) {
	t.Parallel()

	results := Rank(corpus(), "cbd", 10)
	if len(results) == 0 || results[0].Entry.Slug != "cbd" {
		t.Fatalf("expected cbd entry first, got %v", results)
	}
	// Name 100 + alias 0 + body hits 2.
	if results[0].Score != 102 {
		t.Fatalf("expected score 102, got %d", results[0].Score)
	}
}

func TestRankAliasAndCategory(t *testing.T) {
	t.Parallel()

	results := Rank(corpus(), "קנבינואיד", 10)
	if len(results) != 2 {
		t.Fatalf("expected both cannabinoid entries, got %v", results)
	}
	for _, r := range results {
		if r.Score < categoryHitScore {
			t.Fatalf("expected at least category score, got %d", r.Score)
		}
	}
}

func TestRankShortQueryReturnsNothing(t *testing.T) {
	t.Parallel()

	if got := Rank(corpus(), "c", 10); got != nil {
		t.Fatalf("expected nil for single-rune query, got %v", got)
	}
}

func TestRankZeroScoresDropped(t *testing.T) {
	t.Parallel()

	if got := Rank(corpus(), "מונח-שלא-קיים", 10); len(got) != 0 {
		t.Fatalf("expected no results, got %v", got)
	}
}

func TestRankLimit(t *testing.T) {
	t.Parallel()

	if got := Rank(corpus(), "קנבינואיד", 1); len(got) != 1 {
		t.Fatalf("expected limit respected, got %d results", len(got))
	}
}
