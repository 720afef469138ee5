package domain

import "time"

// ArchiveArticle is an immutable snapshot of a previously published magazine
// article. Records below the load-time minimums never enter the corpus.
type ArchiveArticle struct {
	ID          int64
	Title       string
	URL         string
	Text        string
	WordCount   int
	PublishedAt time.Time
}

// Source identifies one consulted document for citation purposes.
type Source struct {
	Title string    `json:"title"`
	URL   string    `json:"url"`
	Date  time.Time `json:"date"`
}

// RetrievedChunk is a paragraph-aligned slice of one archive article, tagged
// with enough of its parent to cite it.
type RetrievedChunk struct {
	ArticleID   int64
	Title       string
	URL         string
	PublishedAt time.Time
	Index       int
	Text        string
}

// RetrievalResult is the orchestrator output: chunks ordered by publication
// date ascending (oldest evidence first) and a source list deduplicated in
// first-occurrence order over the final chunk list.
type RetrievalResult struct {
	TotalScanned    int
	Matched         int
	SpecificMatches int
	BroadMatches    int
	Chunks          []RetrievedChunk
	Sources         []Source
}
