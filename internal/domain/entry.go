package domain

import (
	"strings"
	"time"
)

// EntryStatus is the verification lifecycle state of an encyclopedia entry.
type EntryStatus string

const (
	EntryPending  EntryStatus = "pending"
	EntryVerified EntryStatus = "verified"
)

// RiskLevel classifies how much damage an unchecked claim could do.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// SourceType records which evidence pool backed the generation.
const (
	SourceTypeArchive  = "archive"
	SourceTypeGlobalAI = "global_ai"
)

// Entry is a generated encyclopedia entry together with its verification
// state. The persisted slug always comes from the store, never from the
// payload.
type Entry struct {
	Name             string      `json:"name"`
	Slug             string      `json:"slug"`
	Category         string      `json:"category"`
	Aliases          []string    `json:"aliases,omitempty"`
	Summary          string      `json:"summary"`
	Body             string      `json:"body"`
	SourceType       string      `json:"sourceType"`
	Status           EntryStatus `json:"status"`
	ConfidenceScore  float64     `json:"confidenceScore"`
	RiskLevel        RiskLevel   `json:"riskLevel"`
	UnverifiedClaims []string    `json:"unverifiedClaims,omitempty"`
	NeedsHumanReview bool        `json:"needsHumanReview"`
	Sources          []Source    `json:"sources,omitempty"`
	GeneratedAt      time.Time   `json:"generatedAt"`
}

// Claim is one model-verified statement extracted from an entry.
type Claim struct {
	Text     string `json:"claim"`
	Verified bool   `json:"verified"`
	Source   string `json:"source,omitempty"`
	Note     string `json:"note,omitempty"`
}

// ClaimReport is the raw fact-check collaborator output before local risk
// classification is attached.
type ClaimReport struct {
	Claims           []Claim
	ConfidenceScore  float64
	UnverifiedClaims []string
}

// Verdict is the fact-check gate output consumed by the verification gate.
type Verdict struct {
	Claims           []Claim
	ConfidenceScore  float64
	UnverifiedClaims []string
	RiskLevel        RiskLevel
}

// ReviewNotification is the payload sent when an entry needs human review.
type ReviewNotification struct {
	Name             string
	Slug             string
	Category         string
	ConfidenceScore  float64
	RiskLevel        RiskLevel
	UnverifiedClaims []string
	SourceTitles     []string
}

// Slugify derives a URL-safe slug from a concept name. Hebrew letters are
// kept as-is; runs of whitespace and separators collapse to a single dash.
func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	dash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r >= 'א' && r <= 'ת':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
