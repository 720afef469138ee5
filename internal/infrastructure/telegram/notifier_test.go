package telegram

import (
	"strings"
	"testing"

	"github.com/orenlebo/cannapedia/internal/domain"
)

func TestFormatReviewIncludesAllSections(t *testing.T) {
	t.Parallel()

	text := formatReview(domain.ReviewNotification{
		Name:             "CBD",
		Slug:             "cbd",
		Category:         "קנבינואידים",
		ConfidenceScore:  0.72,
		RiskLevel:        domain.RiskMedium,
		UnverifiedClaims: []string{"מינון מומלץ"},
		SourceTitles:     []string{"כתבה ראשונה"},
	})

	for _, want := range []string{"CBD", "cbd", "קנבינואידים", "0.72", "medium", "מינון מומלץ", "כתבה ראשונה"} {
		if !strings.Contains(text, want) {
			t.Fatalf("notification missing %q:\n%s", want, text)
		}
	}
}

func TestFormatReviewOmitsEmptySections(t *testing.T) {
	t.Parallel()

	text := formatReview(domain.ReviewNotification{Name: "THC", Slug: "thc", RiskLevel: domain.RiskLow})
	if strings.Contains(text, "טענות לא מאומתות") || strings.Contains(text, "מקורות:") {
		t.Fatalf("empty sections must be omitted:\n%s", text)
	}
}
