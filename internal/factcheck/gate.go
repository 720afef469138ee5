package factcheck

import (
	"context"
	"log/slog"
	"strings"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

// failClosedClaim is reported when the model call fails outright.
const failClosedClaim = "בדיקת העובדות נכשלה - נדרשת בדיקה ידנית של הערך"

// Entry categories that are always high-stakes.
var highRiskCategories = map[string]struct{}{
	"רגולציה":          {},
	"regulation":       {},
	"התוויות-רפואיות":  {},
	"medical":          {},
	"תופעות-לוואי":     {},
	"side-effects":     {},
	"אינטראקציות":      {},
	"drug-interaction": {},
}

var highRiskKeywords = []string{
	"רגולציה", "חוק", "תקנה", "רפואי", "מינון", "מרשם", "עונש", "פלילי",
	"regulation", "law", "medical", "dosage", "prescription", "penalty",
}

var mediumRiskKeywords = []string{
	"מחקר", "קליני", "ניסוי", "היסטוריה",
	"research", "clinical", "study", "history",
}

// Gate submits a generated entry plus its context bundle for claim-level
// verification and attaches a locally computed risk classification. Risk is
// never delegated to the model.
type Gate struct {
	checker ports.ClaimChecker
	logger  *slog.Logger
}

// NewGate wires the fact-check collaborator.
func NewGate(checker ports.ClaimChecker, logger *slog.Logger) *Gate {
	return &Gate{checker: checker, logger: logger}
}

// Check returns the verdict for one entry. Any failure of the model call
// fails closed: confidence 0.5, a manual-review claim, risk forced high. A
// failed check is never treated as a pass.
func (g *Gate) Check(ctx context.Context, entry domain.Entry, contextText string) domain.Verdict {
	risk := ClassifyRisk(entry)

	if g.checker == nil {
		return failClosed()
	}

	report, err := g.checker.CheckClaims(ctx, entry, contextText)
	if err != nil {
		if g.logger != nil {
			g.logger.Warn("fact check failed, failing closed", "entry", entry.Name, "error", err)
		}
		return failClosed()
	}

	confidence := report.ConfidenceScore
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return domain.Verdict{
		Claims:           report.Claims,
		ConfidenceScore:  confidence,
		UnverifiedClaims: report.UnverifiedClaims,
		RiskLevel:        risk,
	}
}

func failClosed() domain.Verdict {
	return domain.Verdict{
		ConfidenceScore:  0.5,
		UnverifiedClaims: []string{failClosedClaim},
		RiskLevel:        domain.RiskHigh,
	}
}

// ClassifyRisk derives the risk level from the entry's category and its
// serialized text, independent of any model call.
func ClassifyRisk(entry domain.Entry) domain.RiskLevel {
	category := strings.ToLower(strings.TrimSpace(entry.Category))
	if _, ok := highRiskCategories[category]; ok {
		return domain.RiskHigh
	}

	text := strings.ToLower(strings.Join(append([]string{
		entry.Name, entry.Summary, entry.Body, entry.Category,
	}, entry.Aliases...), " "))

	for _, kw := range highRiskKeywords {
		if strings.Contains(text, kw) {
			return domain.RiskHigh
		}
	}
	for _, kw := range mediumRiskKeywords {
		if strings.Contains(text, kw) {
			return domain.RiskMedium
		}
	}
	return domain.RiskLow
}
