package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

const checkerSystemPrompt = `אתה בודק עובדות של אנציקלופדיה עברית בנושא קנאביס רפואי.
ענה תמיד ב-JSON בלבד, בלי טקסט מסביב ובלי גדרות markdown.`

// Checker implements claim-level fact checking through the chat client.
type Checker struct {
	client *Client
}

var _ ports.ClaimChecker = (*Checker)(nil)

// NewChecker wires the chat client.
func NewChecker(client *Client) *Checker {
	return &Checker{client: client}
}

type checkAnswer struct {
	Claims []struct {
		Claim    string `json:"claim"`
		Verified bool   `json:"verified"`
		Source   string `json:"source"`
		Note     string `json:"note"`
	} `json:"claims"`
	ConfidenceScore  float64  `json:"confidenceScore"`
	UnverifiedClaims []string `json:"unverifiedClaims"`
}

// CheckClaims extracts the entry's factual claims and checks each one against
// the context bundle. The gate on top of this decides what the report means.
func (c *Checker) CheckClaims(ctx context.Context, entry domain.Entry, contextText string) (domain.ClaimReport, error) {
	answer, err := c.client.Complete(ctx, checkerSystemPrompt, buildCheckPrompt(entry, contextText))
	if err != nil {
		return domain.ClaimReport{}, fmt.Errorf("check claims for %s: %w", entry.Name, err)
	}

	var parsed checkAnswer
	if err := decodeStrict(answer, &parsed); err != nil {
		return domain.ClaimReport{}, fmt.Errorf("check claims for %s: %w", entry.Name, err)
	}

	report := domain.ClaimReport{
		ConfidenceScore:  parsed.ConfidenceScore,
		UnverifiedClaims: parsed.UnverifiedClaims,
	}
	for _, cl := range parsed.Claims {
		report.Claims = append(report.Claims, domain.Claim{
			Text:     cl.Claim,
			Verified: cl.Verified,
			Source:   cl.Source,
			Note:     cl.Note,
		})
	}
	return report, nil
}

func buildCheckPrompt(entry domain.Entry, contextText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "לפניך ערך על \"%s\". חלץ את הטענות העובדתיות ובדוק כל אחת מול חומר הרקע.\n", entry.Name)
	b.WriteString("\n--- הערך ---\n")
	b.WriteString(entry.Summary)
	b.WriteString("\n\n")
	b.WriteString(entry.Body)
	b.WriteString("\n--- סוף הערך ---\n")
	if strings.TrimSpace(contextText) != "" {
		b.WriteString("\n--- חומר רקע ---\n")
		b.WriteString(contextText)
		b.WriteString("\n--- סוף חומר רקע ---\n")
	} else {
		b.WriteString("\nאין חומר רקע; סמן טענות שאינן ידע כללי מבוסס כלא מאומתות.\n")
	}
	b.WriteString(`החזר JSON בצורה:
{"claims": [{"claim": "...", "verified": true, "source": "...", "note": "..."}],
 "confidenceScore": 0.0, "unverifiedClaims": ["..."]}`)
	return b.String()
}
