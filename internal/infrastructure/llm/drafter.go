package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

const drafterSystemPrompt = `אתה עורך תוכן של אנציקלופדיה עברית בנושא קנאביס רפואי.
ענה תמיד ב-JSON בלבד, בלי טקסט מסביב ובלי גדרות markdown.`

// Drafter generates entry drafts and alias suggestions through the chat
// client. Unparsable drafts are dumped to a side file so a human can salvage
// the model's work instead of paying for regeneration.
type Drafter struct {
	client *Client
	rawDir string
	logger *slog.Logger
}

var _ ports.Drafter = (*Drafter)(nil)

// NewDrafter wires the chat client; rawDir may be empty to disable dumps.
func NewDrafter(client *Client, rawDir string, logger *slog.Logger) *Drafter {
	return &Drafter{client: client, rawDir: rawDir, logger: logger}
}

type aliasAnswer struct {
	Aliases []string `json:"aliases"`
}

// SuggestAliases asks the model for search synonyms of the concept name.
func (d *Drafter) SuggestAliases(ctx context.Context, name, category string) ([]string, error) {
	prompt := fmt.Sprintf(`עבור הערך "%s" בקטגוריה "%s", הצע עד 5 שמות נרדפים וכתיבים
חלופיים (עברית ואנגלית) שבהם המונח מופיע בכתבות.
החזר JSON בצורה: {"aliases": ["..."]}`, name, category)

	answer, err := d.client.Complete(ctx, drafterSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("suggest aliases for %s: %w", name, err)
	}

	var parsed aliasAnswer
	if err := decodeStrict(answer, &parsed); err != nil {
		return nil, fmt.Errorf("suggest aliases for %s: %w", name, err)
	}
	return parsed.Aliases, nil
}

type draftAnswer struct {
	Summary string   `json:"summary"`
	Body    string   `json:"body"`
	Aliases []string `json:"aliases"`
}

// Draft generates the entry text. With context it instructs the model to stay
// inside the supplied evidence; without it the model answers from general
// knowledge and the caller marks the result accordingly.
func (d *Drafter) Draft(ctx context.Context, req ports.DraftRequest) (domain.Entry, error) {
	answer, err := d.client.Complete(ctx, drafterSystemPrompt, d.buildDraftPrompt(req))
	if err != nil {
		return domain.Entry{}, fmt.Errorf("draft %s: %w", req.Name, err)
	}

	var parsed draftAnswer
	if err := decodeStrict(answer, &parsed); err != nil {
		d.dumpRaw(req.Name, answer)
		return domain.Entry{}, fmt.Errorf("draft %s: %w", req.Name, err)
	}
	if strings.TrimSpace(parsed.Summary) == "" || strings.TrimSpace(parsed.Body) == "" {
		d.dumpRaw(req.Name, answer)
		return domain.Entry{}, fmt.Errorf("draft %s: empty summary or body: %w", req.Name, ErrSchema)
	}

	return domain.Entry{
		Summary: strings.TrimSpace(parsed.Summary),
		Body:    strings.TrimSpace(parsed.Body),
		Aliases: parsed.Aliases,
	}, nil
}

func (d *Drafter) buildDraftPrompt(req ports.DraftRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "כתוב ערך אנציקלופדי בעברית על \"%s\" (קטגוריה: %s).\n", req.Name, req.Category)
	if len(req.Aliases) > 0 {
		fmt.Fprintf(&b, "שמות נוספים: %s.\n", strings.Join(req.Aliases, ", "))
	}
	if req.HasContext {
		b.WriteString("הסתמך אך ורק על חומר הרקע המצורף. ")
		b.WriteString("כאשר מקורות סותרים זה את זה, המקור החדש יותר גובר על הישן.\n")
		b.WriteString("\n--- חומר רקע ---\n")
		b.WriteString(req.Context)
		b.WriteString("\n--- סוף חומר רקע ---\n")
	} else {
		b.WriteString("אין חומר רקע זמין; כתוב מתוך ידע כללי, הימנע מטענות רפואיות נחרצות.\n")
	}
	b.WriteString(`החזר JSON בצורה: {"summary": "...", "body": "...", "aliases": ["..."]}`)
	return b.String()
}

// dumpRaw saves the raw model output next to the store so a failed parse does
// not discard the generation.
func (d *Drafter) dumpRaw(name, answer string) {
	if d.rawDir == "" {
		return
	}
	if err := os.MkdirAll(d.rawDir, 0o755); err != nil {
		if d.logger != nil {
			d.logger.Warn("cannot create raw output dir", "dir", d.rawDir, "error", err)
		}
		return
	}
	file := fmt.Sprintf("%s-%s.txt", domain.Slugify(name), time.Now().UTC().Format("20060102T150405"))
	path := filepath.Join(d.rawDir, file)
	if err := os.WriteFile(path, []byte(answer), 0o644); err != nil && d.logger != nil {
		d.logger.Warn("cannot dump raw model output", "path", path, "error", err)
	}
}
