package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/orenlebo/cannapedia/internal/domain"
	"github.com/orenlebo/cannapedia/internal/ports"
)

// Notifier sends review requests to the editorial Telegram chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier authorizes the bot. Token validation happens here so a typo
// fails at startup, not at first pending entry.
func NewNotifier(botToken string, chatID int64) (*Notifier, error) {
	if botToken == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram notifier misconfigured")
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("authorize telegram bot: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID}, nil
}

// NotifyReview posts one review request message.
func (n *Notifier) NotifyReview(_ context.Context, note domain.ReviewNotification) error {
	msg := tgbotapi.NewMessage(n.chatID, formatReview(note))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send review notification: %w", err)
	}
	return nil
}

func formatReview(n domain.ReviewNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ערך ממתין לאישור: %s (%s)\n", n.Name, n.Slug)
	if n.Category != "" {
		fmt.Fprintf(&b, "קטגוריה: %s\n", n.Category)
	}
	fmt.Fprintf(&b, "ציון ביטחון: %.2f, רמת סיכון: %s\n", n.ConfidenceScore, n.RiskLevel)
	if len(n.UnverifiedClaims) > 0 {
		b.WriteString("טענות לא מאומתות:\n")
		for _, claim := range n.UnverifiedClaims {
			fmt.Fprintf(&b, "- %s\n", claim)
		}
	}
	if len(n.SourceTitles) > 0 {
		fmt.Fprintf(&b, "מקורות: %s\n", strings.Join(n.SourceTitles, "; "))
	}
	return strings.TrimSpace(b.String())
}
