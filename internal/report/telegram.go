package report

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"leadhunt-engine/internal/domain"
)

// Notifier pushes accepted postings somewhere a human will see them.
type Notifier interface {
	Notify(ctx context.Context, rec domain.PostingRecord, score int) error
}

type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// NewTelegramNotifierWithEndpoint talks to a non-default Bot API server.
// endpoint has the form "https://host/bot%s/%s".
func NewTelegramNotifierWithEndpoint(token, endpoint string, client tgbotapi.HTTPClient, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) Notify(_ context.Context, rec domain.PostingRecord, score int) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatPosting(rec, score))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send listing=%s: %w", rec.ListingID, err)
	}
	return nil
}

// FormatPosting renders the HTML message body for one posting.
func FormatPosting(rec domain.PostingRecord, score int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(rec.Role))
	fmt.Fprintf(&b, "%s\n", html.EscapeString(rec.Company))
	if r := rec.Recency(); r != "" {
		fmt.Fprintf(&b, "posted %s\n", html.EscapeString(r))
	}
	fmt.Fprintf(&b, "score %d\n", score)
	fmt.Fprintf(&b, "<a href=\"%s\">%s</a>", html.EscapeString(rec.URL), html.EscapeString(rec.ListingID))
	return b.String()
}
