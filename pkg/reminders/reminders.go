// pkg/reminders/reminders.go
package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"

	"github.com/readlex/readlex/pkg/db"
	"github.com/readlex/readlex/pkg/logger"
	"github.com/readlex/readlex/pkg/srs"
)

const checkInterval = time.Hour

// Sender delivers a reminder text to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// TelegramSender sends reminders through a Telegram bot.
type TelegramSender struct {
	Bot *bot.Bot
}

func (s *TelegramSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := s.Bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return err
}

// Notifier nudges the user when words are waiting for review. At most one
// reminder per calendar day, and only when something is actually due.
type Notifier struct {
	store    *db.Store
	sender   Sender
	chatID   int64
	now      func() time.Time
	lastSent time.Time
}

func NewNotifier(store *db.Store, sender Sender, chatID int64) *Notifier {
	return &Notifier{store: store, sender: sender, chatID: chatID, now: time.Now}
}

// NewNotifierWithClock is used by tests that need a fixed date.
func NewNotifierWithClock(store *db.Store, sender Sender, chatID int64, now func() time.Time) *Notifier {
	if now == nil {
		now = time.Now
	}
	return &Notifier{store: store, sender: sender, chatID: chatID, now: now}
}

// Run checks hourly until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.CheckAndNotify(ctx)
		}
	}
}

// CheckAndNotify sends the due-count reminder if one is warranted right now.
func (n *Notifier) CheckAndNotify(ctx context.Context) {
	now := n.now()
	if srs.Date(now).Equal(srs.Date(n.lastSent)) {
		return
	}

	stats, err := n.store.GetStats(ctx)
	if err != nil {
		logger.Error("failed to fetch stats for reminder", "error", err)
		return
	}
	if stats.DueWords == 0 {
		return
	}

	text := fmt.Sprintf("You have %d words waiting for review.", stats.DueWords)
	if err := n.sender.SendMessage(ctx, n.chatID, text); err != nil {
		logger.Error("failed to send reminder", "chat_id", n.chatID, "error", err)
		return
	}
	n.lastSent = now
	logger.Info("sent review reminder", "chat_id", n.chatID, "due", stats.DueWords)
}
