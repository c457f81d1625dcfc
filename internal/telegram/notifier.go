// Package telegram posts complaint lifecycle events to an operations chat
// through the Telegram Bot API.
package telegram

import (
	"civicdesk/backend/internal/localization"
	"civicdesk/backend/internal/metrics"
	"civicdesk/backend/internal/models"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const queueSize = 64

// ErrQueueFull is returned by Notify when the outgoing queue cannot take another message.
var ErrQueueFull = errors.New("telegram notification queue is full")

// Sender is the part of *tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// DefaultOperations are the transitions worth interrupting the operations chat for.
var DefaultOperations = []models.Operation{
	models.OpAssign,
	models.OpEscalate,
	models.OpReopen,
	models.OpReject,
}

// Notifier renders complaint events with the localizer and posts them to one chat.
// Delivery happens on the goroutine started by Run so a slow Bot API never holds
// up a committed transition.
type Notifier struct {
	Bot        Sender
	ChatID     int64
	Lang       string
	Localizer  *localization.Localizer
	Operations map[models.Operation]bool
	Send       chan models.ComplaintEvent
}

// NewNotifier creates a notifier for the default operation set.
func NewNotifier(bot Sender, chatID int64, lang string, localizer *localization.Localizer) *Notifier {
	ops := make(map[models.Operation]bool, len(DefaultOperations))
	for _, op := range DefaultOperations {
		ops[op] = true
	}
	return &Notifier{
		Bot:        bot,
		ChatID:     chatID,
		Lang:       lang,
		Localizer:  localizer,
		Operations: ops,
		Send:       make(chan models.ComplaintEvent, queueSize),
	}
}

// NewBotAPI authorizes against the Bot API with token.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram authorization failed: %w", err)
	}
	bot.Debug = false
	log.Printf("INFO: Authorized on Telegram account %s", bot.Self.UserName)
	return bot, nil
}

// Notify queues ev for delivery. Events outside Operations are ignored.
func (n *Notifier) Notify(ctx context.Context, ev models.ComplaintEvent) error {
	if !n.Operations[ev.Type] {
		return nil
	}
	select {
	case n.Send <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

// Run is the write pump. It returns when ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	defer log.Printf("INFO: Telegram notifier for chat %d stopped", n.ChatID)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-n.Send:
			if err := n.Deliver(ev); err != nil {
				metrics.NotificationFailuresTotal.WithLabelValues("telegram").Inc()
				log.Printf("ERROR: %v", err)
			}
		}
	}
}

// Deliver sends ev to the chat synchronously.
func (n *Notifier) Deliver(ev models.ComplaintEvent) error {
	msg := tgbotapi.NewMessage(n.ChatID, n.Render(ev))
	if _, err := n.Bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send %s event for complaint %s to telegram: %w", ev.Type, ev.ComplaintID, err)
	}
	return nil
}

// Render produces the chat text for ev in the notifier's language.
func (n *Notifier) Render(ev models.ComplaintEvent) string {
	officer := "-"
	if ev.OfficerID != nil {
		officer = fmt.Sprintf("#%d", *ev.OfficerID)
	}
	priority := string(ev.Priority)
	if priority == "" {
		priority = "-"
	}
	return n.Localizer.Format(n.Lang, "event."+string(ev.Type), map[string]string{
		"id":         shortID(ev.ComplaintID),
		"department": string(ev.Department),
		"status":     n.Localizer.GetString(n.Lang, "status."+string(ev.Status)),
		"officer":    officer,
		"priority":   priority,
		"reason":     strings.TrimSpace(ev.Reason),
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
