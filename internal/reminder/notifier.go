package reminder

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/studyflow/studyflow/internal/logger"
	"github.com/studyflow/studyflow/internal/models"
)

// Message renders the reminder text for a user.
func Message(due models.UserDueCount) string {
	noun := "reviews are"
	if due.Due == 1 {
		noun = "review is"
	}
	name := due.Name
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hi %s! %d %s waiting for you. A few minutes now keeps the streak alive.", name, due.Due, noun)
}

// LogNotifier writes reminders to the log. Used when no bot token is set.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, due models.UserDueCount) error {
	logger.FromContext(ctx).WithPrefix("reminder").Info("reminder for user %d: %s", due.UserID, Message(due))
	return nil
}

// Sender is the part of the Telegram bot API used to deliver messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends reminders through a Telegram bot. Users without a
// chat id are handed to Fallback.
type TelegramNotifier struct {
	Bot      Sender
	Fallback interface {
		Notify(ctx context.Context, due models.UserDueCount) error
	}
}

// NewTelegramNotifier connects to the bot API with token.
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}
	logger.Default().WithPrefix("reminder").Info("authorized telegram bot %s", bot.Self.UserName)
	return &TelegramNotifier{Bot: bot, Fallback: LogNotifier{}}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, due models.UserDueCount) error {
	if due.TelegramChatID == nil {
		if n.Fallback != nil {
			return n.Fallback.Notify(ctx, due)
		}
		return nil
	}

	msg := tgbotapi.NewMessage(*due.TelegramChatID, Message(due))
	if _, err := n.Bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram reminder to user %d: %w", due.UserID, err)
	}
	logger.FromContext(ctx).Debug("telegram reminder sent to user %d", due.UserID)
	return nil
}
