package services

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers a human-readable summary of an order outcome. Delivery
// is best-effort: callers log failures and carry on.
type Notifier interface {
	Publish(subject string, body string) error
}

// NoopNotifier stands in when no notification channel is configured.
type NoopNotifier struct{}

func (NoopNotifier) Publish(subject string, body string) error {
	return nil
}

type telegramCredentials interface {
	GetTelegramBotAPIToken() string
	GetTelegramChatID() int64
}

// TelegramNotifier publishes order outcomes to a telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(telegramCredentials telegramCredentials) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(telegramCredentials.GetTelegramBotAPIToken())
	if err != nil {
		return nil, err
	}

	return &TelegramNotifier{bot: bot, chatID: telegramCredentials.GetTelegramChatID()}, nil
}

func (notifier *TelegramNotifier) Publish(subject string, body string) error {
	msg := tgbotapi.NewMessage(notifier.chatID, subject+"\n\n"+body)
	_, err := notifier.bot.Send(msg)
	return err
}
