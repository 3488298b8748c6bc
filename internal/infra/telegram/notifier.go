package telegram

import (
	"gopkg.in/telebot.v3"
)

// TelebotNotifier implements the domain telegram.Client interface using the
// gopkg.in/telebot.v3 library. It is used for one-way ops notifications only,
// so no poller or handlers are started.
type TelebotNotifier struct {
	bot *telebot.Bot
}

func NewTelebotNotifier(token string) (*TelebotNotifier, error) {
	bot, err := telebot.NewBot(telebot.Settings{Token: token})
	if err != nil {
		return nil, err
	}
	return &TelebotNotifier{bot: bot}, nil
}

// Notify sends a plain text message to the given chat.
func (n *TelebotNotifier) Notify(chatID int64, text string) error {
	recipient := &telebot.User{ID: chatID}
	_, err := n.bot.Send(recipient, text, &telebot.SendOptions{})
	return err
}
