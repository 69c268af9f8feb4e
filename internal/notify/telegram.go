package notify

import (
	"context"
	"errors"
	"strings"

	tele "gopkg.in/telebot.v4"

	"golang.org/x/time/rate"
)

// TelegramConfig carries the bot credentials and the send rate cap.
type TelegramConfig struct {
	Token  string
	ChatID int64

	// RatePerSec caps outgoing sendMessage calls. Telegram throttles bots
	// hard; one per second is plenty for a personal monitor.
	RatePerSec int
}

// Telegram sends messages to a single chat via the Bot API.
type Telegram struct {
	bot     *tele.Bot
	chat    *tele.Chat
	limiter *rate.Limiter
}

// NewTelegram validates the token against the Bot API (getMe) so a bad
// credential fails at startup, not on the first confirmed change.
func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat_id is empty")
	}
	bot, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, err
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	return &Telegram{
		bot:     bot,
		chat:    &tele.Chat{ID: cfg.ChatID},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

func (t *Telegram) Send(ctx context.Context, text string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := t.bot.Send(t.chat, text, &tele.SendOptions{DisableWebPagePreview: true})
	return err
}
