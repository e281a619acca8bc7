package deliver

import (
	"context"
	"errors"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/olekpuchka/x-to-telegram-feed/internal/feed"
	logx "github.com/olekpuchka/x-to-telegram-feed/pkg/logx"
)

// TelegramConfig configures the telebot-backed transport.
type TelegramConfig struct {
	Token string
	// ChatID is "@channelname" or a numeric id string like "-1001234567890".
	ChatID              string
	SuppressLinkPreview bool
}

// Telegram sends through the Bot API via telebot. The bot is constructed
// once and reused for the process lifetime; it never long-polls, it only
// sends.
type Telegram struct {
	bot  *tele.Bot
	to   tele.Recipient
	opts *tele.SendOptions
	log  logx.Logger
}

// chatID satisfies tele.Recipient for both @usernames and numeric ids.
type chatID string

func (c chatID) Recipient() string { return string(c) }

func NewTelegram(cfg TelegramConfig, log logx.Logger) (*Telegram, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if strings.TrimSpace(cfg.ChatID) == "" {
		return nil, errors.New("telegram chat_id is empty")
	}
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Telegram{
		bot:  b,
		to:   chatID(strings.TrimSpace(cfg.ChatID)),
		opts: &tele.SendOptions{DisableWebPagePreview: cfg.SuppressLinkPreview},
		log:  log,
	}, nil
}

func (t *Telegram) SendText(ctx context.Context, text string) error {
	_ = ctx // telebot manages its own request timeouts
	_, err := t.bot.Send(t.to, text, t.opts)
	return err
}

func (t *Telegram) SendPhoto(ctx context.Context, m feed.MediaItem, caption string) error {
	_ = ctx
	photo := &tele.Photo{File: tele.FromURL(m.URL), Caption: caption}
	_, err := t.bot.Send(t.to, photo, t.opts)
	return err
}

func (t *Telegram) SendAlbum(ctx context.Context, media []feed.MediaItem, caption string) error {
	_ = ctx
	album := make(tele.Album, 0, len(media))
	for i, m := range media {
		photo := &tele.Photo{File: tele.FromURL(m.URL)}
		if i == 0 {
			photo.Caption = caption
		}
		album = append(album, photo)
	}
	_, err := t.bot.SendAlbum(t.to, album, t.opts)
	return err
}
