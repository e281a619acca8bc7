// Package deliver sends messages to the destination channel.
//
// The engine is a small state machine per message with terminal outcomes
// delivered/failed, expressed over the Transport interface so it can be
// tested independent of any particular messaging binding.
package deliver

import (
	"context"
	"errors"

	"github.com/olekpuchka/x-to-telegram-feed/internal/feed"
)

// Telegram-imposed limits.
const (
	// MessageLimit is the max length of one plain text message.
	MessageLimit = 4096
	// CaptionLimit is the max length of text attached directly to a media send.
	CaptionLimit = 1024
	// AlbumLimit is the max number of items in one grouped-media send.
	AlbumLimit = 10
)

// ErrDeliveryFailed wraps a messaging-endpoint failure after every fallback
// was exhausted. Media-send failures alone never surface as this; only the
// text-only path failing does.
var ErrDeliveryFailed = errors.New("deliver: delivery failed")

// Transport is the messaging-endpoint contract. All sends go to the one
// fixed destination channel the transport was constructed with.
type Transport interface {
	SendText(ctx context.Context, text string) error
	// SendPhoto sends one media item with a caption (may be empty).
	SendPhoto(ctx context.Context, m feed.MediaItem, caption string) error
	// SendAlbum sends a grouped-media message; the caption is attached to
	// the first item only. len(media) must be <= AlbumLimit.
	SendAlbum(ctx context.Context, media []feed.MediaItem, caption string) error
}
