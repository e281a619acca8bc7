package deliver

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/olekpuchka/x-to-telegram-feed/internal/feed"
	logx "github.com/olekpuchka/x-to-telegram-feed/pkg/logx"
)

// Engine drives one message through the delivery state machine.
//
// Media failures degrade to text-only automatically; a post is never
// silently dropped because its media could not be sent. Only a failure of
// the text-only path itself is terminal.
type Engine struct {
	t       Transport
	log     logx.Logger
	dryRun  bool
	limiter *rate.Limiter
}

type EngineOption func(*Engine)

// WithDryRun logs would-be payloads instead of calling the transport.
func WithDryRun(v bool) EngineOption {
	return func(e *Engine) { e.dryRun = v }
}

// WithLimiter overrides the send pacing limiter.
func WithLimiter(l *rate.Limiter) EngineOption {
	return func(e *Engine) { e.limiter = l }
}

func NewEngine(t Transport, log logx.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		t:   t,
		log: log,
		// Telegram tolerates roughly one message per second per chat
		// sustained; the burst covers a chunked long post.
		limiter: rate.NewLimiter(rate.Limit(1), 5),
	}
	if e.log.IsZero() {
		e.log = logx.Nop()
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Deliver sends one message. A nil return means the message reached the
// channel (possibly degraded to text-only); a non-nil return wraps
// ErrDeliveryFailed.
func (e *Engine) Deliver(ctx context.Context, msg feed.Message) error {
	if e.dryRun {
		media := make([]string, 0, len(msg.Media))
		for _, m := range msg.Media {
			media = append(media, m.Key+" "+m.URL)
		}
		e.log.Info("dry-run: would deliver",
			logx.Any("media", media),
			logx.Int("body_len", len(msg.Body)),
			logx.String("body", msg.Body))
		return nil
	}

	switch len(msg.Media) {
	case 0:
		return e.sendChunkedText(ctx, msg.Body)
	case 1:
		return e.deliverSingle(ctx, msg)
	default:
		return e.deliverGroup(ctx, msg)
	}
}

func (e *Engine) deliverSingle(ctx context.Context, msg feed.Message) error {
	caption, truncated := TruncateCaption(msg.Body, CaptionLimit)

	if err := e.wait(ctx); err != nil {
		return err
	}
	if err := e.t.SendPhoto(ctx, msg.Media[0], caption); err != nil {
		e.log.Warn("media send failed, falling back to text-only",
			logx.String("media_key", msg.Media[0].Key), logx.Err(err))
		return e.sendChunkedText(ctx, msg.Body)
	}
	if truncated {
		// The caption was abridged; the full body still goes out.
		return e.sendChunkedText(ctx, msg.Body)
	}
	return nil
}

func (e *Engine) deliverGroup(ctx context.Context, msg feed.Message) error {
	media := msg.Media
	overflow := len(media) > AlbumLimit
	if overflow {
		media = media[:AlbumLimit]
	}
	caption, truncated := TruncateCaption(msg.Body, CaptionLimit)

	if err := e.wait(ctx); err != nil {
		return err
	}
	if err := e.t.SendAlbum(ctx, media, caption); err != nil {
		e.log.Warn("media group send failed, falling back to text-only",
			logx.Int("media_items", len(media)), logx.Err(err))
		return e.sendChunkedText(ctx, msg.Body)
	}
	if truncated || overflow {
		return e.sendChunkedText(ctx, msg.Body)
	}
	return nil
}

// sendChunkedText is the terminal text-only path. A mid-sequence failure
// aborts the remaining chunks.
func (e *Engine) sendChunkedText(ctx context.Context, body string) error {
	for i, chunk := range ChunkText(body, MessageLimit) {
		if err := e.wait(ctx); err != nil {
			return err
		}
		if err := e.t.SendText(ctx, chunk); err != nil {
			return fmt.Errorf("%w: text chunk %d: %w", ErrDeliveryFailed, i+1, err)
		}
	}
	return nil
}

func (e *Engine) wait(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return nil
}
