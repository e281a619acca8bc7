// Package syncer ties one run together: load cursor, resolve the account,
// fetch the delta, then transform, deliver and advance post by post.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/olekpuchka/x-to-telegram-feed/internal/feed"
	"github.com/olekpuchka/x-to-telegram-feed/internal/source"
	"github.com/olekpuchka/x-to-telegram-feed/internal/state"
	"github.com/olekpuchka/x-to-telegram-feed/internal/transform"
	logx "github.com/olekpuchka/x-to-telegram-feed/pkg/logx"
)

// Source is the slice of the source client the syncer needs.
type Source interface {
	ResolveAccountID(ctx context.Context, handle string) (string, error)
	FetchSince(ctx context.Context, accountID, sinceID string, f source.Filters, maxResults int) ([]feed.Post, feed.MediaPool, error)
	FetchOne(ctx context.Context, postID string) (feed.Post, feed.MediaPool, error)
}

// Deliverer sends one message to the destination channel.
type Deliverer interface {
	Deliver(ctx context.Context, msg feed.Message) error
}

// Options shape a single run.
type Options struct {
	Handle    string
	Filters   source.Filters
	MaxPerRun int
	// ExplicitPostID, when set, fetches that one post instead of the
	// delta. It bypasses the cursor entirely and never advances it.
	ExplicitPostID string
}

// Syncer runs the fetch → transform → deliver → advance pipeline.
//
// Runs are strictly sequential: delivery order and cursor advancement must
// match post chronological order, so there is no concurrency here by
// design. Overlap protection between runs is the scheduler's job.
type Syncer struct {
	src   Source
	eng   Deliverer
	store state.Store
	log   logx.Logger
}

func New(src Source, eng Deliverer, store state.Store, log logx.Logger) *Syncer {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Syncer{src: src, eng: eng, store: store, log: log}
}

// Run performs one sync run.
//
// A rate-limited fetch or resolution is a soft success: the run logs a
// warning, delivers nothing and returns nil so the next scheduled
// invocation retries. State-store failures are always fatal; forwarding
// without reliable cursor persistence risks duplicate or lost posts.
func (s *Syncer) Run(ctx context.Context, opts Options) error {
	started := time.Now()

	rec, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("state store: load: %w", err)
	}
	s.log.Info("state loaded",
		logx.String("last_id", orNone(rec.LastID)),
		logx.String("account_id", orNone(rec.UserID)))

	rec, err = s.resolveAccount(ctx, rec, opts.Handle)
	if err != nil {
		if errors.Is(err, source.ErrRateLimited) {
			s.log.Warn("rate limited while resolving account, skipping run")
			return nil
		}
		return err
	}

	if opts.ExplicitPostID != "" {
		return s.runExplicit(ctx, opts)
	}

	posts, pool, err := s.src.FetchSince(ctx, rec.UserID, rec.LastID, opts.Filters, opts.MaxPerRun)
	if err != nil {
		if errors.Is(err, source.ErrRateLimited) {
			s.log.Warn("rate limited while fetching, skipping run")
			return nil
		}
		return fmt.Errorf("fetch: %w", err)
	}
	if len(posts) == 0 {
		s.log.Info("no new posts")
		return nil
	}

	// Oldest first, whatever order the fetch produced.
	sort.Slice(posts, func(i, j int) bool { return feed.IDLess(posts[i].ID, posts[j].ID) })
	s.log.Info("new posts found", logx.Int("count", len(posts)))

	for _, post := range posts {
		msg := transform.BuildMessage(opts.Handle, post, pool)
		if err := s.eng.Deliver(ctx, msg); err != nil {
			return fmt.Errorf("post %s: %w", post.ID, err)
		}
		// Persist after every delivery, not at the end of the batch:
		// a crash re-delivers at most the in-flight post.
		rec.LastID = post.ID
		if err := s.store.Save(ctx, rec); err != nil {
			return fmt.Errorf("state store: save after post %s: %w", post.ID, err)
		}
		s.log.Info("post delivered", logx.String("post_id", post.ID))
	}

	s.log.Info("run complete",
		logx.Int("delivered", len(posts)),
		logx.String("last_id", rec.LastID),
		logx.Duration("elapsed", time.Since(started)))
	return nil
}

// resolveAccount returns the record with UserID filled, resolving and
// persisting it on first contact. Persisting before the first fetch means
// a crash right after never repeats the lookup, which matters under the
// per-endpoint quota.
func (s *Syncer) resolveAccount(ctx context.Context, rec state.Record, handle string) (state.Record, error) {
	if rec.UserID != "" {
		return rec, nil
	}
	id, err := s.src.ResolveAccountID(ctx, handle)
	if err != nil {
		return rec, err
	}
	rec.UserID = id
	if err := s.store.Save(ctx, rec); err != nil {
		return rec, fmt.Errorf("state store: save account id: %w", err)
	}
	s.log.Info("account resolved", logx.String("handle", handle), logx.String("account_id", id))
	return rec, nil
}

// runExplicit delivers one named post out-of-band. The cursor is left
// untouched.
func (s *Syncer) runExplicit(ctx context.Context, opts Options) error {
	post, pool, err := s.src.FetchOne(ctx, opts.ExplicitPostID)
	if err != nil {
		if errors.Is(err, source.ErrRateLimited) {
			s.log.Warn("rate limited while fetching post, skipping run")
			return nil
		}
		return fmt.Errorf("fetch post %s: %w", opts.ExplicitPostID, err)
	}
	msg := transform.BuildMessage(opts.Handle, post, pool)
	if err := s.eng.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("post %s: %w", post.ID, err)
	}
	s.log.Info("post delivered out-of-band", logx.String("post_id", post.ID))
	return nil
}

func orNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}
