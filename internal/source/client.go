package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekpuchka/x-to-telegram-feed/internal/feed"
	logx "github.com/olekpuchka/x-to-telegram-feed/pkg/logx"
)

const defaultBaseURL = "https://api.x.com/2"

// pageCap is the server-side max_results ceiling; pageFloor its minimum.
const (
	pageCap   = 100
	pageFloor = 5
)

const tweetFields = "created_at,entities,note_tweet"
const mediaFields = "media_key,type,url,preview_image_url"

// Client talks to the X API v2 with an app-only bearer token.
//
// It is constructed once and reused across runs; the underlying http.Client
// keeps its connection pool for the process lifetime.
type Client struct {
	baseURL string
	bearer  string
	http    *http.Client
	log     logx.Logger
}

type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(bearer string, log logx.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		bearer:  bearer,
		http:    &http.Client{Timeout: 20 * time.Second},
		log:     log,
	}
	for _, o := range opts {
		o(c)
	}
	if c.log.IsZero() {
		c.log = logx.Nop()
	}
	return c
}

// ResolveAccountID maps a handle (without "@") to its stable account id.
// The mapping never changes, so callers cache the result indefinitely.
func (c *Client) ResolveAccountID(ctx context.Context, handle string) (string, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return "", fmt.Errorf("%w: empty handle", ErrAccountNotFound)
	}

	var env userEnvelope
	if err := c.getJSON(ctx, "/users/by/username/"+url.PathEscape(handle), nil, &env); err != nil {
		return "", err
	}
	// The API reports an unknown handle as a 200 with an errors array.
	if env.Data == nil || env.Data.ID == "" {
		return "", fmt.Errorf("%w: @%s", ErrAccountNotFound, handle)
	}
	c.log.Debug("account resolved", logx.String("handle", handle), logx.String("account_id", env.Data.ID))
	return env.Data.ID, nil
}

// FetchSince returns posts strictly newer than sinceID (or the most recent
// page when sinceID is empty), oldest-first, capped at maxResults, together
// with the media pool referenced by the posts' media keys.
func (c *Client) FetchSince(ctx context.Context, accountID, sinceID string, f Filters, maxResults int) ([]feed.Post, feed.MediaPool, error) {
	if maxResults <= 0 {
		maxResults = 1
	}

	q := url.Values{}
	q.Set("max_results", strconv.Itoa(clampPage(maxResults)))
	q.Set("tweet.fields", tweetFields)
	q.Set("expansions", "attachments.media_keys")
	q.Set("media.fields", mediaFields)
	if sinceID != "" {
		q.Set("since_id", sinceID)
	}
	if ex := excludeParam(f); ex != "" {
		q.Set("exclude", ex)
	}

	var env timelineEnvelope
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(accountID)+"/tweets", q, &env); err != nil {
		return nil, nil, err
	}

	posts := make([]feed.Post, 0, len(env.Data))
	for _, t := range env.Data {
		posts = append(posts, t.toPost())
	}
	// The API returns newest-first; delivery wants oldest-first. Order by
	// id, not by the response order or created_at.
	sort.Slice(posts, func(i, j int) bool { return feed.IDLess(posts[i].ID, posts[j].ID) })
	if len(posts) > maxResults {
		posts = posts[:maxResults]
	}
	return posts, poolFromIncludes(env.Includes), nil
}

// FetchOne fetches a single post by id, regardless of any cursor.
func (c *Client) FetchOne(ctx context.Context, postID string) (feed.Post, feed.MediaPool, error) {
	q := url.Values{}
	q.Set("tweet.fields", tweetFields)
	q.Set("expansions", "attachments.media_keys")
	q.Set("media.fields", mediaFields)

	var env tweetEnvelope
	err := c.getJSON(ctx, "/tweets/"+url.PathEscape(postID), q, &env)
	if err != nil {
		var ae *APIError
		if errors.As(err, &ae) && ae.Status == http.StatusNotFound {
			return feed.Post{}, nil, fmt.Errorf("%w: %s", ErrPostNotFound, postID)
		}
		return feed.Post{}, nil, err
	}
	if env.Data == nil || env.Data.ID == "" {
		return feed.Post{}, nil, fmt.Errorf("%w: %s", ErrPostNotFound, postID)
	}
	return env.Data.toPost(), poolFromIncludes(env.Includes), nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.bearer)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return ErrRateLimited
	}
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("source: decode response: %w", err)
	}
	return nil
}

func clampPage(n int) int {
	if n > pageCap {
		return pageCap
	}
	if n < pageFloor {
		return pageFloor
	}
	return n
}

// excludeParam renders Filters as the API's exclusion set.
func excludeParam(f Filters) string {
	var ex []string
	if !f.IncludeReposts {
		ex = append(ex, "retweets")
	}
	if !f.IncludeReplies {
		ex = append(ex, "replies")
	}
	return strings.Join(ex, ",")
}
