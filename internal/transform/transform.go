// Package transform converts a raw post into its deliverable message:
// text extraction, short-link stripping, media selection.
//
// Everything here is pure; the same inputs always build the same message.
package transform

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/olekpuchka/x-to-telegram-feed/internal/feed"
)

var reSpaces = regexp.MustCompile(`[ \t]+`)

// videoNotice is appended when a post's video degraded to a preview image.
// Free-tier API access cannot retrieve video streams, so the real clip is
// only reachable through the source link.
const videoNotice = "🎬 Video in the original post — watch via the link below."

// ExtractText returns the post's full text, preferring the long-form field
// over the truncated default one.
func ExtractText(p feed.Post) string {
	if t := strings.TrimSpace(p.LongFormText); t != "" {
		return t
	}
	return strings.TrimSpace(p.Text)
}

// StripShortLinks removes every occurrence of each embedded short URL and
// tidies the whitespace left behind: runs of spaces/tabs collapse to one
// space, lines are trimmed, and runs of blank lines collapse to one.
func StripShortLinks(text string, urls []feed.URLEntity) string {
	for _, u := range urls {
		if u.ShortURL == "" {
			continue
		}
		text = strings.ReplaceAll(text, u.ShortURL, "")
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, ln := range lines {
		ln = strings.TrimSpace(reSpaces.ReplaceAllString(ln, " "))
		if ln == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, ln)
	}
	return strings.Join(out, "\n")
}

// SelectMedia resolves the post's media keys against the pool and keeps the
// deliverable items, in post order:
//   - photos carrying a direct URL
//   - videos carrying a preview image, degraded to photo-kind surrogates
//
// Unresolved keys and items missing their required URL are dropped rather
// than failing the post.
func SelectMedia(p feed.Post, pool feed.MediaPool) []feed.MediaItem {
	var items []feed.MediaItem
	for _, key := range p.MediaKeys {
		m, ok := pool[key]
		if !ok {
			continue
		}
		switch m.Kind {
		case feed.MediaPhoto:
			if m.URL == "" {
				continue
			}
			items = append(items, m)
		case feed.MediaVideo:
			if m.PreviewURL == "" {
				continue
			}
			items = append(items, feed.MediaItem{
				Key:              m.Key,
				Kind:             feed.MediaPhoto,
				URL:              m.PreviewURL,
				PreviewURL:       m.PreviewURL,
				IsVideoSurrogate: true,
			})
		}
	}
	return items
}

// PostURL builds the canonical link to a post.
func PostURL(handle, postID string) string {
	return fmt.Sprintf("https://x.com/%s/status/%s", strings.TrimPrefix(handle, "@"), postID)
}

// BuildMessage assembles the deliverable message for one post: stripped
// text, a video notice when any selected media is a surrogate, and a
// trailing source-link line.
func BuildMessage(handle string, p feed.Post, pool feed.MediaPool) feed.Message {
	media := SelectMedia(p, pool)

	lines := []string{StripShortLinks(ExtractText(p), p.URLs)}
	if hasSurrogate(media) {
		lines = append(lines, "", videoNotice)
	}
	lines = append(lines, "", PostURL(handle, p.ID))

	return feed.Message{
		Body:  strings.TrimSpace(strings.Join(lines, "\n")),
		Media: media,
	}
}

func hasSurrogate(media []feed.MediaItem) bool {
	for _, m := range media {
		if m.IsVideoSurrogate {
			return true
		}
	}
	return false
}
