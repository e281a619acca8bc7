package source

import (
	"time"

	"github.com/olekpuchka/x-to-telegram-feed/internal/feed"
)

// Filters selects which timeline entry categories to fetch.
// The API expresses these as an exclusion set; see excludeParam.
type Filters struct {
	IncludeReposts bool
	IncludeReplies bool
}

// ---- wire types (X API v2) ----

type apiIssue struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type userEnvelope struct {
	Data *struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"data"`
	Errors []apiIssue `json:"errors"`
}

type tweetJSON struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	NoteTweet *struct {
		Text string `json:"text"`
	} `json:"note_tweet"`
	Entities *struct {
		URLs []struct {
			URL         string `json:"url"`
			ExpandedURL string `json:"expanded_url"`
		} `json:"urls"`
	} `json:"entities"`
	Attachments *struct {
		MediaKeys []string `json:"media_keys"`
	} `json:"attachments"`
}

type mediaJSON struct {
	MediaKey        string `json:"media_key"`
	Type            string `json:"type"`
	URL             string `json:"url"`
	PreviewImageURL string `json:"preview_image_url"`
}

type includesJSON struct {
	Media []mediaJSON `json:"media"`
}

type timelineEnvelope struct {
	Data     []tweetJSON   `json:"data"`
	Includes *includesJSON `json:"includes"`
	Meta     *struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
	Errors []apiIssue `json:"errors"`
}

type tweetEnvelope struct {
	Data     *tweetJSON    `json:"data"`
	Includes *includesJSON `json:"includes"`
	Errors   []apiIssue    `json:"errors"`
}

// ---- wire -> domain ----

func (t tweetJSON) toPost() feed.Post {
	p := feed.Post{
		ID:        t.ID,
		Text:      t.Text,
		CreatedAt: t.CreatedAt,
	}
	if t.NoteTweet != nil {
		p.LongFormText = t.NoteTweet.Text
	}
	if t.Entities != nil {
		for _, u := range t.Entities.URLs {
			p.URLs = append(p.URLs, feed.URLEntity{ShortURL: u.URL, ExpandedURL: u.ExpandedURL})
		}
	}
	if t.Attachments != nil {
		p.MediaKeys = append(p.MediaKeys, t.Attachments.MediaKeys...)
	}
	return p
}

func poolFromIncludes(inc *includesJSON) feed.MediaPool {
	pool := feed.MediaPool{}
	if inc == nil {
		return pool
	}
	for _, m := range inc.Media {
		if m.MediaKey == "" {
			continue
		}
		item := feed.MediaItem{Key: m.MediaKey, URL: m.URL, PreviewURL: m.PreviewImageURL}
		switch m.Type {
		case "photo":
			item.Kind = feed.MediaPhoto
		case "video", "animated_gif":
			item.Kind = feed.MediaVideo
		default:
			// Unknown variants are kept out of the pool so the
			// transformer drops the referencing key.
			continue
		}
		pool[m.MediaKey] = item
	}
	return pool
}
