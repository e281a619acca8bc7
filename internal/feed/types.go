package feed

import "time"

// MediaKind discriminates the media variants we understand.
// Anything else is dropped at the transformer boundary.
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

// Post is one timeline entry as returned by the source API.
//
// ID is a decimal string. X post IDs exceed int64-safe range in older
// ecosystems and tooling, so IDs are never parsed as integers anywhere
// in this repo; see CompareIDs.
type Post struct {
	ID           string
	Text         string
	LongFormText string // note_tweet text, set for long-form posts
	CreatedAt    time.Time
	MediaKeys    []string
	URLs         []URLEntity
}

// URLEntity is one entry of the post's url entities: the t.co short link
// embedded in the text and the destination it expands to.
type URLEntity struct {
	ShortURL    string
	ExpandedURL string
}

// MediaItem is a media attachment eligible for delivery.
//
// A video without a retrievable stream is represented as a photo-kind
// surrogate carrying its preview image, with IsVideoSurrogate set.
type MediaItem struct {
	Key              string
	Kind             MediaKind
	URL              string // direct asset URL (photos)
	PreviewURL       string // preview image URL (videos)
	IsVideoSurrogate bool
}

// MediaPool is the flat media lookup returned alongside a fetch,
// keyed by media key.
type MediaPool map[string]MediaItem

// Message is the deliverable unit, one per Post.
type Message struct {
	Body  string
	Media []MediaItem
}

// AccountIdentity pairs a handle with its stable account ID.
// The mapping never changes, so it is cached indefinitely once resolved.
type AccountIdentity struct {
	Handle    string
	AccountID string
}
