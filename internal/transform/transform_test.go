package transform

import (
	"strings"
	"testing"

	"github.com/olekpuchka/x-to-telegram-feed/internal/feed"
)

func TestExtractTextPrefersLongForm(t *testing.T) {
	t.Parallel()
	p := feed.Post{Text: "short…", LongFormText: "  the whole long-form text  "}
	if got := ExtractText(p); got != "the whole long-form text" {
		t.Fatalf("ExtractText = %q", got)
	}

	p = feed.Post{Text: "  just the text  "}
	if got := ExtractText(p); got != "just the text" {
		t.Fatalf("ExtractText = %q", got)
	}
}

func TestStripShortLinks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
		urls []feed.URLEntity
		want string
	}{
		{
			name: "mid-sentence link leaves single space",
			text: "check this https://t.co/abc out",
			urls: []feed.URLEntity{{ShortURL: "https://t.co/abc"}},
			want: "check this out",
		},
		{
			name: "all occurrences removed",
			text: "https://t.co/x and https://t.co/x again",
			urls: []feed.URLEntity{{ShortURL: "https://t.co/x"}},
			want: "and again",
		},
		{
			name: "blank paragraph collapses",
			text: "first line\n\nhttps://t.co/pic\n\nlast line",
			urls: []feed.URLEntity{{ShortURL: "https://t.co/pic"}},
			want: "first line\n\nlast line",
		},
		{
			name: "no entities",
			text: "  plain \t text  ",
			urls: nil,
			want: "plain text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := StripShortLinks(tt.text, tt.urls); got != tt.want {
				t.Fatalf("StripShortLinks = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectMedia(t *testing.T) {
	t.Parallel()
	pool := feed.MediaPool{
		"3_p1": {Key: "3_p1", Kind: feed.MediaPhoto, URL: "https://pbs/p1.jpg"},
		"3_p2": {Key: "3_p2", Kind: feed.MediaPhoto}, // no URL: ineligible
		"7_v1": {Key: "7_v1", Kind: feed.MediaVideo, PreviewURL: "https://pbs/v1.jpg"},
		"7_v2": {Key: "7_v2", Kind: feed.MediaVideo}, // no preview: ineligible
	}
	p := feed.Post{MediaKeys: []string{"7_v1", "3_p2", "3_p1", "7_v2", "missing"}}

	got := SelectMedia(p, pool)
	if len(got) != 2 {
		t.Fatalf("selected %d items, want 2", len(got))
	}
	// Post-defined ordering preserved: the video surrogate comes first.
	if !got[0].IsVideoSurrogate || got[0].URL != "https://pbs/v1.jpg" || got[0].Kind != feed.MediaPhoto {
		t.Fatalf("surrogate wrong: %+v", got[0])
	}
	if got[1].Key != "3_p1" || got[1].IsVideoSurrogate {
		t.Fatalf("photo wrong: %+v", got[1])
	}
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()
	p := feed.Post{
		ID:        "1812920385038192640",
		Text:      "big news https://t.co/abc",
		URLs:      []feed.URLEntity{{ShortURL: "https://t.co/abc", ExpandedURL: "https://pic.example/1"}},
		MediaKeys: []string{"7_v1"},
	}
	pool := feed.MediaPool{
		"7_v1": {Key: "7_v1", Kind: feed.MediaVideo, PreviewURL: "https://pbs/v1.jpg"},
	}

	msg := BuildMessage("joecarlsonshow", p, pool)
	if !strings.HasPrefix(msg.Body, "big news") {
		t.Fatalf("body = %q", msg.Body)
	}
	if !strings.Contains(msg.Body, "watch via the link below") {
		t.Fatalf("missing video notice: %q", msg.Body)
	}
	if !strings.HasSuffix(msg.Body, "https://x.com/joecarlsonshow/status/1812920385038192640") {
		t.Fatalf("missing source link trailer: %q", msg.Body)
	}
	if len(msg.Media) != 1 || !msg.Media[0].IsVideoSurrogate {
		t.Fatalf("media = %+v", msg.Media)
	}

	// Deterministic: same inputs, same message.
	again := BuildMessage("joecarlsonshow", p, pool)
	if again.Body != msg.Body || len(again.Media) != len(msg.Media) {
		t.Fatal("BuildMessage is not deterministic")
	}
}

func TestBuildMessageNoMediaNoNotice(t *testing.T) {
	t.Parallel()
	p := feed.Post{ID: "9", Text: "plain"}
	msg := BuildMessage("someone", p, feed.MediaPool{})
	if strings.Contains(msg.Body, "watch via") {
		t.Fatalf("unexpected notice: %q", msg.Body)
	}
	if msg.Body != "plain\n\nhttps://x.com/someone/status/9" {
		t.Fatalf("body = %q", msg.Body)
	}
}
