package deliver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/time/rate"

	"github.com/olekpuchka/x-to-telegram-feed/internal/feed"
	logx "github.com/olekpuchka/x-to-telegram-feed/pkg/logx"
)

type call struct {
	kind    string // "text" | "photo" | "album"
	text    string
	caption string
	media   int
}

// fakeTransport records calls and fails on demand.
type fakeTransport struct {
	calls      []call
	failAlbum  bool
	failPhoto  bool
	failTextAt int // fail the n-th text send (1-based), 0 = never
	textSends  int
}

var errBoom = errors.New("boom")

func (f *fakeTransport) SendText(ctx context.Context, text string) error {
	f.textSends++
	if f.failTextAt > 0 && f.textSends == f.failTextAt {
		return errBoom
	}
	f.calls = append(f.calls, call{kind: "text", text: text})
	return nil
}

func (f *fakeTransport) SendPhoto(ctx context.Context, m feed.MediaItem, caption string) error {
	if f.failPhoto {
		return errBoom
	}
	f.calls = append(f.calls, call{kind: "photo", caption: caption, media: 1})
	return nil
}

func (f *fakeTransport) SendAlbum(ctx context.Context, media []feed.MediaItem, caption string) error {
	if f.failAlbum {
		return errBoom
	}
	f.calls = append(f.calls, call{kind: "album", caption: caption, media: len(media)})
	return nil
}

func newTestEngine(ft *fakeTransport, opts ...EngineOption) *Engine {
	opts = append(opts, WithLimiter(rate.NewLimiter(rate.Inf, 0)))
	return NewEngine(ft, logx.Nop(), opts...)
}

func photos(n int) []feed.MediaItem {
	items := make([]feed.MediaItem, n)
	for i := range items {
		items[i] = feed.MediaItem{Key: "k", Kind: feed.MediaPhoto, URL: "https://pbs/p.jpg"}
	}
	return items
}

func TestDeliverTextOnly(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{}
	if err := newTestEngine(ft).Deliver(context.Background(), feed.Message{Body: "hi"}); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(ft.calls) != 1 || ft.calls[0].kind != "text" {
		t.Fatalf("calls = %+v", ft.calls)
	}
}

func TestDeliverSingleMedia(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{}
	msg := feed.Message{Body: "caption text", Media: photos(1)}
	if err := newTestEngine(ft).Deliver(context.Background(), msg); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(ft.calls) != 1 || ft.calls[0].kind != "photo" || ft.calls[0].caption != "caption text" {
		t.Fatalf("calls = %+v", ft.calls)
	}
}

func TestDeliverSingleMediaFallsBackToText(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{failPhoto: true}
	msg := feed.Message{Body: "must not be dropped", Media: photos(1)}
	if err := newTestEngine(ft).Deliver(context.Background(), msg); err != nil {
		t.Fatalf("Deliver should degrade, got: %v", err)
	}
	if len(ft.calls) != 1 || ft.calls[0].kind != "text" || ft.calls[0].text != "must not be dropped" {
		t.Fatalf("calls = %+v", ft.calls)
	}
}

func TestDeliverSingleMediaLongCaptionSendsSupplementaryText(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{}
	body := strings.Repeat("z", 1200)
	msg := feed.Message{Body: body, Media: photos(1)}
	if err := newTestEngine(ft).Deliver(context.Background(), msg); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(ft.calls) != 2 {
		t.Fatalf("calls = %+v", ft.calls)
	}
	if ft.calls[0].kind != "photo" {
		t.Fatalf("first call = %+v", ft.calls[0])
	}
	if got := len([]rune(ft.calls[0].caption)); got != CaptionLimit {
		t.Fatalf("caption length = %d", got)
	}
	if !strings.HasSuffix(ft.calls[0].caption, ellipsis) {
		t.Fatal("caption should end with ellipsis marker")
	}
	if ft.calls[1].kind != "text" || ft.calls[1].text != body {
		t.Fatal("unabridged body should follow the photo")
	}
}

func TestDeliverGroupFallsBackToText(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{failAlbum: true}
	msg := feed.Message{Body: "two pics", Media: photos(2)}
	if err := newTestEngine(ft).Deliver(context.Background(), msg); err != nil {
		t.Fatalf("Deliver should degrade, got: %v", err)
	}
	if len(ft.calls) != 1 || ft.calls[0].kind != "text" {
		t.Fatalf("calls = %+v", ft.calls)
	}
}

func TestDeliverGroupCapsAtTenAndSendsFullText(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{}
	msg := feed.Message{Body: "a dozen pics", Media: photos(12)}
	if err := newTestEngine(ft).Deliver(context.Background(), msg); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(ft.calls) != 2 {
		t.Fatalf("calls = %+v", ft.calls)
	}
	if ft.calls[0].kind != "album" || ft.calls[0].media != AlbumLimit {
		t.Fatalf("album call = %+v", ft.calls[0])
	}
	if ft.calls[1].kind != "text" || ft.calls[1].text != "a dozen pics" {
		t.Fatalf("supplementary text call = %+v", ft.calls[1])
	}
}

func TestDeliverLongCaptionSendsSupplementaryText(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{}
	body := strings.Repeat("z", 1200)
	msg := feed.Message{Body: body, Media: photos(2)}
	if err := newTestEngine(ft).Deliver(context.Background(), msg); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(ft.calls) != 2 {
		t.Fatalf("calls = %+v", ft.calls)
	}
	if got := len([]rune(ft.calls[0].caption)); got != CaptionLimit {
		t.Fatalf("caption length = %d", got)
	}
	if !strings.HasSuffix(ft.calls[0].caption, ellipsis) {
		t.Fatal("caption should end with ellipsis marker")
	}
	if ft.calls[1].kind != "text" || ft.calls[1].text != body {
		t.Fatal("unabridged body should follow the group")
	}
}

func TestDeliverTextFailureIsFatal(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{failTextAt: 1}
	err := newTestEngine(ft).Deliver(context.Background(), feed.Message{Body: "nope"})
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("err = %v, want ErrDeliveryFailed", err)
	}
}

func TestDeliverMidSequenceChunkFailureAborts(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{failTextAt: 2}
	body := strings.Repeat("x", MessageLimit) + "\n" + strings.Repeat("y", MessageLimit) + "\n" + "tail"
	err := newTestEngine(ft).Deliver(context.Background(), feed.Message{Body: body})
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("err = %v, want ErrDeliveryFailed", err)
	}
	// Only the first chunk went out; the failure aborted the rest.
	if len(ft.calls) != 1 {
		t.Fatalf("calls after abort = %+v", ft.calls)
	}
}

func TestDeliverDryRunSendsNothing(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{failAlbum: true, failPhoto: true, failTextAt: 1}
	msg := feed.Message{Body: "anything", Media: photos(3)}
	if err := newTestEngine(ft, WithDryRun(true)).Deliver(context.Background(), msg); err != nil {
		t.Fatalf("dry-run Deliver: %v", err)
	}
	if len(ft.calls) != 0 || ft.textSends != 0 {
		t.Fatalf("dry-run hit the transport: %+v", ft.calls)
	}
}
