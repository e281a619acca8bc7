package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	logx "github.com/olekpuchka/x-to-telegram-feed/pkg/logx"
)

func openTestStore(t *testing.T) (Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st, path
}

func TestFileStoreMissingFileIsEmptyRecord(t *testing.T) {
	t.Parallel()
	st, _ := openTestStore(t)
	rec, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.LastID != "" || rec.UserID != "" {
		t.Fatalf("expected empty record, got %+v", rec)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	st, path := openTestStore(t)
	ctx := context.Background()

	if err := st.Save(ctx, Record{LastID: "1812920385038192640", UserID: "42"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	rec, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.LastID != "1812920385038192640" || rec.UserID != "42" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	// Wire layout: exactly last_id and user_id.
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state file: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal state file: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("state file has %d keys, want 2: %v", len(m), m)
	}
	if m["last_id"] != "1812920385038192640" {
		t.Fatalf("last_id = %v", m["last_id"])
	}
}

func TestFileStoreNullFields(t *testing.T) {
	t.Parallel()
	st, path := openTestStore(t)
	ctx := context.Background()

	// user_id persisted alone, before any post was ever delivered.
	if err := st.Save(ctx, Record{UserID: "42"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	b, _ := os.ReadFile(path)
	var w struct {
		LastID *string `json:"last_id"`
		UserID *string `json:"user_id"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.LastID != nil {
		t.Fatalf("last_id = %v, want null", *w.LastID)
	}
	if w.UserID == nil || *w.UserID != "42" {
		t.Fatalf("user_id = %v", w.UserID)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	t.Parallel()
	st, _ := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"100", "101", "102"} {
		if err := st.Save(ctx, Record{LastID: id, UserID: "42"}); err != nil {
			t.Fatalf("Save(%s): %v", id, err)
		}
	}
	rec, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.LastID != "102" {
		t.Fatalf("LastID = %q, want last write", rec.LastID)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	_, err := Open(Config{Driver: "redis", Path: "x"}, logx.Nop())
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
