package state

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "github.com/olekpuchka/x-to-telegram-feed/pkg/logx"
)

// fileStore keeps the record in a single JSON file.
//
// Saves go through a temp file + rename so a crash mid-write can never
// leave a torn record behind.
type fileStore struct {
	log  logx.Logger
	path string
	mu   sync.Mutex
}

// wireRecord is the on-disk layout: exactly two keys, null when unset.
type wireRecord struct {
	LastID *string `json:"last_id"`
	UserID *string `json:"user_id"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("state: path is required for file driver")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &fileStore{log: log, path: path}, nil
}

func (s *fileStore) Load(ctx context.Context) (Record, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, err
	}

	var w wireRecord
	if err := json.Unmarshal(b, &w); err != nil {
		return Record{}, err
	}
	return Record{LastID: deref(w.LastID), UserID: deref(w.UserID)}, nil
}

func (s *fileStore) Save(ctx context.Context, rec Record) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.Marshal(wireRecord{LastID: ref(rec.LastID), UserID: ref(rec.UserID)})
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (s *fileStore) Close() error { return nil }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ref(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
