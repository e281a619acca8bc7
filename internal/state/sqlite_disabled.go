//go:build !sqlite
// +build !sqlite

package state

import (
	"errors"

	logx "github.com/olekpuchka/x-to-telegram-feed/pkg/logx"
)

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	_ = cfg
	_ = log
	return nil, errors.New("state: sqlite driver not built: build with -tags sqlite")
}
