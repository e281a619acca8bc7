package main

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/olekpuchka/x-to-telegram-feed/internal/config"
	logx "github.com/olekpuchka/x-to-telegram-feed/pkg/logx"
)

// watchConfig re-applies the logging section when the config file changes.
// Run-shaping fields (handle, filters, schedule) take effect on the next
// process start; changing them mid-run could tear a cursor advance.
//
// The directory is watched, not the file: editors and configuration
// management tend to replace the file via rename, which drops a watch on
// the file itself.
func watchConfig(path string, logSvc *logx.Service, log logx.Logger) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}

	base := filepath.Base(path)
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				cfg, err := config.Load(path)
				if err != nil {
					log.Warn("config reload skipped", logx.Err(err))
					continue
				}
				logSvc.Apply(logx.Config{
					Level:   cfg.Logging.Level,
					Console: cfg.Logging.Console,
					File: logx.FileConfig{
						Enabled: cfg.Logging.File.Enabled,
						Path:    cfg.Logging.File.Path,
					},
				})
				log.Info("logging config reloaded", logx.String("level", cfg.Logging.Level))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", logx.Err(err))
			}
		}
	}()

	return func() { _ = w.Close() }, nil
}
