// Command xtf forwards new posts from an X account's timeline to a
// Telegram channel.
//
// One-shot (CI/cron):
//
//	xtf -config ./config.yaml -once
//
// Long-running loop (systemd):
//
//	xtf -config ./config.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/olekpuchka/x-to-telegram-feed/internal/config"
	"github.com/olekpuchka/x-to-telegram-feed/internal/deliver"
	"github.com/olekpuchka/x-to-telegram-feed/internal/schedule"
	"github.com/olekpuchka/x-to-telegram-feed/internal/source"
	"github.com/olekpuchka/x-to-telegram-feed/internal/state"
	"github.com/olekpuchka/x-to-telegram-feed/internal/syncer"
	logx "github.com/olekpuchka/x-to-telegram-feed/pkg/logx"
)

func main() {
	var (
		cfgPath = flag.String("config", "./config.yaml", "path to config file (json or yaml)")
		once    = flag.Bool("once", false, "run a single sync cycle and exit")
		dryRun  = flag.Bool("dry-run", false, "log would-be deliveries instead of sending")
		postID  = flag.String("post", "", "deliver this one post id and exit (does not touch the cursor)")
		handle  = flag.String("handle", "", "override source.handle from the config")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *cfgPath, *once, *dryRun, *postID, *handle); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string, once, dryRun bool, postID, handle string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	if handle != "" {
		cfg.Source.Handle = handle
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !dryRun {
		if err := cfg.ValidateDelivery(); err != nil {
			return err
		}
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	defer logSvc.Close()

	busy, err := config.ParseDurationField("state.busy_timeout", cfg.State.BusyTimeout)
	if err != nil {
		return err
	}
	store, err := state.Open(state.Config{
		Driver:      cfg.State.Driver,
		Path:        cfg.State.Path,
		BusyTimeout: busy,
	}, log.With(logx.String("component", "state")))
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()

	src := source.New(cfg.Source.BearerToken, log.With(logx.String("component", "source")))

	var transport deliver.Transport
	if !dryRun {
		transport, err = deliver.NewTelegram(deliver.TelegramConfig{
			Token:               cfg.Telegram.Token,
			ChatID:              cfg.Telegram.ChatID,
			SuppressLinkPreview: cfg.Telegram.SuppressLinkPreview,
		}, log.With(logx.String("component", "telegram")))
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
	}
	engine := deliver.NewEngine(transport, log.With(logx.String("component", "deliver")),
		deliver.WithDryRun(dryRun))

	s := syncer.New(src, engine, store, log.With(logx.String("component", "syncer")))
	opts := syncer.Options{
		Handle: cfg.Source.Handle,
		Filters: source.Filters{
			IncludeReposts: cfg.Source.IncludeReposts,
			IncludeReplies: cfg.Source.IncludeReplies,
		},
		MaxPerRun:      cfg.Source.MaxPerRun,
		ExplicitPostID: postID,
	}

	if once || postID != "" {
		return s.Run(ctx, opts)
	}

	// Loop mode.
	runner, err := schedule.NewRunner(cfg.Schedule.Spec, cfg.Schedule.Timezone, log)
	if err != nil {
		return err
	}

	stopWatch, err := watchConfig(cfgPath, logSvc, log)
	if err != nil {
		log.Warn("config watch unavailable", logx.Err(err))
	} else {
		defer stopWatch()
	}

	// Tell systemd we're up; harmless no-op elsewhere.
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	defer func() { _, _ = daemon.SdNotify(false, daemon.SdNotifyStopping) }()

	log.Info("polling started",
		logx.String("handle", cfg.Source.Handle),
		logx.String("schedule", cfg.Schedule.Spec))

	err = runner.Run(ctx, func(ctx context.Context) {
		if err := s.Run(ctx, opts); err != nil {
			// Loop mode keeps going; the next tick retries from the
			// persisted cursor.
			log.Error("run failed", logx.Err(err))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
