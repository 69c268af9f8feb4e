package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/ThePeze/BershkaStockMonitor/internal/config"
	"github.com/ThePeze/BershkaStockMonitor/internal/fetch"
	"github.com/ThePeze/BershkaStockMonitor/internal/monitor"
	"github.com/ThePeze/BershkaStockMonitor/internal/notify"
	"github.com/ThePeze/BershkaStockMonitor/internal/state"
	logx "github.com/ThePeze/BershkaStockMonitor/pkg/logx"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config file (json or yaml)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		fmt.Println("fatal: config:", err)
		os.Exit(1)
	}

	log, closeLog := logx.New(cfg.LogConfig())
	defer func() { _ = closeLog() }()
	mgr.SetLogger(log.With(logx.String("component", "config")))

	store, err := state.Open(cfg.StoreConfig(), log.With(logx.String("component", "state")))
	if err != nil {
		log.Error("state store init failed", logx.Err(err))
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegram(cfg.TelegramOptions())
		if err != nil {
			log.Error("telegram init failed", logx.Err(err))
			os.Exit(1)
		}
		notifier = tg
	}
	log.Info("notifications", logx.Bool("telegram", cfg.Telegram.Enabled))

	sched := monitor.New(cfg.MonitorOptions(), cfg.Products, monitor.Deps{
		Fetcher:  fetch.NewClient(cfg.FetchConfig()),
		Notifier: notifier,
		Store:    store,
		Log:      log.With(logx.String("component", "monitor")),
	})

	if cfg.Watch.Enabled {
		sub := mgr.Subscribe(1)
		settings := make(chan monitor.Settings, 1)
		sched.SetReload(settings)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case c := <-sub:
					// The fetch target stays fixed for the process lifetime;
					// reloads pick up products and polling knobs only.
					pushLatest(settings, monitor.Settings{Options: c.MonitorOptions(), Products: c.Products})
				}
			}
		}()
		go func() { _ = mgr.Watch(ctx) }()
	}

	if cfg.Summary.Enabled {
		cr, err := monitor.StartSummary(ctx, sched, notifier, log.With(logx.String("component", "summary")), cfg.SummarySchedule())
		if err != nil {
			log.Error("summary init failed", logx.Err(err))
			os.Exit(1)
		}
		defer cr.Stop()
	}

	// Best-effort; no-op outside a systemd unit.
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)

	err = sched.Run(ctx)

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err != nil {
		log.Error("monitor stopped", logx.Err(err))
		os.Exit(1)
	}
	log.Info("monitor stopped")
}

// pushLatest delivers s to ch, displacing a queued older value when the
// scheduler has not drained it yet, so back-to-back reloads converge on
// the newest settings.
func pushLatest(ch chan monitor.Settings, s monitor.Settings) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
