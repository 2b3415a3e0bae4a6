package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wachiwi/viewfinder/pkg/config"
	"github.com/wachiwi/viewfinder/pkg/hotplug"
	"github.com/wachiwi/viewfinder/pkg/logger"
	"github.com/wachiwi/viewfinder/pkg/viewfinder"
)

const rescanTimeout = 10 * time.Second

// startJobs schedules the clock tick on every minute and the periodic
// camera rescan.
func startJobs(cfg config.Config, vf *viewfinder.Viewfinder) (*cron.Cron, error) {
	cronLogger := &logger.CronLogger{Logger: slog.Default()}
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	if _, err := c.AddFunc("* * * * *", vf.Tick); err != nil {
		return nil, fmt.Errorf("failed to schedule clock: %w", err)
	}
	if cfg.RescanSpec != "" {
		_, err := c.AddFunc(cfg.RescanSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), rescanTimeout)
			defer cancel()
			vf.Rescan(ctx)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to schedule rescan %q: %w", cfg.RescanSpec, err)
		}
	}

	c.Start()
	return c, nil
}

// watchDevices rescans as soon as a camera is plugged or unplugged.
func watchDevices(ctx context.Context, cfg config.Config, vf *viewfinder.Viewfinder) {
	if cfg.WatchDir == "" {
		return
	}
	w := &hotplug.Watcher{
		Dir: cfg.WatchDir,
		OnChange: func() {
			slog.Info("Camera devices changed, rescanning")
			vf.Rescan(ctx)
		},
	}
	if err := w.Run(ctx); err != nil {
		slog.Warn("Hot-plug detection disabled", "error", err)
	}
}
