package main

import (
	"context"
	"embed"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wachiwi/viewfinder/pkg/capture"
	"github.com/wachiwi/viewfinder/pkg/config"
	"github.com/wachiwi/viewfinder/pkg/flash"
	"github.com/wachiwi/viewfinder/pkg/logger"
	"github.com/wachiwi/viewfinder/pkg/shutter"
	"github.com/wachiwi/viewfinder/pkg/telemetry"
	"github.com/wachiwi/viewfinder/pkg/viewfinder"
)

//go:embed templates/*
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// autoStartDelay gives the server a moment to come up before the camera
// is opened.
const autoStartDelay = 500 * time.Millisecond

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(gin.ReleaseMode)

	if err := cfg.RequireCredentials(); err != nil {
		logger.Fatal("Missing credentials", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, "viewfinder", cfg.OtelEndpoint)
	if err != nil {
		logger.Fatal("Failed to set up telemetry", "error", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	platform, available := newPlatform(cfg)
	opts := viewfinder.Options{
		Available:   available,
		Facing:      cfg.Facing,
		SettleDelay: cfg.SettleDelay,
		Gallery:     capture.NewGallery(cfg.GallerySize, cfg.GalleryRetention),
	}

	if cfg.FlashLine != "" {
		led, err := openFlash(cfg)
		if err != nil {
			slog.Warn("Flash LED disabled", "error", err)
		} else {
			defer led.Close()
			opts.Light = led
		}
	}
	if cfg.ShutterSound != "" {
		sound, err := shutter.Load(cfg.ShutterSound)
		if err != nil {
			slog.Warn("Shutter sound disabled", "error", err)
		} else {
			opts.Shutter = sound
		}
	}

	vf := viewfinder.New(platform, opts)
	defer vf.Negotiator().Release()

	jobs, err := startJobs(cfg, vf)
	if err != nil {
		logger.Fatal("Failed to schedule jobs", "error", err)
	}
	defer jobs.Stop()
	go watchDevices(ctx, cfg, vf)

	if cfg.AutoStart {
		time.AfterFunc(autoStartDelay, func() {
			if _, err := vf.Start(ctx, viewfinder.Local, ""); err != nil {
				slog.Warn("Camera did not start", "error", err)
			}
		})
	}

	router, err := newRouter(cfg, vf)
	if err != nil {
		logger.Fatal("Failed to set up routes", "error", err)
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Error shutting down server", "error", err)
		}
	}()

	slog.Info("Server is running", "addr", cfg.Addr, "backend", cfg.Backend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to run server", "error", err)
	}
	slog.Info("Server stopped")
}

func openFlash(cfg config.Config) (*flash.LED, error) {
	line, err := flash.ParseLine(cfg.FlashLine)
	if err != nil {
		return nil, err
	}
	return flash.Open(cfg.FlashChip, line)
}
