// Package config reads the viewfinder settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wachiwi/viewfinder/pkg/camera"
)

// Backends.
const (
	BackendMediaDevices = "mediadevices"
	BackendRPiCam       = "rpicam"
)

type Config struct {
	Addr          string
	User          string
	Password      string
	SessionSecret string

	Backend     string
	Facing      camera.FacingMode
	SettleDelay time.Duration
	AutoStart   bool

	LogLevel     slog.Level
	LogFormat    string
	OtelEndpoint string

	FlashChip    string
	FlashLine    string
	ShutterSound string

	GallerySize      int
	GalleryRetention time.Duration

	RescanSpec string
	WatchDir   string

	RPiCamWidth  int
	RPiCamHeight int
	RPiCamFPS    int
	Placeholder  bool
}

// Default returns the settings used when nothing is set.
func Default() Config {
	return Config{
		Addr:             ":8080",
		Backend:          BackendMediaDevices,
		Facing:           camera.FacingModeUser,
		SettleDelay:      camera.DefaultSettleDelay,
		AutoStart:        true,
		LogLevel:         slog.LevelInfo,
		LogFormat:        "text",
		FlashChip:        "gpiochip0",
		GallerySize:      12,
		GalleryRetention: time.Hour,
		RescanSpec:       "@every 30s",
		WatchDir:         "/dev",
		RPiCamWidth:      1280,
		RPiCamHeight:     720,
		RPiCamFPS:        30,
	}
}

// Load reads VIEWFINDER_* variables on top of Default. Malformed values
// keep their default and are logged.
func Load() Config {
	return load(os.Getenv)
}

func load(getenv func(string) string) Config {
	c := Default()
	e := env{getenv: getenv}

	e.str("VIEWFINDER_ADDR", &c.Addr)
	e.str("VIEWFINDER_USER", &c.User)
	e.str("VIEWFINDER_PASSWORD", &c.Password)
	e.str("VIEWFINDER_SESSION_SECRET", &c.SessionSecret)

	e.str("VIEWFINDER_BACKEND", &c.Backend)
	c.Backend = strings.ToLower(c.Backend)
	if c.Backend != BackendMediaDevices && c.Backend != BackendRPiCam {
		slog.Warn("Unknown camera backend, using default", "backend", c.Backend)
		c.Backend = BackendMediaDevices
	}
	if v := getenv("VIEWFINDER_FACING"); v != "" {
		if f, ok := camera.ParseFacingMode(strings.ToLower(v)); ok {
			c.Facing = f
		} else {
			slog.Warn("Invalid facing mode, using default", "value", v)
		}
	}
	var settleMS int
	if e.integer("VIEWFINDER_SETTLE_MS", &settleMS) {
		c.SettleDelay = time.Duration(settleMS) * time.Millisecond
		if settleMS == 0 {
			c.SettleDelay = -1
		}
	}
	e.boolean("VIEWFINDER_AUTOSTART", &c.AutoStart)

	if v := getenv("VIEWFINDER_LOG_LEVEL"); v != "" {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			slog.Warn("Invalid log level, using default", "value", v)
			c.LogLevel = slog.LevelInfo
		}
	}
	e.str("VIEWFINDER_LOG_FORMAT", &c.LogFormat)
	e.str("VIEWFINDER_OTEL_ENDPOINT", &c.OtelEndpoint)

	e.str("VIEWFINDER_FLASH_CHIP", &c.FlashChip)
	e.str("VIEWFINDER_FLASH_LINE", &c.FlashLine)
	e.str("VIEWFINDER_SHUTTER_SOUND", &c.ShutterSound)

	e.integer("VIEWFINDER_GALLERY_SIZE", &c.GallerySize)
	e.duration("VIEWFINDER_GALLERY_RETENTION", &c.GalleryRetention)

	e.str("VIEWFINDER_RESCAN", &c.RescanSpec)
	e.str("VIEWFINDER_WATCH_DEV", &c.WatchDir)

	e.integer("VIEWFINDER_RPICAM_WIDTH", &c.RPiCamWidth)
	e.integer("VIEWFINDER_RPICAM_HEIGHT", &c.RPiCamHeight)
	e.integer("VIEWFINDER_RPICAM_FPS", &c.RPiCamFPS)
	e.boolean("VIEWFINDER_PLACEHOLDER", &c.Placeholder)

	return c
}

// RequireCredentials fails when the web UI would run without a login.
func (c Config) RequireCredentials() error {
	if c.User == "" || c.Password == "" {
		return fmt.Errorf("VIEWFINDER_USER and VIEWFINDER_PASSWORD environment variables must be set")
	}
	return nil
}

type env struct {
	getenv func(string) string
}

func (e env) str(key string, dst *string) {
	if v := e.getenv(key); v != "" {
		*dst = v
	}
}

func (e env) integer(key string, dst *int) bool {
	v := e.getenv(key)
	if v == "" {
		return false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		slog.Warn("Invalid number, using default", "key", key, "value", v)
		return false
	}
	*dst = n
	return true
}

func (e env) duration(key string, dst *time.Duration) {
	v := e.getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		slog.Warn("Invalid duration, using default", "key", key, "value", v)
		return
	}
	*dst = d
}

func (e env) boolean(key string, dst *bool) {
	v := e.getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("Invalid boolean, using default", "key", key, "value", v)
		return
	}
	*dst = b
}
