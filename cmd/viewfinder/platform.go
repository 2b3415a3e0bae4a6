package main

import (
	"log/slog"

	"github.com/wachiwi/viewfinder/pkg/camera"
	"github.com/wachiwi/viewfinder/pkg/config"
	"github.com/wachiwi/viewfinder/pkg/platform/rpicam"
	"github.com/wachiwi/viewfinder/pkg/platform/webcam"
)

// newPlatform picks the camera backend. The second result reports whether
// it can serve cameras at all.
func newPlatform(cfg config.Config) (camera.Platform, bool) {
	switch cfg.Backend {
	case config.BackendRPiCam:
		available := rpicam.Available() || cfg.Placeholder
		if !available {
			slog.Warn("No rpicam-vid or libcamera-vid found")
		}
		return rpicam.New(rpicam.Config{
			Width:       cfg.RPiCamWidth,
			Height:      cfg.RPiCamHeight,
			FPS:         cfg.RPiCamFPS,
			Facing:      cfg.Facing,
			Placeholder: cfg.Placeholder,
		}), available
	default:
		// The drivers are compiled in; cameras may still be plugged later.
		if !webcam.Available() {
			slog.Warn("No cameras detected yet")
		}
		return webcam.New(), true
	}
}
