//go:build linux && arm64

package rpicam

import (
	"fmt"
	"os/exec"
)

// command builds the rpicam-apps invocation. rpicam-vid is the name on
// Bookworm and later, libcamera-vid on older images.
func command(cfg Config) (*exec.Cmd, error) {
	cmdName := "rpicam-vid"
	if _, err := exec.LookPath(cmdName); err != nil {
		cmdName = "libcamera-vid"
		if _, err := exec.LookPath(cmdName); err != nil {
			return nil, fmt.Errorf("neither rpicam-vid nor libcamera-vid found: %w", errUnavailable)
		}
	}

	return exec.Command(
		cmdName,
		"--width", fmt.Sprintf("%d", cfg.Width),
		"--height", fmt.Sprintf("%d", cfg.Height),
		"--timeout", "0", // Run indefinitely
		"--nopreview",
		"--codec", "mjpeg",
		"--output", "-",
		"--framerate", fmt.Sprintf("%d", cfg.FPS),
		// Module 3 specific optimizations
		"--awb", "auto",
		"--metering", "average",
	), nil
}
