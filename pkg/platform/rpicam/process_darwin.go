//go:build darwin

package rpicam

import (
	"fmt"
	"os/exec"
)

// command captures the default macOS webcam with ffmpeg so the Pi code
// path can be developed locally.
func command(cfg Config) (*exec.Cmd, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", errUnavailable)
	}

	// Most Mac cameras only accept 30 fps.
	return exec.Command(
		"ffmpeg",
		"-f", "avfoundation",
		"-framerate", "30",
		"-video_size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-i", "0",
		"-f", "mjpeg",
		"-q:v", "5",
		"-hide_banner",
		"-loglevel", "error",
		"-",
	), nil
}
