package rpicam

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
)

// process is a capture command writing MJPEG to stdout.
type process struct {
	io.ReadCloser
	cmd    *exec.Cmd
	stderr bytes.Buffer
}

func startSource(cfg Config) (io.ReadCloser, error) {
	cmd, err := command(cfg)
	if err != nil {
		return nil, err
	}

	p := &process{cmd: cmd}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	p.ReadCloser = stdout
	// Capture stderr for debugging
	cmd.Stderr = &p.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w, stderr: %s", cmd.Path, err, p.stderr.String())
	}
	slog.Info("Started camera streaming process", "command", cmd.Path, "width", cfg.Width, "height", cfg.Height, "fps", cfg.FPS)
	return p, nil
}

// Close kills the process and reaps it.
func (p *process) Close() error {
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	err := p.cmd.Wait()
	if err != nil {
		slog.Debug("Camera streaming process exited", "error", err, "stderr", p.stderr.String())
	} else {
		slog.Info("Camera streaming process exited cleanly")
	}
	return nil
}
