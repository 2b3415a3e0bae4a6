// Package rpicam implements camera.Platform for the Raspberry Pi Camera
// Module. Frames come from a long-running rpicam-vid (or libcamera-vid)
// process writing MJPEG to stdout; on macOS ffmpeg stands in for local
// development.
package rpicam

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/wachiwi/viewfinder/pkg/camera"
	"github.com/wachiwi/viewfinder/pkg/platform"
)

// DeviceID identifies the single camera this platform exposes.
const DeviceID = "rpicam0"

// Sensor limits of the Camera Module 3.
const (
	MaxWidth  = 4608
	MaxHeight = 2592
)

var errUnavailable = errors.New("no capture command available on this platform")

// Config holds camera configuration
type Config struct {
	Width  int
	Height int
	FPS    int
	Facing camera.FacingMode // which way the module points

	// Placeholder serves generated frames when no capture command is
	// installed.
	Placeholder bool
}

func (c Config) withDefaults() Config {
	if c.Width == 0 {
		c.Width = 640
	}
	if c.Height == 0 {
		c.Height = 480
	}
	if c.FPS == 0 {
		c.FPS = 30
	}
	return c
}

// Platform exposes the Pi camera. The hardware is exclusive: a second
// stream cannot be opened while one is live.
type Platform struct {
	cfg   Config
	start func(Config) (io.ReadCloser, error)

	mu     sync.Mutex
	active *Track
}

// New creates a new camera platform with the given configuration
func New(cfg Config) *Platform {
	return &Platform{
		cfg:   cfg.withDefaults(),
		start: startSource,
	}
}

// Available reports whether a capture command is installed.
func Available() bool {
	_, err := command(Config{}.withDefaults())
	return err == nil
}

func (p *Platform) label() string {
	switch p.cfg.Facing {
	case camera.FacingModeUser:
		return "Raspberry Pi Camera Module (front)"
	case camera.FacingModeEnvironment:
		return "Raspberry Pi Camera Module (back)"
	}
	return "Raspberry Pi Camera Module"
}

func (p *Platform) ListDevices(ctx context.Context) ([]camera.DeviceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []camera.DeviceInfo{{ID: DeviceID, Kind: camera.KindVideoInput, Label: p.label()}}, nil
}

// RequestStream starts the capture process. Width and height are ideal
// values within the sensor limits; the facing hint is ignored since there is
// only one camera to offer.
func (p *Platform) RequestStream(ctx context.Context, req camera.StreamRequest) (camera.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v := req.Video
	if v.DeviceID != "" && v.DeviceID != DeviceID {
		return nil, &camera.PlatformError{
			Name:    camera.NameOverconstrained,
			Message: fmt.Sprintf("device %q not available", v.DeviceID),
		}
	}
	if v.Width > MaxWidth || v.Height > MaxHeight {
		return nil, &camera.PlatformError{
			Name:    camera.NameOverconstrained,
			Message: fmt.Sprintf("%dx%d exceeds the sensor", v.Width, v.Height),
		}
	}

	cfg := p.cfg
	if v.Width > 0 && v.Height > 0 {
		cfg.Width, cfg.Height = v.Width, v.Height
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil {
		return nil, &camera.PlatformError{Name: camera.NameNotReadable, Message: "camera is already in use"}
	}

	src, err := p.start(cfg)
	if err != nil {
		if !errors.Is(err, errUnavailable) {
			return nil, &camera.PlatformError{Name: camera.NameNotReadable, Message: err.Error(), Err: err}
		}
		if !cfg.Placeholder {
			return nil, &camera.PlatformError{Name: camera.NameNotFound, Message: err.Error(), Err: err}
		}
		slog.Warn("Camera capture not available, using placeholder frames", "error", err)
		src = newPlaceholder(cfg)
	}

	t := &Track{
		platform: p,
		src:      src,
		frames:   NewSplitter(),
		label:    p.label(),
		settings: camera.TrackSettings{
			DeviceID:   DeviceID,
			FacingMode: p.cfg.Facing,
			Width:      cfg.Width,
			Height:     cfg.Height,
		},
	}
	go func() {
		if err := t.frames.Run(src); err != nil {
			slog.Error("Camera stream failed", "error", err)
		}
	}()
	p.active = t
	slog.Info("Camera started", "width", cfg.Width, "height", cfg.Height, "fps", cfg.FPS)
	return &Stream{tracks: []camera.Track{t}}, nil
}

func (p *Platform) release(t *Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == t {
		p.active = nil
	}
}

// Stream holds the single Pi camera track.
type Stream struct {
	tracks []camera.Track
}

func (s *Stream) Tracks() []camera.Track { return s.tracks }

// Track is the live Pi camera.
type Track struct {
	platform *Platform
	src      io.ReadCloser
	frames   *Splitter
	label    string
	settings camera.TrackSettings
	zoom     platform.DigitalZoom

	stopOnce sync.Once
	stopErr  error
}

func (t *Track) ID() string        { return DeviceID }
func (t *Track) Kind() camera.Kind { return camera.KindVideoInput }
func (t *Track) Label() string     { return t.label }

// Stop ends the capture process and frees the camera for the next stream.
func (t *Track) Stop() error {
	t.stopOnce.Do(func() {
		t.stopErr = t.src.Close()
		t.platform.release(t)
		slog.Info("Camera stopped")
	})
	return t.stopErr
}

func (t *Track) Settings() camera.TrackSettings {
	s := t.settings
	s.Zoom = t.zoom.Factor()
	return s
}

func (t *Track) Capabilities() camera.TrackCapabilities {
	return t.zoom.Capabilities()
}

func (t *Track) ApplyConstraints(c camera.TrackConstraints) error {
	if c.Zoom == 0 {
		return nil
	}
	return t.zoom.Set(c.Zoom)
}

// ReadFrame decodes the latest JPEG frame and applies the zoom.
func (t *Track) ReadFrame(ctx context.Context) (image.Image, error) {
	data, err := t.frames.Frame(ctx)
	if err != nil {
		return nil, err
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return t.zoom.Apply(img), nil
}

// placeholder streams generated JPEG frames through a pipe.
type placeholder struct {
	*io.PipeReader
}

func newPlaceholder(cfg Config) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(cfg.FPS))
		defer ticker.Stop()
		for range ticker.C {
			frame, err := placeholderFrame(cfg.Width, cfg.Height)
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			if _, err := pw.Write(frame); err != nil {
				return
			}
		}
	}()
	return placeholder{pr}
}

// placeholderFrame creates a simple colored gradient that changes every
// second.
func placeholderFrame(width, height int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	color := byte(time.Now().Unix() % 256)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			offset := y*img.Stride + x*4
			img.Pix[offset] = color
			img.Pix[offset+1] = byte((x * 255) / width)
			img.Pix[offset+2] = byte((y * 255) / height)
			img.Pix[offset+3] = 255
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
