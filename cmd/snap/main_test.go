package main

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wachiwi/viewfinder/pkg/camera"
)

type stillTrack struct{ id string }

func (t *stillTrack) ID() string                                     { return t.id }
func (t *stillTrack) Kind() camera.Kind                              { return camera.KindVideoInput }
func (t *stillTrack) Label() string                                  { return "Test Camera" }
func (t *stillTrack) Stop() error                                    { return nil }
func (t *stillTrack) Settings() camera.TrackSettings                 { return camera.TrackSettings{DeviceID: t.id} }
func (t *stillTrack) Capabilities() camera.TrackCapabilities         { return camera.TrackCapabilities{} }
func (t *stillTrack) ApplyConstraints(camera.TrackConstraints) error { return nil }

func (t *stillTrack) ReadFrame(ctx context.Context) (image.Image, error) {
	return image.NewGray(image.Rect(0, 0, 40, 30)), nil
}

type stillStream struct{ track *stillTrack }

func (s *stillStream) Tracks() []camera.Track { return []camera.Track{s.track} }

type stillPlatform struct{}

func (stillPlatform) ListDevices(ctx context.Context) ([]camera.DeviceInfo, error) {
	return []camera.DeviceInfo{
		{ID: "usb-1", Kind: camera.KindVideoInput, Label: "USB Camera"},
		{ID: "int-0", Kind: camera.KindVideoInput, Label: "Integrated Front Camera"},
	}, nil
}

func (stillPlatform) RequestStream(ctx context.Context, req camera.StreamRequest) (camera.Stream, error) {
	return &stillStream{track: &stillTrack{id: req.Video.DeviceID}}, nil
}

func TestList(t *testing.T) {
	var out bytes.Buffer
	if err := list(context.Background(), stillPlatform{}, &out); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and two cameras, got %q", out.String())
	}
	if !strings.Contains(lines[1], "int-0") || !strings.Contains(lines[1], "front") {
		t.Errorf("Expected the front camera first, got %q", lines[1])
	}
}

func TestSnap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jpg")
	opts := options{output: path, deviceID: "usb-1", facing: "user"}

	if err := snap(context.Background(), stillPlatform{}, opts); err != nil {
		t.Fatalf("snap failed: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Expected the photo to be written: %v", err)
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatalf("Expected a JPEG: %v", err)
	}
	if cfg.Width != 40 || cfg.Height != 30 {
		t.Errorf("Unexpected size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestSnapInvalidFacing(t *testing.T) {
	opts := options{output: filepath.Join(t.TempDir(), "x.jpg"), facing: "sideways"}
	if err := snap(context.Background(), stillPlatform{}, opts); err == nil {
		t.Error("Expected an invalid facing mode to fail")
	}
}

func TestNewPlatformUnknownBackend(t *testing.T) {
	if _, err := newPlatform(options{backend: "v4l2"}); err == nil {
		t.Error("Expected an unknown backend to fail")
	}
}
