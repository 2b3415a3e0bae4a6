package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/wachiwi/viewfinder/pkg/camera"
	"github.com/wachiwi/viewfinder/pkg/capture"
	"github.com/wachiwi/viewfinder/pkg/config"
	"github.com/wachiwi/viewfinder/pkg/logger"
	"github.com/wachiwi/viewfinder/pkg/platform/rpicam"
	"github.com/wachiwi/viewfinder/pkg/platform/webcam"
)

type options struct {
	list        bool
	output      string
	deviceID    string
	facing      string
	backend     string
	mirror      bool
	placeholder bool
	timeout     time.Duration
}

func main() {
	logger.Setup(slog.LevelInfo, "text")

	var opts options
	flag.BoolVar(&opts.list, "list", false, "List cameras and exit")
	flag.StringVar(&opts.output, "o", "snap.jpg", "Output file path")
	flag.StringVar(&opts.deviceID, "device", "", "Camera id to use")
	flag.StringVar(&opts.facing, "facing", "user", "Facing hint: user or environment")
	flag.StringVar(&opts.backend, "backend", config.BackendMediaDevices, "Camera backend: mediadevices or rpicam")
	flag.BoolVar(&opts.mirror, "mirror", false, "Mirror the photo like the viewfinder does for front cameras")
	flag.BoolVar(&opts.placeholder, "placeholder", false, "Use generated frames when rpicam is not installed")
	flag.DurationVar(&opts.timeout, "timeout", 15*time.Second, "Give up after this long")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	p, err := newPlatform(opts)
	if err != nil {
		logger.Fatal("Invalid backend", "error", err)
	}

	if opts.list {
		err = list(ctx, p, os.Stdout)
	} else {
		err = snap(ctx, p, opts)
	}
	if err != nil {
		var cerr *camera.Error
		if errors.As(err, &cerr) {
			logger.Fatal(cerr.Message, "category", cerr.Category, "error", cerr.Err)
		}
		logger.Fatal("Snap failed", "error", err)
	}
}

func newPlatform(opts options) (camera.Platform, error) {
	switch opts.backend {
	case config.BackendMediaDevices:
		return webcam.New(), nil
	case config.BackendRPiCam:
		facing, _ := camera.ParseFacingMode(opts.facing)
		return rpicam.New(rpicam.Config{Facing: facing, Placeholder: opts.placeholder}), nil
	}
	return nil, fmt.Errorf("unknown backend %q", opts.backend)
}

func list(ctx context.Context, p camera.Platform, out io.Writer) error {
	e := camera.NewEnumerator(p)
	if !e.Enumerate(ctx) {
		return fmt.Errorf("no cameras found")
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tFACING\tLABEL")
	for i, d := range e.Devices() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, d.ID, d.Facing, d.Label)
	}
	return tw.Flush()
}

func snap(ctx context.Context, p camera.Platform, opts options) error {
	facing, ok := camera.ParseFacingMode(opts.facing)
	if !ok {
		return fmt.Errorf("invalid facing mode %q", opts.facing)
	}
	n := camera.NewNegotiator(p, camera.NewEnumerator(p), camera.Options{Facing: facing})
	res, err := n.Acquire(ctx, opts.deviceID)
	if err != nil {
		return err
	}
	defer n.Release()

	track, ok := n.VideoTrack()
	if !ok {
		return camera.ErrNoActiveStream
	}
	reader, ok := track.(camera.FrameReader)
	if !ok {
		return camera.ErrNoFrame
	}
	img, err := reader.ReadFrame(ctx)
	if err != nil {
		return fmt.Errorf("failed to read frame: %w", err)
	}

	photo, err := capture.Encode(img, opts.mirror && n.Mirrored())
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, photo.JPEG, 0644); err != nil {
		return fmt.Errorf("failed to write photo: %w", err)
	}

	slog.Info("Saved photo",
		"file", opts.output,
		"deviceId", res.Settings.DeviceID,
		"label", res.Settings.Label,
		"rung", res.Rung,
		"width", photo.Width,
		"height", photo.Height,
	)
	return nil
}
