// Package webcam implements camera.Platform on top of pion/mediadevices,
// covering V4L2 cameras on Linux and AVFoundation cameras on macOS.
package webcam

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/disintegration/imaging"
	"github.com/pion/mediadevices"
	_ "github.com/pion/mediadevices/pkg/driver/camera" // registers the camera adapter
	"github.com/pion/mediadevices/pkg/io/video"
	"github.com/pion/mediadevices/pkg/prop"

	"github.com/wachiwi/viewfinder/pkg/camera"
	"github.com/wachiwi/viewfinder/pkg/platform"
)

// Platform serves camera.Platform from the registered mediadevices drivers.
type Platform struct {
	enumerate    func() []mediadevices.MediaDeviceInfo
	getUserMedia func(mediadevices.MediaStreamConstraints) (mediadevices.MediaStream, error)
}

// New returns a Platform backed by the process-wide driver registry.
func New() *Platform {
	return &Platform{
		enumerate:    mediadevices.EnumerateDevices,
		getUserMedia: mediadevices.GetUserMedia,
	}
}

// Available reports whether any video input driver is registered.
func Available() bool {
	for _, d := range mediadevices.EnumerateDevices() {
		if d.Kind == mediadevices.VideoInput {
			return true
		}
	}
	return false
}

func (p *Platform) ListDevices(ctx context.Context) ([]camera.DeviceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []camera.DeviceInfo
	for _, d := range p.enumerate() {
		kind, ok := kindOf(d.Kind)
		if !ok {
			continue
		}
		out = append(out, camera.DeviceInfo{ID: d.DeviceID, Kind: kind, Label: d.Label})
	}
	return out, nil
}

func kindOf(t mediadevices.MediaDeviceType) (camera.Kind, bool) {
	switch t {
	case mediadevices.VideoInput:
		return camera.KindVideoInput, true
	case mediadevices.AudioInput:
		return camera.KindAudioInput, true
	}
	return "", false
}

// RequestStream opens a video stream and reads one frame before handing it
// out, so a camera that cannot deliver fails here instead of in the viewer.
// Width and height are ideal values; the device id is exact. mediadevices
// has no facing mode, so a facing hint picks the first device whose label
// matches and is dropped when none does.
func (p *Platform) RequestStream(ctx context.Context, req camera.StreamRequest) (camera.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	videos := videoInputs(p.enumerate())
	if len(videos) == 0 {
		return nil, &camera.PlatformError{Name: camera.NameNotFound, Message: "no video input devices"}
	}

	id := req.Video.DeviceID
	if id != "" {
		if _, ok := videos[id]; !ok {
			return nil, &camera.PlatformError{
				Name:    camera.NameOverconstrained,
				Message: fmt.Sprintf("device %q not available", id),
			}
		}
	} else if req.Video.FacingMode != camera.FacingModeNone {
		id = pickFacing(p.enumerate(), req.Video.FacingMode)
	}

	stream, err := p.getUserMedia(mediadevices.MediaStreamConstraints{
		Video: func(c *mediadevices.MediaTrackConstraints) {
			if id != "" {
				c.DeviceID = id
			}
			if req.Video.Width > 0 {
				c.Width = prop.Int(req.Video.Width)
			}
			if req.Video.Height > 0 {
				c.Height = prop.Int(req.Video.Height)
			}
		},
	})
	if err != nil {
		return nil, classify(err)
	}

	tracks := stream.GetVideoTracks()
	if len(tracks) == 0 {
		return nil, &camera.PlatformError{Name: camera.NameNotReadable, Message: "stream has no video track"}
	}
	vt, ok := tracks[0].(*mediadevices.VideoTrack)
	if !ok {
		closeAll(tracks)
		return nil, &camera.PlatformError{Name: camera.NameNotSupported, Message: fmt.Sprintf("unexpected track type %T", tracks[0])}
	}

	reader := vt.NewReader(false)
	img, release, err := reader.Read()
	if err != nil {
		closeAll(tracks)
		return nil, &camera.PlatformError{Name: camera.NameNotReadable, Message: "camera delivered no frame", Err: err}
	}
	bounds := img.Bounds()
	release()

	deviceID := vt.ID()
	label := videos[deviceID]
	t := &Track{
		vt:     vt,
		reader: reader,
		label:  label,
		settings: camera.TrackSettings{
			DeviceID:   deviceID,
			FacingMode: platform.FacingFromLabel(label),
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
		},
	}
	slog.Debug("Opened mediadevices stream", "deviceId", deviceID, "label", label, "width", bounds.Dx(), "height", bounds.Dy())
	return &Stream{tracks: []camera.Track{t}}, nil
}

func videoInputs(devices []mediadevices.MediaDeviceInfo) map[string]string {
	out := make(map[string]string)
	for _, d := range devices {
		if d.Kind == mediadevices.VideoInput {
			out[d.DeviceID] = d.Label
		}
	}
	return out
}

func pickFacing(devices []mediadevices.MediaDeviceInfo, facing camera.FacingMode) string {
	for _, d := range devices {
		if d.Kind == mediadevices.VideoInput && platform.FacingFromLabel(d.Label) == facing {
			return d.DeviceID
		}
	}
	return ""
}

func closeAll(tracks []mediadevices.Track) {
	for _, t := range tracks {
		if err := t.Close(); err != nil {
			slog.Debug("Failed to close track", "error", err)
		}
	}
}

// classify gives driver errors the symbolic names the negotiator expects.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	name := ""
	switch {
	case strings.Contains(msg, "fits the constraints"):
		name = camera.NameOverconstrained
	case errors.Is(err, syscall.EBUSY), strings.Contains(msg, "busy"):
		name = camera.NameNotReadable
	case errors.Is(err, os.ErrPermission), strings.Contains(msg, "permission denied"):
		name = camera.NameNotAllowed
	case errors.Is(err, os.ErrNotExist), strings.Contains(msg, "no such device"):
		name = camera.NameNotFound
	default:
		return err
	}
	return &camera.PlatformError{Name: name, Message: err.Error(), Err: err}
}

// Stream holds the tracks of one getUserMedia call.
type Stream struct {
	tracks []camera.Track
}

func (s *Stream) Tracks() []camera.Track { return s.tracks }

// Track is a live mediadevices video track.
type Track struct {
	vt       *mediadevices.VideoTrack
	reader   video.Reader
	label    string
	settings camera.TrackSettings
	zoom     platform.DigitalZoom

	mu      sync.Mutex // serializes reads and Stop
	stopped bool
}

func (t *Track) ID() string        { return t.settings.DeviceID }
func (t *Track) Kind() camera.Kind { return camera.KindVideoInput }
func (t *Track) Label() string     { return t.label }

func (t *Track) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return nil
	}
	t.stopped = true
	return t.vt.Close()
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

// ReadFrame returns a copy of the next frame with the zoom applied.
func (t *Track) ReadFrame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return nil, camera.ErrNoActiveStream
	}
	img, release, err := t.reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading frame: %w", err)
	}
	// The driver recycles the buffer on release.
	frame := imaging.Clone(img)
	release()
	return t.zoom.Apply(frame), nil
}
