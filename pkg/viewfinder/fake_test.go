package viewfinder

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/wachiwi/viewfinder/pkg/camera"
)

type fakeTrack struct {
	mu       sync.Mutex
	id       string
	label    string
	facing   camera.FacingMode
	zoom     *camera.Range
	applied  float64
	stopped  bool
	frameErr error
}

func (t *fakeTrack) ID() string        { return t.id }
func (t *fakeTrack) Kind() camera.Kind { return camera.KindVideoInput }
func (t *fakeTrack) Label() string     { return t.label }

func (t *fakeTrack) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	return nil
}

func (t *fakeTrack) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *fakeTrack) Settings() camera.TrackSettings {
	return camera.TrackSettings{DeviceID: t.id, FacingMode: t.facing, Width: 64, Height: 48}
}

func (t *fakeTrack) Capabilities() camera.TrackCapabilities {
	return camera.TrackCapabilities{Zoom: t.zoom}
}

func (t *fakeTrack) ApplyConstraints(c camera.TrackConstraints) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.applied = c.Zoom
	return nil
}

// ReadFrame returns a frame whose left half is red and right half blue.
func (t *fakeTrack) ReadFrame(ctx context.Context) (image.Image, error) {
	if t.frameErr != nil {
		return nil, t.frameErr
	}
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			c := color.RGBA{R: 255, A: 255}
			if x >= 32 {
				c = color.RGBA{B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img, nil
}

type fakeStream struct {
	tracks []camera.Track
}

func (s *fakeStream) Tracks() []camera.Track { return s.tracks }

type fakePlatform struct {
	mu       sync.Mutex
	devices  []camera.DeviceInfo
	err      error
	zoom     *camera.Range
	requests int
	tracks   []*fakeTrack
}

func (p *fakePlatform) ListDevices(ctx context.Context) ([]camera.DeviceInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]camera.DeviceInfo, len(p.devices))
	copy(out, p.devices)
	return out, nil
}

func (p *fakePlatform) RequestStream(ctx context.Context, req camera.StreamRequest) (camera.Stream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests++
	if p.err != nil {
		return nil, p.err
	}
	id := req.Video.DeviceID
	if id == "" && len(p.devices) > 0 {
		id = p.devices[0].ID
	}
	t := &fakeTrack{id: id, zoom: p.zoom}
	for _, d := range p.devices {
		if d.ID == id {
			t.label = d.Label
		}
	}
	p.tracks = append(p.tracks, t)
	return &fakeStream{tracks: []camera.Track{t}}, nil
}

func (p *fakePlatform) requestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests
}

func (p *fakePlatform) lastTrack() *fakeTrack {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.tracks) == 0 {
		return nil
	}
	return p.tracks[len(p.tracks)-1]
}

func (p *fakePlatform) setDevices(d []camera.DeviceInfo, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.devices = d
	p.err = err
}

type fakeLight struct {
	mu     sync.Mutex
	events []string
}

func (l *fakeLight) On() error  { l.record("on"); return nil }
func (l *fakeLight) Off() error { l.record("off"); return nil }

func (l *fakeLight) record(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

type fakePlayer struct {
	mu    sync.Mutex
	plays int
}

func (p *fakePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays++
}

func twoCameras() []camera.DeviceInfo {
	return []camera.DeviceInfo{
		{ID: "back", Kind: camera.KindVideoInput, Label: "Back Camera"},
		{ID: "front", Kind: camera.KindVideoInput, Label: "Front Camera"},
	}
}
