package camera

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeTrack struct {
	mu       sync.Mutex
	id       string
	label    string
	kind     Kind
	settings TrackSettings
	caps     TrackCapabilities
	stopErr  error
	stopped  bool
	applied  []TrackConstraints
}

func (t *fakeTrack) ID() string    { return t.id }
func (t *fakeTrack) Kind() Kind    { return t.kind }
func (t *fakeTrack) Label() string { return t.label }

func (t *fakeTrack) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	return t.stopErr
}

func (t *fakeTrack) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *fakeTrack) Settings() TrackSettings         { return t.settings }
func (t *fakeTrack) Capabilities() TrackCapabilities { return t.caps }

func (t *fakeTrack) ApplyConstraints(c TrackConstraints) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.applied = append(t.applied, c)
	t.settings.Zoom = c.Zoom
	return nil
}

type fakeStream struct {
	tracks []Track
}

func (s *fakeStream) Tracks() []Track { return s.tracks }

// fakePlatform answers RequestStream with respond, or with a stream built
// from the request when respond is nil.
type fakePlatform struct {
	mu       sync.Mutex
	devices  []DeviceInfo
	listErr  error
	listed   int
	requests []StreamRequest
	streams  []*fakeStream
	respond  func(call int, req StreamRequest) error

	// When set, RequestStream signals entered and then waits on release.
	entered chan struct{}
	release chan struct{}
}

func (p *fakePlatform) ListDevices(ctx context.Context) ([]DeviceInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listed++
	if p.listErr != nil {
		return nil, p.listErr
	}
	out := make([]DeviceInfo, len(p.devices))
	copy(out, p.devices)
	return out, nil
}

func (p *fakePlatform) RequestStream(ctx context.Context, req StreamRequest) (Stream, error) {
	p.mu.Lock()
	call := len(p.requests)
	p.requests = append(p.requests, req)
	respond := p.respond
	entered, release := p.entered, p.release
	p.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		<-release
	}

	if respond != nil {
		if err := respond(call, req); err != nil {
			return nil, err
		}
	}

	track := &fakeTrack{
		id:    req.Video.DeviceID,
		label: p.labelOf(req.Video.DeviceID),
		kind:  KindVideoInput,
		settings: TrackSettings{
			DeviceID:   req.Video.DeviceID,
			FacingMode: req.Video.FacingMode,
			Width:      req.Video.Width,
			Height:     req.Video.Height,
		},
	}
	s := &fakeStream{tracks: []Track{track}}

	p.mu.Lock()
	p.streams = append(p.streams, s)
	p.mu.Unlock()
	return s, nil
}

func (p *fakePlatform) labelOf(id string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, d := range p.devices {
		if d.ID == id {
			return d.Label
		}
	}
	return ""
}

func (p *fakePlatform) requestLog() []StreamRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]StreamRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

func (p *fakePlatform) streamLog() []*fakeStream {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*fakeStream, len(p.streams))
	copy(out, p.streams)
	return out
}

func overconstrained() error {
	return &PlatformError{Name: NameOverconstrained, Message: "no mode matches"}
}

var errBoom = errors.New("boom")

func noSleep(context.Context, time.Duration) error { return nil }
