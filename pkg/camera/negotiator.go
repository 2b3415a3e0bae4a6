package camera

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultSettleDelay is the pause between releasing one camera and opening
// the next during a switch.
const DefaultSettleDelay = 200 * time.Millisecond

// State is where the negotiator is in its acquisition cycle.
type State int

const (
	StateIdle State = iota
	StateAttempting
	StateSucceeded
	StateFailed
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateAttempting:
		return "attempting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateExhausted:
		return "exhausted"
	}
	return "idle"
}

// SwitchState guards camera switching against re-entry.
type SwitchState int

const (
	SwitchIdle SwitchState = iota
	Switching
)

// Settings are the effective characteristics of the active camera.
type Settings struct {
	DeviceID   string     `json:"deviceId"`
	Label      string     `json:"label"`
	FacingMode FacingMode `json:"facingMode"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
}

// Result describes a successful acquisition.
type Result struct {
	Settings Settings `json:"settings"`
	Rung     string   `json:"rung"`
	Attempts int      `json:"attempts"`
	Mirrored bool     `json:"mirrored"`
}

// Report is sent to the presentation layer after every acquisition attempt.
// Exactly one of Result and Err is set.
type Report struct {
	Result *Result
	Err    *Error
}

// Reporter receives acquisition reports.
type Reporter interface {
	Report(Report)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Report)

func (f ReporterFunc) Report(r Report) { f(r) }

// Options configure a Negotiator.
type Options struct {
	Facing      FacingMode    // initial facing hint, user when empty
	SettleDelay time.Duration // zero means DefaultSettleDelay, negative disables
	Reporter    Reporter
}

// Negotiator owns the single active camera stream. Acquire and Release are
// serialized; queries never wait on an in-flight acquisition.
type Negotiator struct {
	platform Platform
	devices  *Enumerator
	settle   time.Duration
	reporter Reporter

	op sync.Mutex // serializes Acquire and Release

	mu       sync.RWMutex
	stream   Stream
	settings Settings
	facing   FacingMode
	state    State
	rung     int

	switchMu    sync.Mutex
	switchState SwitchState

	sleep func(ctx context.Context, d time.Duration) error
}

// NewNegotiator returns a Negotiator acquiring from p with devices as its
// source of device identity.
func NewNegotiator(p Platform, devices *Enumerator, opts Options) *Negotiator {
	facing := opts.Facing
	if facing == FacingModeNone {
		facing = FacingModeUser
	}
	settle := opts.SettleDelay
	if settle == 0 {
		settle = DefaultSettleDelay
	}
	return &Negotiator{
		platform: p,
		devices:  devices,
		settle:   settle,
		reporter: opts.Reporter,
		facing:   facing,
		sleep:    sleepContext,
	}
}

// Devices returns the enumerator the negotiator selects from.
func (n *Negotiator) Devices() *Enumerator {
	return n.devices
}

// Acquire releases any held stream and opens a new one, walking the
// constraint ladder until a rung succeeds. A non-empty preferredID targets
// that device; otherwise the enumerator's selection or the facing hint is
// used. Failures are returned as *Error.
func (n *Negotiator) Acquire(ctx context.Context, preferredID string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "camera.Acquire", trace.WithAttributes(
		attribute.String("camera.preferred_id", preferredID),
	))
	defer span.End()

	n.op.Lock()
	defer n.op.Unlock()

	n.releaseLocked()

	if n.devices.Len() == 0 {
		n.devices.Enumerate(ctx)
	}

	var selected *Device
	if d, ok := n.devices.Selected(); ok {
		selected = &d
	}
	facing := n.Facing()
	target := Target(preferredID, selected, facing)
	ladder := BuildLadder(target, selected != nil, facing)

	stream, rung, attempts, err := n.climb(ctx, ladder)
	if err != nil && IsOverconstrained(err) {
		slog.Warn("All constraint levels failed, trying bare minimum", "error", err)
		bare := BareRung()
		n.setAttempting(len(ladder))
		stream, err = n.try(ctx, bare)
		rung = bare.Name
		attempts++
		if err != nil {
			n.setState(StateExhausted)
		}
	}
	if err != nil {
		cerr := Classify(err)
		if n.State() != StateExhausted {
			n.setState(StateFailed)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, cerr.Category.String())
		acquisitionsCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", "failed"),
			attribute.String("category", cerr.Category.String()),
		))
		slog.Error("Error accessing camera", "category", cerr.Category, "retry", cerr.Retry, "error", err)
		n.report(Report{Err: cerr})
		return nil, cerr
	}

	settings := effectiveSettings(stream)

	n.mu.Lock()
	n.stream = stream
	n.settings = settings
	if settings.FacingMode != FacingModeNone {
		n.facing = settings.FacingMode
	}
	n.state = StateSucceeded
	n.mu.Unlock()

	if n.devices.NeedsLabels() {
		n.devices.Enumerate(ctx)
	}

	result := &Result{
		Settings: settings,
		Rung:     rung,
		Attempts: attempts,
		Mirrored: n.Mirrored(),
	}
	span.SetAttributes(
		attribute.String("camera.rung", rung),
		attribute.String("camera.device_id", settings.DeviceID),
	)
	acquisitionsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", "succeeded"),
		attribute.String("rung", rung),
	))
	slog.Info("Camera started successfully",
		"rung", rung,
		"deviceId", settings.DeviceID,
		"facingMode", settings.FacingMode,
		"label", settings.Label,
	)
	n.report(Report{Result: result})
	return result, nil
}

// climb tries each rung in order. It stops at the first success or the first
// failure that is not overconstrained.
func (n *Negotiator) climb(ctx context.Context, ladder []Rung) (Stream, string, int, error) {
	var lastErr error
	for i, rung := range ladder {
		n.setAttempting(i)
		stream, err := n.try(ctx, rung)
		switch OutcomeOf(err) {
		case OutcomeSucceeded:
			slog.Info("Camera started with constraint level", "level", i+1, "rung", rung.Name)
			return stream, rung.Name, i + 1, nil
		case OutcomeRetryable:
			slog.Warn("Constraint level failed, trying next", "level", i+1, "rung", rung.Name, "error", err)
			lastErr = err
		default:
			return nil, rung.Name, i + 1, err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("failed to access camera after all attempts")
	}
	return nil, "", len(ladder), lastErr
}

func (n *Negotiator) try(ctx context.Context, rung Rung) (Stream, error) {
	stream, err := n.platform.RequestStream(ctx, rung.Request)
	if err == nil && stream == nil {
		err = &PlatformError{Name: NameNotReadable, Message: "platform returned no stream"}
	}
	attemptsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("rung", rung.Name),
		attribute.String("outcome", OutcomeOf(err).String()),
	))
	return stream, err
}

func effectiveSettings(s Stream) Settings {
	tracks := VideoTracks(s)
	if len(tracks) == 0 {
		return Settings{}
	}
	t := tracks[0]
	ts := t.Settings()
	id := ts.DeviceID
	if id == "" {
		id = t.ID()
	}
	return Settings{
		DeviceID:   id,
		Label:      t.Label(),
		FacingMode: ts.FacingMode,
		Width:      ts.Width,
		Height:     ts.Height,
	}
}

// Release stops every track of the active stream and forgets it. It is a
// no-op without an active stream.
func (n *Negotiator) Release() {
	n.op.Lock()
	defer n.op.Unlock()
	n.releaseLocked()
}

func (n *Negotiator) releaseLocked() {
	n.mu.Lock()
	stream := n.stream
	n.stream = nil
	n.settings = Settings{}
	n.state = StateIdle
	n.mu.Unlock()

	if stream == nil {
		return
	}
	for _, t := range stream.Tracks() {
		stopTrack(t)
	}
	slog.Debug("Camera stream released")
}

// stopTrack discards per-track failures; the hardware is being let go either
// way.
func stopTrack(t Track) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("Track stop panicked", "track", t.ID(), "panic", r)
		}
	}()
	if err := t.Stop(); err != nil {
		slog.Debug("Track stop failed", "track", t.ID(), "error", err)
	}
}

// SwitchToNext moves to the next camera. With fewer than two enumerated
// cameras it flips the facing hint instead. A call made while a switch is
// running returns ErrSwitchInProgress and does nothing.
func (n *Negotiator) SwitchToNext(ctx context.Context) (*Result, error) {
	done, ok := n.beginSwitch()
	if !ok {
		switchesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "ignored")))
		return nil, ErrSwitchInProgress
	}
	defer done()

	if n.devices.Len() < 2 {
		n.mu.Lock()
		n.facing = n.facing.Toggle()
		facing := n.facing
		n.mu.Unlock()
		slog.Info("Switching facing mode", "facingMode", facing)
	} else {
		next, _ := n.devices.Advance()
		slog.Info("Switching camera", "index", n.devices.Index()+1, "of", n.devices.Len(), "deviceId", next.ID)
	}

	// Once the old stream is gone the switch always reacquires, even if
	// the caller has gone away.
	n.Release()
	ctx = context.WithoutCancel(ctx)
	if err := n.sleep(ctx, n.settle); err != nil {
		return nil, err
	}

	res, err := n.Acquire(ctx, "")
	result := "succeeded"
	if err != nil {
		result = "failed"
	}
	switchesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	return res, err
}

// beginSwitch enters the Switching state. The returned func leaves it and
// must run on every path.
func (n *Negotiator) beginSwitch() (func(), bool) {
	n.switchMu.Lock()
	defer n.switchMu.Unlock()
	if n.switchState == Switching {
		return nil, false
	}
	n.switchState = Switching
	return func() {
		n.switchMu.Lock()
		n.switchState = SwitchIdle
		n.switchMu.Unlock()
	}, true
}

// SwitchState reports whether a switch is running.
func (n *Negotiator) SwitchState() SwitchState {
	n.switchMu.Lock()
	defer n.switchMu.Unlock()
	return n.switchState
}

// Mirrored reports whether the viewfinder should be shown mirrored.
func (n *Negotiator) Mirrored() bool {
	n.mu.RLock()
	in := MirrorInput{FacingHint: n.facing}
	if tracks := VideoTracks(n.stream); len(tracks) > 0 {
		in.HasVideoTrack = true
		in.TrackFacing = tracks[0].Settings().FacingMode
	}
	n.mu.RUnlock()

	if d, ok := n.devices.Selected(); ok {
		in.Selected = &d
	}
	return ShouldMirror(in)
}

// ApplyZoom sets the active track's zoom to factor times its minimum zoom.
func (n *Negotiator) ApplyZoom(factor float64) (float64, error) {
	track, ok := n.VideoTrack()
	if !ok {
		return 0, ErrNoActiveStream
	}
	caps := track.Capabilities()
	if caps.Zoom == nil {
		return 0, ErrZoomUnsupported
	}
	v, err := ZoomTarget(factor, *caps.Zoom)
	if err != nil {
		return 0, err
	}
	if err := track.ApplyConstraints(TrackConstraints{Zoom: v}); err != nil {
		return 0, fmt.Errorf("applying zoom %v: %w", v, err)
	}
	return v, nil
}

// VideoTrack returns the first video track of the active stream.
func (n *Negotiator) VideoTrack() (Track, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	tracks := VideoTracks(n.stream)
	if len(tracks) == 0 {
		return nil, false
	}
	return tracks[0], true
}

// Active reports whether a stream is held.
func (n *Negotiator) Active() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.stream != nil
}

// Settings returns the effective settings of the active stream.
func (n *Negotiator) Settings() (Settings, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.settings, n.stream != nil
}

// Facing returns the current facing hint.
func (n *Negotiator) Facing() FacingMode {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.facing
}

// State returns the acquisition state.
func (n *Negotiator) State() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// Rung returns the zero-based index of the rung being or last attempted.
// The bare fallback has index 4.
func (n *Negotiator) Rung() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.rung
}

func (n *Negotiator) setAttempting(rung int) {
	n.mu.Lock()
	n.state = StateAttempting
	n.rung = rung
	n.mu.Unlock()
}

func (n *Negotiator) setState(s State) {
	n.mu.Lock()
	n.state = s
	n.mu.Unlock()
}

func (n *Negotiator) report(r Report) {
	if n.reporter != nil {
		n.reporter.Report(r)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
