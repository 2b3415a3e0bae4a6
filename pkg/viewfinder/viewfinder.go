// Package viewfinder holds what the camera screen shows and the commands
// behind its buttons.
package viewfinder

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/wachiwi/viewfinder/pkg/camera"
	"github.com/wachiwi/viewfinder/pkg/capture"
	"github.com/wachiwi/viewfinder/pkg/flash"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Mode is the capture mode picked on the mode strip. It only changes what
// the screen highlights.
type Mode string

const (
	ModeVideo    Mode = "video"
	ModePhoto    Mode = "photo"
	ModePortrait Mode = "portrait"
	ModePano     Mode = "pano"
)

var Modes = []Mode{ModeVideo, ModePhoto, ModePortrait, ModePano}

// Lifecycle events sent by the page.
const (
	EventUnload  = "unload"
	EventHidden  = "hidden"
	EventVisible = "visible"
)

const stoppedMessage = "Camera stopped"

var (
	ErrUnknownMode  = errors.New("unknown mode")
	ErrUnknownEvent = errors.New("unknown lifecycle event")
	ErrInvalidZoom  = errors.New("zoom factor must be positive")
)

// Status is the banner shown over the viewfinder. A nil status hides it.
type Status struct {
	Message  string `json:"message"`
	Retry    bool   `json:"retry"`
	Category string `json:"category,omitempty"`
}

// State is a snapshot of everything the page renders.
type State struct {
	Status     *Status           `json:"status"`
	Active     bool              `json:"active"`
	Camera     string            `json:"camera"`
	Switching  bool              `json:"switching"`
	Clock      string            `json:"clock"`
	Flash      bool              `json:"flash"`
	Zoom       float64           `json:"zoom"`
	Mode       Mode              `json:"mode"`
	Mirrored   bool              `json:"mirrored"`
	DeviceID   string            `json:"deviceId"`
	Label      string            `json:"label"`
	FacingMode camera.FacingMode `json:"facingMode"`
	Devices    int               `json:"devices"`
	Latest     string            `json:"latestPhoto,omitempty"`
}

// Origin describes where a command came from, for the secure-context gate.
type Origin struct {
	Secure bool
	Host   string
}

// Local is the origin of commands the service issues on its own.
var Local = Origin{Host: "localhost"}

// Player plays the shutter sound.
type Player interface {
	Play()
}

type Options struct {
	Available   bool // a camera backend is installed
	Facing      camera.FacingMode
	SettleDelay time.Duration
	Gallery     *capture.Gallery
	Light       flash.Light // nil without a flash LED
	FlashPulse  time.Duration
	Shutter     Player // nil for a silent shutter
	Now         func() time.Time
}

// Viewfinder drives one camera and keeps the presentation state in sync
// with it. It is safe for concurrent use.
type Viewfinder struct {
	negotiator *camera.Negotiator
	gallery    *capture.Gallery
	light      flash.Light
	pulse      time.Duration
	shutter    Player
	available  bool
	now        func() time.Time

	mu     sync.RWMutex
	status *Status
	clock  string
	flash  bool
	zoom   float64
	mode   Mode

	subMu sync.Mutex
	subs  map[chan State]struct{}
}

// New wires a viewfinder to p.
func New(p camera.Platform, opts Options) *Viewfinder {
	v := &Viewfinder{
		gallery:   opts.Gallery,
		light:     opts.Light,
		pulse:     opts.FlashPulse,
		shutter:   opts.Shutter,
		available: opts.Available,
		now:       opts.Now,
		zoom:      1,
		mode:      ModePhoto,
		subs:      make(map[chan State]struct{}),
	}
	if v.gallery == nil {
		v.gallery = capture.NewGallery(0, 0)
	}
	if v.pulse <= 0 {
		v.pulse = flash.DefaultPulse
	}
	if v.now == nil {
		v.now = time.Now
	}
	v.negotiator = camera.NewNegotiator(p, camera.NewEnumerator(p), camera.Options{
		Facing:      opts.Facing,
		SettleDelay: opts.SettleDelay,
		Reporter:    v,
	})
	v.clock = formatClock(v.now())
	return v
}

// Negotiator exposes the underlying stream negotiator.
func (v *Viewfinder) Negotiator() *camera.Negotiator {
	return v.negotiator
}

// Gallery returns the photo gallery.
func (v *Viewfinder) Gallery() *capture.Gallery {
	return v.gallery
}

// Report implements camera.Reporter. A success hides the banner, a failure
// shows the categorized message.
func (v *Viewfinder) Report(r camera.Report) {
	v.mu.Lock()
	if r.Err != nil {
		v.status = statusOf(r.Err)
	} else {
		v.status = nil
		v.zoom = 1
	}
	v.mu.Unlock()
	v.publish()
}

// Check runs the capability gate for origin. A failure is shown on the
// banner without a retry button.
func (v *Viewfinder) Check(origin Origin) error {
	err := camera.CheckEnvironment(camera.Environment{
		PlatformAvailable: v.available,
		Secure:            origin.Secure,
		Host:              origin.Host,
	})
	if err == nil {
		return nil
	}
	cerr := camera.Classify(err)
	slog.Warn("Camera access refused", "category", cerr.Category, "host", origin.Host)
	v.setStatus(statusOf(cerr))
	return cerr
}

// Start opens the camera. A non-empty deviceID picks that camera, selecting
// it when it is enumerated.
func (v *Viewfinder) Start(ctx context.Context, origin Origin, deviceID string) (*camera.Result, error) {
	if err := v.Check(origin); err != nil {
		return nil, err
	}
	if deviceID != "" && v.negotiator.Devices().Select(deviceID) {
		deviceID = ""
	}
	return v.negotiator.Acquire(ctx, deviceID)
}

// Stop releases the camera and shows the stopped banner.
func (v *Viewfinder) Stop() {
	v.negotiator.Release()
	v.setStatus(&Status{Message: stoppedMessage})
	slog.Info("Camera stopped")
}

// Switch moves to the next camera after passing the capability gate.
// camera.ErrSwitchInProgress is returned untouched so callers can ignore it.
func (v *Viewfinder) Switch(ctx context.Context, origin Origin) (*camera.Result, error) {
	if err := v.Check(origin); err != nil {
		return nil, err
	}
	res, err := v.negotiator.SwitchToNext(ctx)
	if errors.Is(err, camera.ErrSwitchInProgress) {
		slog.Debug("Switch ignored, another switch is running")
		return nil, err
	}
	v.publish()
	return res, err
}

// Zoom records factor and applies it to the active track. The factor stays
// selected even when the track cannot zoom.
func (v *Viewfinder) Zoom(factor float64) (float64, error) {
	if factor <= 0 {
		return 0, ErrInvalidZoom
	}
	v.mu.Lock()
	v.zoom = factor
	v.mu.Unlock()
	defer v.publish()

	applied, err := v.negotiator.ApplyZoom(factor)
	if err != nil {
		slog.Debug("Zoom not applied", "factor", factor, "error", err)
		return 0, err
	}
	slog.Info("Zoom applied", "factor", factor, "zoom", applied)
	return applied, nil
}

// ToggleFlash flips the flash setting and returns the new value.
func (v *Viewfinder) ToggleFlash() bool {
	v.mu.Lock()
	v.flash = !v.flash
	on := v.flash
	v.mu.Unlock()
	v.publish()
	return on
}

// SetMode selects a capture mode.
func (v *Viewfinder) SetMode(m Mode) error {
	if !validMode(m) {
		return fmt.Errorf("%w: %q", ErrUnknownMode, m)
	}
	v.mu.Lock()
	v.mode = m
	v.mu.Unlock()
	v.publish()
	return nil
}

func validMode(m Mode) bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// Capture takes a still from the active track, mirrored like the
// viewfinder, and stores it in the gallery. The flash LED is pulsed around
// the frame grab when flash is on.
func (v *Viewfinder) Capture(ctx context.Context) (capture.Photo, error) {
	track, ok := v.negotiator.VideoTrack()
	if !ok {
		return capture.Photo{}, camera.ErrNoActiveStream
	}
	reader, ok := track.(camera.FrameReader)
	if !ok {
		return capture.Photo{}, camera.ErrNoFrame
	}

	var frame image.Image
	grab := func() error {
		var err error
		frame, err = reader.ReadFrame(ctx)
		return err
	}
	var err error
	if v.flashOn() && v.light != nil {
		err = flash.Pulse(v.light, v.pulse, grab)
	} else {
		err = grab()
	}
	if err != nil {
		capturesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "failed")))
		return capture.Photo{}, fmt.Errorf("failed to read frame: %w", err)
	}

	mirrored := v.negotiator.Mirrored()
	photo, err := capture.Encode(frame, mirrored)
	if err != nil {
		capturesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "failed")))
		return capture.Photo{}, err
	}
	if s, ok := v.negotiator.Settings(); ok {
		photo.DeviceID = s.DeviceID
	}
	photo = v.gallery.Add(photo)

	if v.shutter != nil {
		v.shutter.Play()
	}
	capturesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "succeeded")))
	slog.Info("Photo captured", "id", photo.ID, "width", photo.Width, "height", photo.Height, "mirrored", mirrored)
	v.publish()
	return photo, nil
}

func (v *Viewfinder) flashOn() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.flash
}

// Lifecycle reacts to page visibility. Unload stops the camera, visible
// restarts it when nothing is held, hidden leaves it running.
func (v *Viewfinder) Lifecycle(ctx context.Context, origin Origin, event string) error {
	switch event {
	case EventUnload:
		v.Stop()
	case EventHidden:
	case EventVisible:
		if !v.negotiator.Active() {
			_, err := v.Start(ctx, origin, "")
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	return nil
}

// Tick refreshes the clock.
func (v *Viewfinder) Tick() {
	clock := formatClock(v.now())
	v.mu.Lock()
	changed := clock != v.clock
	v.clock = clock
	v.mu.Unlock()
	if changed {
		v.publish()
	}
}

func formatClock(t time.Time) string {
	return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
}

// Rescan re-enumerates the cameras. When the last start failed for lack of
// a camera and one has appeared, the camera is started.
func (v *Viewfinder) Rescan(ctx context.Context) bool {
	found := v.negotiator.Devices().Enumerate(ctx)
	camerasGauge.Record(ctx, int64(v.negotiator.Devices().Len()))

	v.mu.RLock()
	missing := v.status != nil && v.status.Category == camera.CategoryDeviceNotFound.String()
	v.mu.RUnlock()

	if found && missing && !v.negotiator.Active() {
		slog.Info("Camera appeared, starting")
		if _, err := v.Start(ctx, Local, ""); err != nil {
			slog.Warn("Failed to start camera after rescan", "error", err)
		}
		return found
	}
	v.publish()
	return found
}

// Devices returns the enumerated cameras.
func (v *Viewfinder) Devices() []camera.Device {
	return v.negotiator.Devices().Devices()
}

// State returns a snapshot of the presentation state.
func (v *Viewfinder) State() State {
	v.mu.RLock()
	s := State{
		Status: v.status,
		Clock:  v.clock,
		Flash:  v.flash,
		Zoom:   v.zoom,
		Mode:   v.mode,
	}
	v.mu.RUnlock()

	n := v.negotiator
	settings, active := n.Settings()
	s.Active = active
	s.Camera = n.State().String()
	s.Switching = n.SwitchState() == camera.Switching
	s.Mirrored = n.Mirrored()
	s.DeviceID = settings.DeviceID
	s.Label = settings.Label
	s.FacingMode = n.Facing()
	s.Devices = n.Devices().Len()
	if p, ok := v.gallery.Latest(); ok {
		s.Latest = p.ID
	}
	return s
}

func (v *Viewfinder) setStatus(s *Status) {
	v.mu.Lock()
	v.status = s
	v.mu.Unlock()
	v.publish()
}

func statusOf(err *camera.Error) *Status {
	return &Status{
		Message:  err.Message,
		Retry:    err.Retry,
		Category: err.Category.String(),
	}
}
