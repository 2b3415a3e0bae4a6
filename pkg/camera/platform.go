package camera

import (
	"context"
	"image"
)

// Kind is the kind of a media device or track.
type Kind string

const (
	KindVideoInput  Kind = "videoinput"
	KindAudioInput  Kind = "audioinput"
	KindAudioOutput Kind = "audiooutput"
)

// FacingMode is the orientation hint of a camera relative to the device body.
type FacingMode string

const (
	FacingModeNone        FacingMode = ""
	FacingModeUser        FacingMode = "user"
	FacingModeEnvironment FacingMode = "environment"
)

// Toggle flips between user and environment. Anything else becomes user.
func (f FacingMode) Toggle() FacingMode {
	if f == FacingModeUser {
		return FacingModeEnvironment
	}
	return FacingModeUser
}

// ParseFacingMode accepts "user"/"front" and "environment"/"back".
func ParseFacingMode(s string) (FacingMode, bool) {
	switch s {
	case "user", "front":
		return FacingModeUser, true
	case "environment", "back", "rear":
		return FacingModeEnvironment, true
	}
	return FacingModeNone, false
}

// DeviceInfo is one entry of the platform's device inventory.
type DeviceInfo struct {
	ID    string
	Kind  Kind
	Label string
}

// Constraints is a single video capability request. Zero fields mean
// "no preference".
type Constraints struct {
	DeviceID   string     // exact device id
	FacingMode FacingMode // facing hint
	Width      int        // ideal width
	Height     int        // ideal height
}

// IsZero reports whether the request leaves every choice to the platform.
func (c Constraints) IsZero() bool {
	return c == Constraints{}
}

// StreamRequest asks the platform for a stream.
type StreamRequest struct {
	Video Constraints
	Audio bool
}

// TrackSettings are the effective settings of a live track.
type TrackSettings struct {
	DeviceID   string
	FacingMode FacingMode
	Width      int
	Height     int
	Zoom       float64
}

// Range is a numeric capability range.
type Range struct {
	Min  float64
	Max  float64
	Step float64
}

// TrackCapabilities lists what a track can be adjusted to. Nil ranges are
// not supported by the track.
type TrackCapabilities struct {
	Zoom *Range
}

// TrackConstraints are applied to a live track.
type TrackConstraints struct {
	Zoom float64
}

// Track is one live media track.
type Track interface {
	ID() string
	Kind() Kind
	Label() string
	Stop() error
	Settings() TrackSettings
	Capabilities() TrackCapabilities
	ApplyConstraints(TrackConstraints) error
}

// FrameReader is implemented by video tracks that can hand out still frames.
type FrameReader interface {
	ReadFrame(ctx context.Context) (image.Image, error)
}

// Stream is a live media handle made of one or more tracks.
type Stream interface {
	Tracks() []Track
}

// Platform is the host media API the negotiator drives.
type Platform interface {
	ListDevices(ctx context.Context) ([]DeviceInfo, error)
	RequestStream(ctx context.Context, req StreamRequest) (Stream, error)
}

// VideoTracks returns the video tracks of s in order.
func VideoTracks(s Stream) []Track {
	if s == nil {
		return nil
	}
	var out []Track
	for _, t := range s.Tracks() {
		if t.Kind() == KindVideoInput {
			out = append(out, t)
		}
	}
	return out
}

// PlatformError is a platform failure carrying a symbolic name such as
// "NotAllowedError" or "OverconstrainedError".
type PlatformError struct {
	Name    string
	Message string
	Err     error
}

func (e *PlatformError) Error() string {
	if e.Message == "" {
		return e.Name
	}
	return e.Name + ": " + e.Message
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// Symbolic platform failure names.
const (
	NameNotAllowed             = "NotAllowedError"
	NamePermissionDenied       = "PermissionDeniedError"
	NameNotFound               = "NotFoundError"
	NameDevicesNotFound        = "DevicesNotFoundError"
	NameNotReadable            = "NotReadableError"
	NameTrackStart             = "TrackStartError"
	NameNotSupported           = "NotSupportedError"
	NameOverconstrained        = "OverconstrainedError"
	NameConstraintNotSatisfied = "ConstraintNotSatisfiedError"
)
