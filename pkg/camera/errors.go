package camera

import (
	"errors"
	"fmt"
)

// Category groups acquisition failures by what the user can do about them.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryCapabilityUnavailable
	CategoryInsecureContext
	CategoryPermissionDenied
	CategoryDeviceNotFound
	CategoryDeviceBusy
	CategoryUnsupported
	CategoryConstraintUnsatisfiable
)

var categoryNames = [...]string{
	"Unknown",
	"CapabilityUnavailable",
	"InsecureContext",
	"PermissionDenied",
	"DeviceNotFound",
	"DeviceBusy",
	"Unsupported",
	"ConstraintUnsatisfiable",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// MarshalText lets categories appear by name in JSON.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

var (
	ErrSwitchInProgress = errors.New("camera switch already in progress")
	ErrNoActiveStream   = errors.New("no active camera stream")
	ErrZoomUnsupported  = errors.New("zoom not supported by this camera")
	ErrNoFrame          = errors.New("camera track does not provide frames")
)

// Error is a categorized acquisition failure ready for the presentation
// layer.
type Error struct {
	Category Category
	Retry    bool
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Category, e.Err)
	}
	return e.Category.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CategoryOf maps a symbolic platform failure name to its category.
func CategoryOf(name string) Category {
	switch name {
	case NameNotAllowed, NamePermissionDenied:
		return CategoryPermissionDenied
	case NameNotFound, NameDevicesNotFound:
		return CategoryDeviceNotFound
	case NameNotReadable, NameTrackStart:
		return CategoryDeviceBusy
	case NameNotSupported:
		return CategoryUnsupported
	case NameOverconstrained, NameConstraintNotSatisfied:
		return CategoryConstraintUnsatisfiable
	}
	return CategoryUnknown
}

// IsOverconstrained reports whether err only says the requested capabilities
// could not be matched.
func IsOverconstrained(err error) bool {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return CategoryOf(pe.Name) == CategoryConstraintUnsatisfiable
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Category == CategoryConstraintUnsatisfiable
	}
	return false
}

// Classify turns any acquisition failure into an *Error.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	cat := CategoryUnknown
	var pe *PlatformError
	if errors.As(err, &pe) {
		cat = CategoryOf(pe.Name)
	}
	return newError(cat, err)
}

func newError(cat Category, err error) *Error {
	return &Error{
		Category: cat,
		Retry:    retryable(cat),
		Message:  message(cat, err),
		Err:      err,
	}
}

func retryable(cat Category) bool {
	switch cat {
	case CategoryPermissionDenied, CategoryDeviceBusy, CategoryUnknown, CategoryConstraintUnsatisfiable:
		return true
	}
	return false
}

func message(cat Category, err error) string {
	switch cat {
	case CategoryCapabilityUnavailable:
		return "Camera access is not available on this host.\nNo supported camera backend is installed."
	case CategoryInsecureContext:
		return "Camera access requires HTTPS.\nPlease access this site over a secure connection."
	case CategoryPermissionDenied:
		return "Camera permission denied.\nPlease allow camera access in your system settings."
	case CategoryDeviceNotFound:
		return "No camera found on this device."
	case CategoryDeviceBusy:
		return "Camera is already in use.\nPlease close other apps using the camera."
	case CategoryUnsupported:
		return "Camera not supported.\nPlease use a supported camera."
	}
	detail := "Please check your camera settings and try again."
	if err != nil {
		var pe *PlatformError
		if errors.As(err, &pe) && pe.Message != "" {
			detail = pe.Message
		} else {
			detail = err.Error()
		}
	}
	return "Unable to access camera.\n" + detail
}
