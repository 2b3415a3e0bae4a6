package camera

import (
	"sort"
	"strings"
)

// Facing is the orientation of a camera as inferred from its label.
type Facing int

const (
	FacingUnknown Facing = iota
	FacingFront
	FacingBack
)

func (f Facing) String() string {
	switch f {
	case FacingFront:
		return "front"
	case FacingBack:
		return "back"
	}
	return "unknown"
}

// MarshalText lets facings appear by name in JSON.
func (f Facing) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Facing) UnmarshalText(b []byte) error {
	switch string(b) {
	case "front":
		*f = FacingFront
	case "back":
		*f = FacingBack
	default:
		*f = FacingUnknown
	}
	return nil
}

// Device is an enumerated video input.
type Device struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Facing Facing `json:"facing"`
}

var (
	frontHints = []string{"front", "user", "facing"}
	backHints  = []string{"back", "rear", "environment"}
)

// IsFrontLabel reports whether a device label reads like a front camera.
// Matching is case-insensitive on the substrings "front", "user" and "facing".
func IsFrontLabel(label string) bool {
	return containsAny(strings.ToLower(label), frontHints)
}

// InferFacing derives a Facing from label text. Front hints win over back
// hints so the result agrees with the front-first ordering.
func InferFacing(label string) Facing {
	l := strings.ToLower(label)
	switch {
	case containsAny(l, frontHints):
		return FacingFront
	case containsAny(l, backHints):
		return FacingBack
	}
	return FacingUnknown
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// SortFrontFirst stable-sorts devices so front-labelled ones come first.
func SortFrontFirst(devices []Device) {
	sort.SliceStable(devices, func(i, j int) bool {
		return IsFrontLabel(devices[i].Label) && !IsFrontLabel(devices[j].Label)
	})
}
