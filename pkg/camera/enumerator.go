package camera

import (
	"context"
	"log/slog"
	"sync"
)

// Enumerator keeps the ordered list of usable cameras and the current
// selection. It is safe for concurrent use.
type Enumerator struct {
	platform Platform

	mu      sync.RWMutex
	devices []Device
	index   int
}

// NewEnumerator returns an empty Enumerator reading from p.
func NewEnumerator(p Platform) *Enumerator {
	return &Enumerator{platform: p}
}

// Enumerate lists the platform's video inputs, front-facing first, and
// replaces the retained list with them. It reports whether at least one
// camera exists. A platform failure is logged and reported as no cameras;
// the previous list is kept in that case.
func (e *Enumerator) Enumerate(ctx context.Context) bool {
	infos, err := e.platform.ListDevices(ctx)
	if err != nil {
		slog.Warn("Error enumerating cameras", "error", err)
		return false
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		if info.Kind != KindVideoInput {
			continue
		}
		devices = append(devices, Device{
			ID:     info.ID,
			Label:  info.Label,
			Facing: InferFacing(info.Label),
		})
	}
	SortFrontFirst(devices)

	e.mu.Lock()
	e.devices = devices
	if e.index >= len(devices) {
		e.index = 0
	}
	e.mu.Unlock()

	slog.Info("Found cameras", "count", len(devices))
	return len(devices) > 0
}

// Devices returns a copy of the current list.
func (e *Enumerator) Devices() []Device {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Device, len(e.devices))
	copy(out, e.devices)
	return out
}

// Len returns the number of enumerated cameras.
func (e *Enumerator) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.devices)
}

// Index returns the current selection index. It is meaningless when Len is 0.
func (e *Enumerator) Index() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.index
}

// Selected returns the currently selected camera, if any.
func (e *Enumerator) Selected() (Device, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.devices) == 0 {
		return Device{}, false
	}
	return e.devices[e.index], true
}

// Advance moves the selection to the next camera, wrapping at the end, and
// returns it.
func (e *Enumerator) Advance() (Device, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.devices) == 0 {
		return Device{}, false
	}
	e.index = (e.index + 1) % len(e.devices)
	return e.devices[e.index], true
}

// NeedsLabels reports whether the list was populated before permission was
// granted, i.e. its first entry has no label yet.
func (e *Enumerator) NeedsLabels() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.devices) > 0 && e.devices[0].Label == ""
}

// Select moves the selection to the camera with the given id. It reports
// false and leaves the selection alone when no such camera is listed.
func (e *Enumerator) Select(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, d := range e.devices {
		if d.ID == id {
			e.index = i
			return true
		}
	}
	return false
}
