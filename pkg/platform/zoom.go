// Package platform holds helpers shared by the camera backends.
package platform

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/wachiwi/viewfinder/pkg/camera"
)

// ZoomRange is the digital zoom range offered by backends without optical
// zoom.
var ZoomRange = camera.Range{Min: 1, Max: 4, Step: 0.1}

// DigitalZoom crops frames around their center and scales them back up.
// The zero value is unzoomed.
type DigitalZoom struct {
	mu     sync.RWMutex
	factor float64
}

// Capabilities reports ZoomRange.
func (z *DigitalZoom) Capabilities() camera.TrackCapabilities {
	r := ZoomRange
	return camera.TrackCapabilities{Zoom: &r}
}

// Set changes the zoom factor. Values outside ZoomRange are rejected the
// same way a device rejects an unsatisfiable constraint.
func (z *DigitalZoom) Set(v float64) error {
	if v < ZoomRange.Min || v > ZoomRange.Max {
		return &camera.PlatformError{
			Name:    camera.NameOverconstrained,
			Message: fmt.Sprintf("zoom %v outside [%v, %v]", v, ZoomRange.Min, ZoomRange.Max),
		}
	}
	z.mu.Lock()
	z.factor = v
	z.mu.Unlock()
	return nil
}

// Factor returns the current zoom factor, 1 when unset.
func (z *DigitalZoom) Factor() float64 {
	z.mu.RLock()
	defer z.mu.RUnlock()
	if z.factor < 1 {
		return 1
	}
	return z.factor
}

// Apply returns img zoomed by the current factor, keeping its size.
func (z *DigitalZoom) Apply(img image.Image) image.Image {
	f := z.Factor()
	if f <= 1 {
		return img
	}
	b := img.Bounds()
	w := int(float64(b.Dx()) / f)
	h := int(float64(b.Dy()) / f)
	if w < 1 || h < 1 {
		return img
	}
	cropped := imaging.CropCenter(img, w, h)
	return imaging.Resize(cropped, b.Dx(), b.Dy(), imaging.Linear)
}

// FacingFromLabel turns a device label into the facing mode a browser
// would report for it.
func FacingFromLabel(label string) camera.FacingMode {
	switch camera.InferFacing(label) {
	case camera.FacingFront:
		return camera.FacingModeUser
	case camera.FacingBack:
		return camera.FacingModeEnvironment
	}
	return camera.FacingModeNone
}

// MatchesFacing reports whether a labelled device suits the facing hint.
func MatchesFacing(label string, facing camera.FacingMode) bool {
	if facing == camera.FacingModeNone {
		return true
	}
	return FacingFromLabel(strings.TrimSpace(label)) == facing
}
