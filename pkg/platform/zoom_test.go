package platform

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/wachiwi/viewfinder/pkg/camera"
)

// frame is blue with a red center covering the middle half in both axes.
func frame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{B: 255, A: 255}
			if x >= w/4 && x < 3*w/4 && y >= h/4 && y < 3*h/4 {
				c = color.RGBA{R: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDigitalZoomApply(t *testing.T) {
	var z DigitalZoom
	src := frame(100, 60)

	if got := z.Apply(src); got != image.Image(src) {
		t.Error("Expected unzoomed frames to pass through")
	}

	if err := z.Set(2); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	out := z.Apply(src)
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 60 {
		t.Fatalf("Expected size to be kept, got %v", out.Bounds())
	}
	r, _, b, _ := out.At(0, 0).RGBA()
	if r>>8 != 255 || b>>8 != 0 {
		t.Errorf("Expected the corner to show the red center, got r=%d b=%d", r>>8, b>>8)
	}
}

func TestDigitalZoomRejectsOutOfRange(t *testing.T) {
	var z DigitalZoom
	err := z.Set(10)
	var pe *camera.PlatformError
	if !errors.As(err, &pe) || pe.Name != camera.NameOverconstrained {
		t.Errorf("Expected OverconstrainedError, got %v", err)
	}
	if z.Factor() != 1 {
		t.Errorf("Expected factor to stay 1, got %v", z.Factor())
	}
}

func TestFacingFromLabel(t *testing.T) {
	tests := map[string]camera.FacingMode{
		"Front Camera":       camera.FacingModeUser,
		"Rear Camera":        camera.FacingModeEnvironment,
		"HD Pro Webcam C920": camera.FacingModeNone,
	}
	for label, want := range tests {
		if got := FacingFromLabel(label); got != want {
			t.Errorf("FacingFromLabel(%q) = %q, want %q", label, got, want)
		}
	}
	if !MatchesFacing("anything", camera.FacingModeNone) {
		t.Error("No hint matches every device")
	}
	if MatchesFacing("Rear Camera", camera.FacingModeUser) {
		t.Error("Rear camera must not match the user hint")
	}
}
