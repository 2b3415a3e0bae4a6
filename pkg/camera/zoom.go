package camera

import "fmt"

// ZoomTarget maps a zoom factor (1x, 2x, ...) onto a track's zoom range.
// The factor multiplies the range minimum and the result is clamped into
// [Min, Max], so 1x is always the widest setting.
func ZoomTarget(factor float64, r Range) (float64, error) {
	if factor <= 0 {
		return 0, fmt.Errorf("invalid zoom factor %v", factor)
	}
	base := r.Min
	if base <= 0 {
		base = 1
	}
	v := base * factor
	if v < r.Min {
		v = r.Min
	}
	if v > r.Max {
		v = r.Max
	}
	return v, nil
}
