//go:build !linux

package flash

import "log/slog"

// LED is a mock flash LED for platforms without GPIO.
type LED struct{}

// Open returns a mock LED.
func Open(chipName string, offset int) (*LED, error) {
	slog.Info("[MOCK] Initializing flash LED without GPIO", "chip", chipName, "line", offset)
	return &LED{}, nil
}

func (l *LED) On() error {
	slog.Debug("[MOCK] Flash on")
	return nil
}

func (l *LED) Off() error {
	slog.Debug("[MOCK] Flash off")
	return nil
}

func (l *LED) Close() error { return nil }
