//go:build linux

package flash

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// LED is a flash LED wired to a single output line.
type LED struct {
	mu   sync.Mutex
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// Open requests offset on chipName as an output, initially off.
func Open(chipName string, offset int) (*LED, error) {
	c, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("failed to open chip: %w", err)
	}
	l, err := c.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to request line %d: %w", offset, err)
	}
	slog.Info("Flash LED ready", "chip", chipName, "line", offset)
	return &LED{chip: c, line: l}, nil
}

// On lights the LED.
func (l *LED) On() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.line.SetValue(1)
}

// Off turns the LED off.
func (l *LED) Off() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.line.SetValue(0)
}

// Close releases all GPIO resources.
func (l *LED) Close() error {
	l.Off()
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.line.Close(); err != nil {
		return err
	}
	return l.chip.Close()
}
