// Package flash drives a flash LED on a GPIO line.
package flash

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/warthog618/go-gpiocdev/device/rpi"
)

// DefaultPulse is how long the LED stays lit for a capture.
const DefaultPulse = 150 * time.Millisecond

// ParseLine accepts a Raspberry Pi pin name such as "GPIO17" or a bare line
// offset.
func ParseLine(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty line")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("invalid line %d", n)
		}
		return n, nil
	}
	n, err := rpi.Pin(strings.ToUpper(s))
	if err != nil {
		return 0, fmt.Errorf("unknown pin %q: %w", s, err)
	}
	return n, nil
}

// Light is anything that can be switched on and off.
type Light interface {
	On() error
	Off() error
}

// Pulse lights l for d and then runs fn, which typically grabs the frame.
// The light is switched off even when fn fails.
func Pulse(l Light, d time.Duration, fn func() error) error {
	if err := l.On(); err != nil {
		return err
	}
	time.Sleep(d)
	err := fn()
	if offErr := l.Off(); err == nil {
		err = offErr
	}
	return err
}
