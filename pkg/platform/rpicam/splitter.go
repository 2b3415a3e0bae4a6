package rpicam

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

const (
	readChunkSize = 4096
	maxFrameSize  = 10 * 1024 * 1024
	staleAfter    = 5 * time.Second
)

var (
	soi = []byte{0xFF, 0xD8}
	eoi = []byte{0xFF, 0xD9}

	ErrNoFrame     = errors.New("no frame available yet")
	ErrStreamEnded = errors.New("mjpeg stream ended")
)

// Splitter cuts an MJPEG byte stream into JPEG frames and keeps the most
// recent one. It is safe for concurrent use.
type Splitter struct {
	mu     sync.RWMutex
	frame  []byte
	at     time.Time
	frames uint64
	ready  chan struct{} // closed and replaced on every frame
	done   chan struct{}
}

func NewSplitter() *Splitter {
	return &Splitter{
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Run reads r until it ends. A closed pipe counts as a clean end.
func (s *Splitter) Run(r io.Reader) error {
	defer close(s.done)

	buf := make([]byte, readChunkSize)
	var pending []byte
	for {
		n, err := r.Read(buf)
		if n > 0 {
			pending = s.consume(append(pending, buf[:n]...))
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("stream read error: %w", err)
		}
	}
}

// consume publishes every complete frame in data and returns what is left
// over for the next read.
func (s *Splitter) consume(data []byte) []byte {
	for {
		start := bytes.Index(data, soi)
		if start < 0 {
			// A marker may be split across reads.
			if len(data) > 0 && data[len(data)-1] == 0xFF {
				return []byte{0xFF}
			}
			return nil
		}
		data = data[start:]

		end := bytes.Index(data[len(soi):], eoi)
		if end < 0 {
			if len(data) > maxFrameSize {
				slog.Warn("Frame buffer overflow, resetting")
				return nil
			}
			rest := make([]byte, len(data))
			copy(rest, data)
			return rest
		}
		end += len(soi) + len(eoi)
		s.publish(data[:end])
		data = data[end:]
	}
}

func (s *Splitter) publish(frame []byte) {
	f := make([]byte, len(frame))
	copy(f, frame)

	s.mu.Lock()
	s.frame = f
	s.at = time.Now()
	s.frames++
	close(s.ready)
	s.ready = make(chan struct{})
	s.mu.Unlock()
}

// Latest returns a copy of the most recent frame. Frames older than five
// seconds are treated as missing.
func (s *Splitter) Latest() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.frame) == 0 {
		return nil, ErrNoFrame
	}
	if time.Since(s.at) > staleAfter {
		return nil, fmt.Errorf("frame is stale (>%s old)", staleAfter)
	}
	dst := make([]byte, len(s.frame))
	copy(dst, s.frame)
	return dst, nil
}

// Frames returns how many frames have been published.
func (s *Splitter) Frames() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}

// Frame returns the latest frame, waiting for the next one when there is
// no fresh frame yet.
func (s *Splitter) Frame(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	fresh := len(s.frame) > 0 && time.Since(s.at) <= staleAfter
	ready := s.ready
	s.mu.RUnlock()
	if fresh {
		return s.Latest()
	}

	select {
	case <-ready:
		return s.Latest()
	case <-s.done:
		return nil, ErrStreamEnded
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
