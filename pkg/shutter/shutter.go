// Package shutter plays the capture sound.
package shutter

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"
	"github.com/youpy/go-wav"
)

// Output format of the audio context.
const (
	SampleRate   = 44100
	ChannelCount = 2
)

// Sound is a decoded shutter sound ready to play.
type Sound struct {
	mu     sync.Mutex
	otoCtx *oto.Context
	pcm    []byte
}

// Load decodes a .wav or .mp3 file and opens the audio device.
func Load(path string) (*Sound, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sound file: %w", err)
	}
	pcm, err := Decode(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}

	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}
	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	slog.Info("Shutter sound loaded", "file", path, "bytes", len(pcm))
	return &Sound{otoCtx: otoCtx, pcm: pcm}, nil
}

// Play starts the sound and returns without waiting for it to finish.
// Overlapping shots each get their own player.
func (s *Sound) Play() {
	s.mu.Lock()
	player := s.otoCtx.NewPlayer(bytes.NewReader(s.pcm))
	s.mu.Unlock()
	player.Play()

	go func() {
		for player.IsPlaying() {
			time.Sleep(20 * time.Millisecond)
		}
		if err := player.Close(); err != nil {
			slog.Debug("Failed to close player", "error", err)
		}
	}()
}

// Decode returns 16-bit little endian PCM at SampleRate with ChannelCount
// channels. The format is chosen by the file extension.
func Decode(name string, data []byte) ([]byte, error) {
	var pcmData []byte
	var sampleRate int
	var channelCount int

	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		format, err := wav.NewReader(bytes.NewReader(data)).Format()
		if err != nil {
			return nil, fmt.Errorf("failed to get wav format: %w", err)
		}
		pcmData, err = io.ReadAll(wav.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("failed to decode wav data: %w", err)
		}
		if format.BitsPerSample != 16 {
			return nil, fmt.Errorf("unsupported wav sample size %d", format.BitsPerSample)
		}
		sampleRate = int(format.SampleRate)
		channelCount = int(format.NumChannels)

	case ".mp3":
		decoder, err := mp3.NewDecoder(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
		}
		pcmData, err = io.ReadAll(decoder)
		if err != nil {
			return nil, fmt.Errorf("failed to decode mp3 data: %w", err)
		}
		sampleRate = decoder.SampleRate()
		channelCount = 2

	default:
		return nil, fmt.Errorf("unsupported sound format %q", filepath.Ext(name))
	}

	if len(pcmData) == 0 {
		return nil, fmt.Errorf("sound %s is empty", name)
	}
	if sampleRate != SampleRate || channelCount != ChannelCount {
		pcmData = convertAudio(pcmData, sampleRate, channelCount, SampleRate, ChannelCount)
	}
	return pcmData, nil
}
