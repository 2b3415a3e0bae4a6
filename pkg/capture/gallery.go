// Package capture turns viewfinder frames into photos and keeps the recent
// ones in memory.
package capture

import (
	"bytes"
	"fmt"
	"image"
	"sort"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	ThumbnailSize = 160
	JPEGQuality   = 90
)

type Photo struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"deviceId"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Mirrored  bool      `json:"mirrored"`
	Timestamp time.Time `json:"timestamp"`

	JPEG      []byte `json:"-"`
	Thumbnail []byte `json:"-"`
}

// Encode builds a photo from a frame. Mirrored frames are flipped so the
// photo matches what the viewfinder showed.
func Encode(img image.Image, mirror bool) (Photo, error) {
	if mirror {
		img = imaging.FlipH(img)
	}

	var full bytes.Buffer
	if err := imaging.Encode(&full, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return Photo{}, fmt.Errorf("failed to encode photo: %w", err)
	}

	thumb := imaging.Thumbnail(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos)
	var small bytes.Buffer
	if err := imaging.Encode(&small, thumb, imaging.JPEG); err != nil {
		return Photo{}, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	b := img.Bounds()
	return Photo{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Mirrored:  mirror,
		JPEG:      full.Bytes(),
		Thumbnail: small.Bytes(),
	}, nil
}

// Gallery keeps at most size photos, none older than retention.
type Gallery struct {
	mu        sync.Mutex
	size      int
	retention time.Duration
	photos    []Photo
	now       func() time.Time
}

// NewGallery returns an empty gallery. A zero retention keeps photos until
// they are pushed out by size.
func NewGallery(size int, retention time.Duration) *Gallery {
	if size <= 0 {
		size = 12
	}
	return &Gallery{
		size:      size,
		retention: retention,
		now:       time.Now,
	}
}

// Add stores p, assigning an id and timestamp when missing, and drops old
// photos.
func (g *Gallery) Add(p Photo) Photo {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = g.now()
	}
	g.photos = append(g.photos, p)
	g.pruneLocked()
	return p
}

// pruneLocked filters out old photos and trims to size.
func (g *Gallery) pruneLocked() {
	if g.retention > 0 {
		cutoff := g.now().Add(-g.retention)
		var recent []Photo
		for _, p := range g.photos {
			if p.Timestamp.After(cutoff) {
				recent = append(recent, p)
			}
		}
		g.photos = recent
	}
	// Sort by timestamp ascending
	sort.SliceStable(g.photos, func(i, j int) bool {
		return g.photos[i].Timestamp.Before(g.photos[j].Timestamp)
	})
	if len(g.photos) > g.size {
		g.photos = g.photos[len(g.photos)-g.size:]
	}
}

// List returns the photos newest first.
func (g *Gallery) List() []Photo {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked()

	out := make([]Photo, len(g.photos))
	for i, p := range g.photos {
		out[len(out)-1-i] = p
	}
	return out
}

// Latest returns the newest photo.
func (g *Gallery) Latest() (Photo, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked()
	if len(g.photos) == 0 {
		return Photo{}, false
	}
	return g.photos[len(g.photos)-1], true
}

// Get returns the photo with the given id.
func (g *Gallery) Get(id string) (Photo, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked()
	for _, p := range g.photos {
		if p.ID == id {
			return p, true
		}
	}
	return Photo{}, false
}

// Len returns the number of stored photos.
func (g *Gallery) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked()
	return len(g.photos)
}
