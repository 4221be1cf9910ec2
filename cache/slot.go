package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bodgit/lvimg/image"
)

// ErrInterval is returned by Run when the refresh interval isn't positive.
var ErrInterval = errors.New("cache: refresh interval must be positive")

// Slot is a place on screen showing one icon at a time.
type Slot struct {
	cache   *Cache
	code    string
	current *image.Descriptor
}

// NewSlot returns an empty Slot backed by c.
func NewSlot(c *Cache) *Slot {
	return &Slot{cache: c}
}

// Code returns the code of the icon currently shown, if any.
func (s *Slot) Code() string {
	return s.code
}

// Current returns the icon currently shown, or nil if no icon has been
// loaded yet.
func (s *Slot) Current() *image.Descriptor {
	return s.current
}

// Refresh switches the slot to the icon for code. If the icon can't be
// loaded the previous icon is kept. It reports whether the slot now shows
// code.
func (s *Slot) Refresh(code string) bool {
	if s.current != nil && code == s.code {
		return true
	}

	d, ok := s.cache.Get(code)
	if !ok {
		return false
	}

	s.code, s.current = code, d

	return true
}

// Run refreshes the slot straight away and then every interval until ctx
// is done. code is asked for the wanted icon code each time and show is
// called with the current icon whenever it changes. Everything happens on
// the calling goroutine.
func (s *Slot) Run(ctx context.Context, interval time.Duration, code func() string, show func(*image.Descriptor)) error {
	if interval <= 0 {
		return ErrInterval
	}

	refresh := func() {
		prev := s.current
		if s.Refresh(code()) && s.current != prev {
			show(s.current)
		}
	}

	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			refresh()
		}
	}
}
