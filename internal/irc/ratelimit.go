package irc

import (
	"sync"
	"time"
)

// Clock abstracts time for the rate limiter so tests can control it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type cooldownRecord struct {
	last     time.Time // start of the last accepted listing
	notified bool      // "please wait" already sent this window
}

// cooldowns gates the roster-listing command per channel.
type cooldowns struct {
	mu       sync.Mutex
	clock    Clock
	window   time.Duration
	channels map[string]*cooldownRecord
}

func newCooldowns(window time.Duration, clock Clock) *cooldowns {
	return &cooldowns{
		clock:    clock,
		window:   window,
		channels: make(map[string]*cooldownRecord),
	}
}

// Begin reports whether a listing may run now. On rejection, notify is
// true only for the first rejection in the current window so the
// "please wait" notice is never repeated.
func (c *cooldowns) Begin(channel string) (ok, notify bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, exists := c.channels[channel]
	if !exists {
		rec = &cooldownRecord{}
		c.channels[channel] = rec
	}

	now := c.clock.Now()
	if exists && now.Before(rec.last.Add(c.window)) {
		if rec.notified {
			return false, false
		}
		rec.notified = true
		return false, true
	}

	rec.last = now
	rec.notified = false
	return true, false
}

// Advance pushes the window forward by the time a listing line took to
// emit, so the next request's cooldown accounts for the listing itself.
func (c *cooldowns) Advance(channel string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rec, ok := c.channels[channel]; ok {
		rec.last = rec.last.Add(d)
	}
}
