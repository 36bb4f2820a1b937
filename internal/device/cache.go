package device

import (
	"context"
	"sync"
	"time"
)

// Cache holds the last device enumeration for one backend. Device attach and
// detach is bursty in interactive sessions, so the validity window is
// deliberately short (1s by default). The entry is replaced wholesale on
// refresh, never mutated in place.
type Cache struct {
	mu       sync.Mutex
	validity time.Duration
	fetch    func(ctx context.Context) ([]Device, error)

	devices []Device
	fetched time.Time
	valid   bool

	now func() time.Time
}

// NewCache wraps fetch with a validity window. A non-positive validity
// disables caching entirely.
func NewCache(validity time.Duration, fetch func(ctx context.Context) ([]Device, error)) *Cache {
	return &Cache{
		validity: validity,
		fetch:    fetch,
		now:      time.Now,
	}
}

// Devices returns the cached list, refreshing it when the window has
// elapsed. The lock is held across the refresh, so N concurrent callers that
// observe an expired entry trigger exactly one backend call. Within the
// window the same slice is returned to every caller; callers must not
// mutate it.
func (c *Cache) Devices(ctx context.Context) ([]Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.validity > 0 && c.now().Sub(c.fetched) < c.validity {
		return c.devices, nil
	}

	devices, err := c.fetch(ctx)
	if err != nil {
		// A failed refresh does not clobber nor extend an existing entry.
		return nil, err
	}

	c.devices = devices
	c.fetched = c.now()
	c.valid = true
	return c.devices, nil
}

// Invalidate drops the cached entry so the next read refreshes.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.devices = nil
}
