// Package texcache memoizes surface synthesis by (kind, identity, resolution).
package texcache

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pthm-cable/orrery/raster"
)

// Synthesizer is the expensive generation path the cache sits in front of.
// *raster.Synthesizer satisfies it.
type Synthesizer interface {
	Synthesize(req raster.Request) *raster.Raster
}

// Key identifies a cached raster. Palettes are not part of the key: one
// identity always renders with one palette.
type Key struct {
	Kind       raster.Kind
	Identity   string
	Resolution float64
}

// KeyFor returns the cache key for a request.
func KeyFor(req raster.Request) Key {
	res := req.Resolution
	if res <= 0 {
		res = 1
	}
	return Key{Kind: req.Kind, Identity: req.Identity, Resolution: res}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s@%g", k.Kind, k.Identity, k.Resolution)
}

// Stats reports cache activity.
type Stats struct {
	Hits    int   `json:"hits"`
	Misses  int   `json:"misses"`
	Entries int   `json:"entries"`
	Bytes   int64 `json:"bytes"`
	Dropped int   `json:"dropped"` // Synthesized but not kept: over MaxBytes
}

// Cache holds generated rasters for the lifetime of the cache value. Entries
// are never evicted or mutated; every caller receives its own copy.
//
// The map lock is never held across synthesis. Concurrent requests for one
// key wait on that key's entry, so each key synthesizes once and hits on
// other keys return immediately.
type Cache struct {
	synth  Synthesizer
	logger *slog.Logger

	// MaxBytes caps the pixel memory kept. A miss that would exceed it is
	// still served but not stored. Zero means no cap.
	MaxBytes int64

	mu      sync.Mutex
	entries map[Key]*entry
	bytes   int64
	hits    int
	misses  int
	dropped int
}

type entry struct {
	ready chan struct{} // Closed once r is set
	r     *raster.Raster
}

// New creates an empty cache. A nil logger discards log output.
func New(synth Synthesizer, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		synth:   synth,
		logger:  logger.With("component", "texcache"),
		entries: make(map[Key]*entry),
	}
}

// Get returns a private copy of the raster for req, synthesizing it on the
// first request for its key, and uploads the copy through sink.
func (c *Cache) Get(sink raster.Sink, req raster.Request) (*raster.Raster, error) {
	if sink == nil {
		return nil, raster.ErrBackendUnavailable
	}
	r := c.Lookup(req)
	if err := sink.Upload(r); err != nil {
		return nil, fmt.Errorf("uploading %s: %w", KeyFor(req), err)
	}
	return r, nil
}

// Lookup returns a private copy of the raster for req without uploading it.
func (c *Cache) Lookup(req raster.Request) *raster.Raster {
	key := KeyFor(req)
	req.Resolution = key.Resolution

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		c.logger.Debug("cache hit", "key", key.String())
		<-e.ready
		return e.r.Clone()
	}
	e := &entry{ready: make(chan struct{})}
	c.entries[key] = e
	c.misses++
	c.mu.Unlock()

	c.logger.Debug("cache miss", "key", key.String())
	e.r = c.synth.Synthesize(req)

	size := int64(len(e.r.Pix))
	c.mu.Lock()
	kept := c.MaxBytes <= 0 || c.bytes+size <= c.MaxBytes
	if kept {
		c.bytes += size
	} else {
		delete(c.entries, key)
		c.dropped++
	}
	c.mu.Unlock()
	close(e.ready)

	if !kept {
		c.logger.Warn("cache full, not keeping raster", "key", key.String(), "bytes", size, "max_bytes", c.MaxBytes)
	}
	return e.r.Clone()
}

// Contains reports whether the key for req has been generated and kept.
func (c *Cache) Contains(req raster.Request) bool {
	c.mu.Lock()
	e, ok := c.entries[KeyFor(req)]
	c.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries), Bytes: c.bytes, Dropped: c.dropped}
}
