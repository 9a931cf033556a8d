package texcache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pthm-cable/orrery/raster"
)

type countingSynth struct {
	mu    sync.Mutex
	calls int

	// Synthesis of this identity blocks until release is closed.
	slow    string
	release chan struct{}
}

func (s *countingSynth) Synthesize(req raster.Request) *raster.Raster {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if req.Identity == s.slow && s.release != nil {
		<-s.release
	}
	w, h := raster.Size(64, 32, req.Resolution)
	r := raster.New(w, h)
	r.Kind = req.Kind
	r.Identity = req.Identity
	r.Resolution = req.Resolution
	return r
}

func discard() raster.Sink {
	return raster.SinkFunc(func(*raster.Raster) error { return nil })
}

func TestGetSynthesizesOnce(t *testing.T) {
	synth := &countingSynth{}
	c := New(synth, nil)
	req := raster.Request{Kind: raster.KindMoon, Identity: "luna", Resolution: 0.5}

	for i := 0; i < 5; i++ {
		r, err := c.Get(discard(), req)
		if err != nil {
			t.Fatal(err)
		}
		if r.Width != 32 || r.Height != 16 {
			t.Fatalf("size = %dx%d", r.Width, r.Height)
		}
	}
	if synth.calls != 1 {
		t.Errorf("synthesis calls = %d, want 1", synth.calls)
	}
	if s := c.Stats(); s.Hits != 4 || s.Misses != 1 || s.Entries != 1 {
		t.Errorf("stats = %+v, want 4 hits, 1 miss, 1 entry", s)
	}
}

func TestKeysAreDistinct(t *testing.T) {
	synth := &countingSynth{}
	c := New(synth, nil)
	reqs := []raster.Request{
		{Kind: raster.KindMoon, Identity: "luna", Resolution: 0.25},
		{Kind: raster.KindMoon, Identity: "luna", Resolution: 1},
		{Kind: raster.KindMoon, Identity: "phobos", Resolution: 1},
		{Kind: raster.KindRocky, Identity: "luna", Resolution: 1},
	}
	for _, req := range reqs {
		c.Lookup(req)
	}
	if synth.calls != len(reqs) {
		t.Errorf("synthesis calls = %d, want %d", synth.calls, len(reqs))
	}

	// Resolution 0 means 1.0 and shares the entry
	c.Lookup(raster.Request{Kind: raster.KindMoon, Identity: "phobos"})
	if synth.calls != len(reqs) {
		t.Errorf("zero resolution should hit the 1.0 entry")
	}
}

func TestCopyOnRead(t *testing.T) {
	c := New(&countingSynth{}, nil)
	req := raster.Request{Kind: raster.KindStar, Identity: "sun", Resolution: 1}
	a := c.Lookup(req)
	a.Pix[0] = 99

	b := c.Lookup(req)
	if b.Pix[0] == 99 {
		t.Error("mutation of one copy visible to the next caller")
	}
	if &a.Pix[0] == &b.Pix[0] {
		t.Error("copies share pixel memory")
	}
}

func TestGetWithoutSink(t *testing.T) {
	synth := &countingSynth{}
	c := New(synth, nil)
	_, err := c.Get(nil, raster.Request{Kind: raster.KindIce})
	if !errors.Is(err, raster.ErrBackendUnavailable) {
		t.Fatalf("err = %v, want ErrBackendUnavailable", err)
	}
	if synth.calls != 0 {
		t.Error("synthesis should not run without a sink")
	}
}

func TestGetUploadError(t *testing.T) {
	boom := errors.New("boom")
	c := New(&countingSynth{}, nil)
	req := raster.Request{Kind: raster.KindIce, Identity: "europa"}
	_, err := c.Get(raster.SinkFunc(func(*raster.Raster) error { return boom }), req)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped upload error", err)
	}
	if !c.Contains(req) {
		t.Error("entry should be cached even when upload fails")
	}
}

func TestHitDoesNotWaitForOtherMiss(t *testing.T) {
	synth := &countingSynth{slow: "earth", release: make(chan struct{})}
	c := New(synth, nil)
	moon := raster.Request{Kind: raster.KindMoon, Identity: "luna", Resolution: 0.25}
	c.Lookup(moon)

	done := make(chan struct{})
	go func() {
		c.Lookup(raster.Request{Kind: raster.KindOcean, Identity: "earth", Resolution: 1})
		close(done)
	}()

	// Wait for the slow miss to be registered
	for c.Stats().Misses < 2 {
		time.Sleep(time.Millisecond)
	}

	hit := make(chan struct{})
	go func() {
		c.Lookup(moon)
		close(hit)
	}()
	select {
	case <-hit:
	case <-time.After(2 * time.Second):
		t.Fatal("hit blocked behind an unrelated miss")
	}

	close(synth.release)
	<-done
	if s := c.Stats(); s.Hits != 1 || s.Misses != 2 {
		t.Errorf("stats = %+v, want 1 hit, 2 misses", s)
	}
}

func TestConcurrentMissesSynthesizeOnce(t *testing.T) {
	synth := &countingSynth{slow: "io", release: make(chan struct{})}
	c := New(synth, nil)
	req := raster.Request{Kind: raster.KindRocky, Identity: "io", Resolution: 1}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r := c.Lookup(req); r.Width != 64 {
				t.Errorf("width = %d, want 64", r.Width)
			}
		}()
	}
	for c.Stats().Hits+c.Stats().Misses < 8 {
		time.Sleep(time.Millisecond)
	}
	if c.Contains(req) {
		t.Error("entry reported before synthesis finished")
	}
	close(synth.release)
	wg.Wait()

	if synth.calls != 1 {
		t.Errorf("synthesis calls = %d, want 1", synth.calls)
	}
	if !c.Contains(req) {
		t.Error("entry should be kept after synthesis")
	}
}

func TestMaxBytes(t *testing.T) {
	synth := &countingSynth{}
	c := New(synth, nil)
	c.MaxBytes = 64 * 32 * 4 // room for one full-resolution raster

	a := raster.Request{Kind: raster.KindIce, Identity: "europa", Resolution: 1}
	b := raster.Request{Kind: raster.KindIce, Identity: "ganymede", Resolution: 1}
	c.Lookup(a)
	if r := c.Lookup(b); r.Width != 64 {
		t.Fatalf("over-budget requests are still served, got width %d", r.Width)
	}
	c.Lookup(b)

	if synth.calls != 3 {
		t.Errorf("synthesis calls = %d, want 3", synth.calls)
	}
	if !c.Contains(a) || c.Contains(b) {
		t.Error("only the first raster should be kept")
	}
	s := c.Stats()
	if s.Entries != 1 || s.Bytes != c.MaxBytes || s.Dropped != 2 {
		t.Errorf("stats = %+v, want 1 entry, %d bytes, 2 dropped", s, c.MaxBytes)
	}
}
