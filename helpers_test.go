package gemfall

import (
	"math"
	"sync"
	"testing"
	"time"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// fakeClock is a controllable Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// manualScheduler records registrations and runs them only on demand.
type manualScheduler struct {
	every []*manualTimer
	after []*manualTimer
}

type manualTimer struct {
	period  time.Duration
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() { t.stopped = true }

func (s *manualScheduler) Every(period time.Duration, fn func()) Timer {
	t := &manualTimer{period: period, fn: fn}
	s.every = append(s.every, t)
	return t
}

func (s *manualScheduler) After(delay time.Duration, fn func()) Timer {
	t := &manualTimer{period: delay, fn: fn}
	s.after = append(s.after, t)
	return t
}

// tick runs every live periodic timer once.
func (s *manualScheduler) tick() {
	for _, t := range s.every {
		if !t.stopped {
			t.fn()
		}
	}
}

// recordingScene is a Scene that remembers what it was told.
type recordingScene struct {
	mu      sync.Mutex
	width   float64
	height  float64
	changes []change
	removed []Handle
}

type change struct {
	id    Handle
	attrs Attrs
}

func newRecordingScene(w, h float64) *recordingScene {
	return &recordingScene{width: w, height: h}
}

func (s *recordingScene) Dimensions() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *recordingScene) Change(id Handle, a Attrs) {
	s.mu.Lock()
	s.changes = append(s.changes, change{id, a})
	s.mu.Unlock()
}

func (s *recordingScene) Remove(id Handle) {
	s.mu.Lock()
	s.removed = append(s.removed, id)
	s.mu.Unlock()
}

// reset forgets recorded calls.
func (s *recordingScene) reset() {
	s.mu.Lock()
	s.changes = nil
	s.removed = nil
	s.mu.Unlock()
}

// last returns the most recent change pushed for id.
func (s *recordingScene) last(id Handle) (Attrs, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.changes) - 1; i >= 0; i-- {
		if s.changes[i].id == id {
			return s.changes[i].attrs, true
		}
	}
	return Attrs{}, false
}

func (s *recordingScene) changeCount(id Handle) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.changes {
		if c.id == id {
			n++
		}
	}
	return n
}

func (s *recordingScene) removedIDs() []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Handle(nil), s.removed...)
}

// newTestEngine returns an engine on a manual scheduler and fake clock.
func newTestEngine(w, h float64) (*ParticleEngine, *recordingScene, *fakeClock, *manualScheduler) {
	scene := newRecordingScene(w, h)
	clock := newFakeClock()
	sched := &manualScheduler{}
	e := NewParticleEngine(scene, WithClock(clock), WithScheduler(sched))
	return e, scene, clock, sched
}
