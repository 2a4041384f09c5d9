package gemfall

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock provides the current time. Readings must carry a monotonic component
// so that elapsed-time arithmetic is immune to wall clock jumps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now returns the current time with monotonic clock reading.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop cancels the timer. Once Stop returns the callback is not invoked
	// again by this timer. Calling Stop more than once is a no-op.
	Stop()
}

// Scheduler invokes callbacks at a fixed period or after a delay.
type Scheduler interface {
	Every(period time.Duration, fn func()) Timer
	After(delay time.Duration, fn func()) Timer
}

// minTickerPeriod is the shortest period TickerScheduler will honor.
const minTickerPeriod = time.Millisecond

// TickerScheduler runs each periodic callback on its own goroutine driven by
// a time.Ticker. Callbacks of one timer never overlap; callbacks of
// different timers may run concurrently.
type TickerScheduler struct{}

// NewTickerScheduler creates a goroutine-backed scheduler.
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

// Every starts a goroutine invoking fn once per period until the returned
// Timer is stopped.
func (s *TickerScheduler) Every(period time.Duration, fn func()) Timer {
	if period < minTickerPeriod {
		period = minTickerPeriod
	}
	t := &tickerTimer{done: make(chan struct{})}
	go t.loop(period, fn)
	return t
}

// After invokes fn once on its own goroutine after delay.
func (s *TickerScheduler) After(delay time.Duration, fn func()) Timer {
	t := &afterTimer{}
	t.timer = time.AfterFunc(delay, func() {
		if t.stopped.Load() {
			return
		}
		fn()
	})
	return t
}

type tickerTimer struct {
	done    chan struct{}
	once    sync.Once
	stopped atomic.Bool
}

func (t *tickerTimer) loop(period time.Duration, fn func()) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			// Both channels may be ready; a stop always wins.
			if t.stopped.Load() {
				return
			}
			fn()
		}
	}
}

// Stop does not wait for the goroutine to exit, so it is safe to call from
// inside the callback.
func (t *tickerTimer) Stop() {
	t.once.Do(func() {
		t.stopped.Store(true)
		close(t.done)
	})
}

type afterTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
}

func (t *afterTimer) Stop() {
	if t.stopped.Swap(true) {
		return
	}
	t.timer.Stop()
}

// FrameScheduler runs callbacks from Update, on the caller's goroutine. It is
// meant to be pumped once per frame by a game loop, which keeps every
// callback on the render goroutine.
type FrameScheduler struct {
	clock Clock

	mu     sync.Mutex
	timers []*frameTimer
}

type frameTimer struct {
	s       *FrameScheduler
	period  time.Duration
	next    time.Time
	fn      func()
	repeat  bool
	stopped bool
}

// NewFrameScheduler creates a scheduler reading time from clock. A nil clock
// uses SystemClock.
func NewFrameScheduler(clock Clock) *FrameScheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &FrameScheduler{clock: clock}
}

// Every registers fn to run on the first Update at least period after now,
// and every period after that.
func (s *FrameScheduler) Every(period time.Duration, fn func()) Timer {
	return s.schedule(period, fn, true)
}

// After registers fn to run once on the first Update at least delay from now.
func (s *FrameScheduler) After(delay time.Duration, fn func()) Timer {
	return s.schedule(delay, fn, false)
}

func (s *FrameScheduler) schedule(d time.Duration, fn func(), repeat bool) Timer {
	t := &frameTimer{
		s:      s,
		period: d,
		next:   s.clock.Now().Add(d),
		fn:     fn,
		repeat: repeat,
	}
	s.mu.Lock()
	s.timers = append(s.timers, t)
	s.mu.Unlock()
	return t
}

// Len returns the number of live timers.
func (s *FrameScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Update fires every due timer once. A periodic timer keeps its phase, so
// frames that arrive a little early or late still average one call per
// period. A timer more than a period behind fires a single time and re-arms
// from now, so a slow frame never causes a burst of catch-up calls.
// Callbacks may register or stop timers.
func (s *FrameScheduler) Update() {
	now := s.clock.Now()

	s.mu.Lock()
	live := s.timers[:0]
	var due []*frameTimer
	for _, t := range s.timers {
		if t.stopped {
			continue
		}
		if !now.Before(t.next) {
			due = append(due, t)
			if t.repeat {
				t.next = t.next.Add(t.period)
				if now.Sub(t.next) >= t.period {
					t.next = now.Add(t.period)
				}
			} else {
				// One-shot timers leave the list once due.
				continue
			}
		}
		live = append(live, t)
	}
	for i := len(live); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = live
	s.mu.Unlock()

	for _, t := range due {
		// An earlier callback in this pass may have stopped t.
		s.mu.Lock()
		stopped := t.stopped
		if !t.repeat {
			t.stopped = true
		}
		s.mu.Unlock()
		if stopped {
			continue
		}
		t.fn()
	}
}

func (t *frameTimer) Stop() {
	t.s.mu.Lock()
	t.stopped = true
	t.s.mu.Unlock()
}
