package gemfall

import (
	"log"
	"slices"
	"sync"
	"time"
)

const (
	// TickPeriod is the interval between particle updates (60 per second).
	TickPeriod = time.Second / 60

	// BoundsMargin is how far past the left, right or bottom edge of the
	// viewport a particle may travel before it is removed. It keeps sprites
	// whose center left the screen drawn until they are fully offscreen.
	BoundsMargin = 20.0
)

// particle is the engine-owned state of one moving object.
type particle struct {
	id               Handle
	start            time.Time
	originX, originY float64
	motion           Motion
	x, y             float64
}

// ParticleEngine moves objects of a Scene along closed-form constant
// acceleration paths. It ticks only while it tracks at least one particle
// and removes particles that leave the viewport through the left, right or
// bottom edge.
//
// All methods are safe for concurrent use.
type ParticleEngine struct {
	scene  Scene
	clock  Clock
	sched  Scheduler
	logger *log.Logger
	debug  bool

	mu        sync.Mutex
	timer     Timer
	gen       uint64 // identifies the current timer; stale ticks compare against it
	particles []particle
	removeBuf []int
}

// EngineOption configures a ParticleEngine.
type EngineOption func(*ParticleEngine)

// WithClock sets the time source used to timestamp and advance particles.
func WithClock(c Clock) EngineOption {
	return func(e *ParticleEngine) { e.clock = c }
}

// WithScheduler sets the scheduler that drives the tick.
func WithScheduler(s Scheduler) EngineOption {
	return func(e *ParticleEngine) { e.sched = s }
}

// WithLogger sets the logger used in debug mode.
func WithLogger(l *log.Logger) EngineOption {
	return func(e *ParticleEngine) { e.logger = l }
}

// NewParticleEngine creates an idle engine pushing updates to scene.
// Panics if scene is nil.
func NewParticleEngine(scene Scene, opts ...EngineOption) *ParticleEngine {
	if scene == nil {
		panic("gemfall: particle engine needs a scene")
	}
	e := &ParticleEngine{scene: scene}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.sched == nil {
		e.sched = NewTickerScheduler()
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	return e
}

// Add starts moving the object id from (x, y) according to m. A motion with
// no animated axis is ignored. The first particle added to an empty engine
// starts the tick; later ones join the running tick.
//
// The engine does not check id for uniqueness. Adding the same handle twice
// moves it along both paths.
func (e *ParticleEngine) Add(id Handle, x, y float64, m Motion) {
	if !m.Moves() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.particles) == 0 && e.timer == nil {
		e.startLocked()
	}
	e.particles = append(e.particles, particle{
		id:      id,
		start:   e.clock.Now(),
		originX: x,
		originY: y,
		motion:  m,
		x:       x,
		y:       y,
	})
}

// Stop cancels the tick. Tracked particles are kept; they resume moving, from
// where their elapsed time puts them, only if the engine is emptied and a new
// particle restarts the tick. Stop is idempotent.
func (e *ParticleEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// Reset stops the tick and forgets every particle without notifying the
// scene.
func (e *ParticleEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	clear(e.particles)
	e.particles = e.particles[:0]
}

// Running reports whether the tick is scheduled.
func (e *ParticleEngine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timer != nil
}

// Len returns the number of tracked particles.
func (e *ParticleEngine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.particles)
}

// SetDebugMode enables or disables per-tick stats logging.
func (e *ParticleEngine) SetDebugMode(enabled bool) {
	e.mu.Lock()
	e.debug = enabled
	e.mu.Unlock()
}

func (e *ParticleEngine) startLocked() {
	e.gen++
	gen := e.gen
	e.timer = e.sched.Every(TickPeriod, func() { e.tick(gen) })
	if e.debug {
		e.logger.Printf("gemfall: particle engine started (timer %d)", gen)
	}
}

func (e *ParticleEngine) stopLocked() {
	if e.timer == nil {
		return
	}
	e.timer.Stop()
	e.timer = nil
	if e.debug {
		e.logger.Printf("gemfall: particle engine stopped (timer %d)", e.gen)
	}
}

// tick advances every particle to the current time. gen identifies the timer
// that scheduled the call; a tick from a stopped or replaced timer is a no-op.
func (e *ParticleEngine) tick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer == nil || gen != e.gen {
		return
	}

	var t0 time.Time
	if e.debug {
		t0 = time.Now()
	}

	now := e.clock.Now()
	width, height := e.scene.Dimensions()
	left := -BoundsMargin
	right := width + BoundsMargin
	bottom := height + BoundsMargin

	// Pass one: move particles, collect the indices of those that left.
	remove := e.removeBuf[:0]
	for i := range e.particles {
		p := &e.particles[i]
		t := now.Sub(p.start).Seconds()
		var a Attrs

		if p.motion.X.animated {
			p.x = p.motion.X.At(p.originX, t)
			if p.x < left || p.x > right {
				remove = append(remove, i)
				continue
			}
			a.Mask |= AttrX
			a.X = p.x
		}
		if p.motion.Y.animated {
			p.y = p.motion.Y.At(p.originY, t)
			if p.y > bottom {
				remove = append(remove, i)
				continue
			}
			a.Mask |= AttrY
			a.Y = p.y
		}
		e.scene.Change(p.id, a)
	}

	// Pass two: remove from the highest index down so pending indices stay
	// valid.
	for j := len(remove) - 1; j >= 0; j-- {
		i := remove[j]
		e.scene.Remove(e.particles[i].id)
		e.particles = slices.Delete(e.particles, i, i+1)
	}
	removed := len(remove)
	e.removeBuf = remove[:0]

	if e.debug {
		e.logStats(tickStats{
			elapsed: time.Since(t0),
			alive:   len(e.particles),
			removed: removed,
		})
	}

	if len(e.particles) == 0 {
		e.stopLocked()
	}
}
