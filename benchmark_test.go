package gemfall

import (
	"testing"
	"time"
)

// nullScene accepts every call and discards it.
type nullScene struct{ w, h float64 }

func (s nullScene) Dimensions() (float64, float64) { return s.w, s.h }
func (nullScene) Change(Handle, Attrs) {}
func (nullScene) Remove(Handle) {}

func benchmarkTick(b *testing.B, n int) {
	clock := newFakeClock()
	sched := &manualScheduler{}
	// A tall viewport and no horizontal drift keep every particle alive.
	e := NewParticleEngine(nullScene{w: 320, h: 1e12}, WithClock(clock), WithScheduler(sched))
	for i := 0; i < n; i++ {
		e.Add(Handle(i+1), 160, 0, Motion{
			X: Move(0, 0),
			Y: Move(-150, 500),
		})
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		clock.Advance(time.Millisecond)
		sched.tick()
	}
}

func BenchmarkTick_100(b *testing.B) { benchmarkTick(b, 100) }
func BenchmarkTick_1000(b *testing.B) { benchmarkTick(b, 1000) }
func BenchmarkTick_10000(b *testing.B) { benchmarkTick(b, 10000) }

func BenchmarkFrameSchedulerUpdate(b *testing.B) {
	clock := newFakeClock()
	s := NewFrameScheduler(clock)
	for i := 0; i < 64; i++ {
		s.Every(TickPeriod, func() {})
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		clock.Advance(TickPeriod)
		s.Update()
	}
}
