// Package sfx synthesizes the short sound effects of the gem demo with beep
// and exposes them as PCM streams that ebiten/audio can play.
package sfx

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// WaveType selects an oscillator wave shape.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// Config holds the output format and loudness of generated effects.
type Config struct {
	SampleRate int
	Volume     float64 // linear, 0 mutes
}

// DefaultConfig matches the sample rate ebiten's audio context is usually
// created with.
var DefaultConfig = Config{SampleRate: 48000, Volume: 0.4}

// sweep is an oscillator whose frequency slides linearly from one value to
// another over its duration.
type sweep struct {
	from, to float64
	phase    float64
	total    int
	position int
	wave     WaveType
	rate     beep.SampleRate
}

// NewOscillator returns a fixed-frequency wave lasting duration.
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return NewSweep(freq, freq, duration, wave, rate)
}

// NewSweep returns a wave gliding from one frequency to another.
func NewSweep(from, to float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &sweep{
		from:  from,
		to:    to,
		total: rate.N(duration),
		wave:  wave,
		rate:  rate,
	}
}

func (o *sweep) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.total {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1
			} else {
				val = -1
			}
		case WaveSaw:
			val = 2 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}
		samples[i][0] = val
		samples[i][1] = val

		freq := o.from + (o.to-o.from)*float64(o.position)/float64(o.total)
		o.phase += freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *sweep) Err() error { return nil }

// envelope fades a stream in over the attack and out over the release.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

// NewEnvelope shapes s with a linear attack and release. The stream ends
// after duration even if s has more samples.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	if e.position >= e.total {
		return 0, false
	}
	if rest := e.total - e.position; len(samples) > rest {
		samples = samples[:rest]
	}
	n, ok = e.streamer.Stream(samples)
	releaseStart := e.total - e.release
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if e.release > 0 && e.position >= releaseStart {
			vol = math.Max(0, float64(e.total-e.position)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// withVolume scales s by a linear volume. beep's Volume effect works in
// powers of Base, and log2(0) is -Inf, so 0 maps to silence.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Effect durations.
const (
	DropDuration  = 350 * time.Millisecond
	BurstDuration = 120 * time.Millisecond
)

// DropSound is a falling tone played when a gem starts to fall.
func DropSound(cfg Config) beep.Streamer {
	rate := beep.SampleRate(cfg.SampleRate)
	tone := NewSweep(660, 220, DropDuration, WaveSine, rate)
	shaped := NewEnvelope(tone, DropDuration, 10*time.Millisecond, 200*time.Millisecond, rate)
	return withVolume(shaped, cfg.Volume)
}

// BurstSound is a short noise pop with a high ping on top, played when a
// gem shatters into particles.
func BurstSound(cfg Config) (beep.Streamer, error) {
	rate := beep.SampleRate(cfg.SampleRate)
	ping, err := generators.SineTone(rate, 1320)
	if err != nil {
		return nil, fmt.Errorf("sfx: burst ping: %w", err)
	}
	noise := NewEnvelope(NewOscillator(0, BurstDuration, WaveNoise, rate),
		BurstDuration, 2*time.Millisecond, 100*time.Millisecond, rate)
	click := NewEnvelope(ping, BurstDuration/3, time.Millisecond, 30*time.Millisecond, rate)
	mixed := beep.Mix(withVolume(noise, 0.6), withVolume(click, 0.3))
	return withVolume(beep.Take(rate.N(BurstDuration), mixed), cfg.Volume), nil
}
