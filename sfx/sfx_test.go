package sfx

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

const testRate = beep.SampleRate(48000)

func drain(t *testing.T, s beep.Streamer) [][2]float64 {
	t.Helper()
	var out [][2]float64
	buf := make([][2]float64, 333)
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
	t.Fatal("stream never ended")
	return nil
}

func TestOscillatorLength(t *testing.T) {
	got := drain(t, NewOscillator(440, 100*time.Millisecond, WaveSine, testRate))
	if want := testRate.N(100 * time.Millisecond); len(got) != want {
		t.Errorf("samples = %d, want %d", len(got), want)
	}
}

func TestSquareWaveLevels(t *testing.T) {
	got := drain(t, NewOscillator(1000, 10*time.Millisecond, WaveSquare, testRate))
	for i, s := range got {
		if s[0] != 1 && s[0] != -1 {
			t.Fatalf("sample %d = %v, want ±1", i, s[0])
		}
		if s[0] != s[1] {
			t.Fatalf("sample %d channels differ: %v", i, s)
		}
	}
	// 1kHz at 48kHz: the first 24 samples are high, the next 24 low.
	if got[0][0] != 1 || got[30][0] != -1 {
		t.Errorf("phase: got[0]=%v got[30]=%v", got[0][0], got[30][0])
	}
}

func TestEnvelopeShape(t *testing.T) {
	src := NewOscillator(0, time.Second, WaveSquare, testRate) // constant 1
	env := NewEnvelope(src, 100*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, testRate)
	got := drain(t, env)

	if want := testRate.N(100 * time.Millisecond); len(got) != want {
		t.Fatalf("samples = %d, want %d", len(got), want)
	}
	if got[0][0] != 0 {
		t.Errorf("first sample = %v, want 0", got[0][0])
	}
	if mid := got[len(got)/2][0]; mid != 1 {
		t.Errorf("sustain = %v, want 1", mid)
	}
	if last := got[len(got)-1][0]; last <= 0 || last > 0.01 {
		t.Errorf("last sample = %v, want a small positive value", last)
	}
}

func TestSilentVolume(t *testing.T) {
	got := drain(t, DropSound(Config{SampleRate: 48000, Volume: 0}))
	for i, s := range got {
		if s[0] != 0 || s[1] != 0 {
			t.Fatalf("sample %d = %v, want silence", i, s)
		}
	}
}

func TestDropSoundPCM(t *testing.T) {
	b, err := io.ReadAll(NewPCMReader(DropSound(DefaultConfig)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := testRate.N(DropDuration) * 4
	if len(b) != want {
		t.Errorf("bytes = %d, want %d", len(b), want)
	}
}

func TestBurstSoundPCM(t *testing.T) {
	s, err := BurstSound(DefaultConfig)
	if err != nil {
		t.Fatalf("BurstSound: %v", err)
	}
	b, err := io.ReadAll(NewPCMReader(s))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := testRate.N(BurstDuration) * 4; len(b) != want {
		t.Errorf("bytes = %d, want %d", len(b), want)
	}
}

func TestBurstSoundRejectsLowRate(t *testing.T) {
	// The ping sits above the Nyquist limit of a 2kHz stream.
	if _, err := BurstSound(Config{SampleRate: 2000, Volume: 1}); err == nil {
		t.Error("expected an error")
	}
}

func TestPCMEncoding(t *testing.T) {
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		samples[0] = [2]float64{1, -1}
		samples[1] = [2]float64{2, 0}
		return 2, false
	})
	b, err := io.ReadAll(NewPCMReader(src))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(b) != 8 {
		t.Fatalf("bytes = %d, want 8", len(b))
	}
	want := []int16{math.MaxInt16, -math.MaxInt16, math.MaxInt16, 0}
	for i, w := range want {
		if got := int16(binary.LittleEndian.Uint16(b[i*2:])); got != w {
			t.Errorf("value %d = %d, want %d", i, got, w)
		}
	}
}
