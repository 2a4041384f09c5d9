package sfx

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/gopxl/beep"
)

const pcmChunk = 512

// PCMReader encodes a beep stream as interleaved 16-bit little-endian stereo,
// the format ebiten/audio players read.
type PCMReader struct {
	s       beep.Streamer
	samples [][2]float64
	buf     []byte // encoded bytes not yet returned
	done    bool
}

// NewPCMReader wraps s. The reader returns io.EOF once s is drained.
func NewPCMReader(s beep.Streamer) *PCMReader {
	return &PCMReader{s: s, samples: make([][2]float64, pcmChunk)}
}

func (r *PCMReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.done {
			if err := r.s.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		n, ok := r.s.Stream(r.samples)
		if !ok {
			r.done = true
		}
		r.encode(r.samples[:n])
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *PCMReader) encode(samples [][2]float64) {
	out := make([]byte, 0, len(samples)*4)
	for _, s := range samples {
		out = binary.LittleEndian.AppendUint16(out, uint16(toInt16(s[0])))
		out = binary.LittleEndian.AppendUint16(out, uint16(toInt16(s[1])))
	}
	r.buf = out
}

func toInt16(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	return int16(math.Round(v * math.MaxInt16))
}
