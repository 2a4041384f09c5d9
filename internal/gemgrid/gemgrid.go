// Package gemgrid holds the game logic shared by the gem examples: the grid
// of coloured gems, which gems have dropped, and the motions given to falling
// gems and to the particles of a burst.
package gemgrid

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/aquilax/go-perlin"

	"github.com/phanxgames/gemfall"
)

// Grid layout and timing.
const (
	Cols      = 8
	Rows      = 8
	Tile      = 30
	NumColors = 7

	BurstCount   = 20
	BurstOffsetX = 14
	BurstOffsetY = 20

	DropInterval = 500 * time.Millisecond
	FallDelay    = 250 * time.Millisecond
)

// Scene layers, bottom to top.
const (
	LayerGems = iota
	LayerParticles
	LayerDropping
	LayerLabel
	NumLayers
)

// Picker chooses the colour of the gem at a grid cell.
type Picker interface {
	Color(col, row int) int
}

// UniformPicker picks every colour with equal probability.
type UniformPicker struct {
	Colors int
	Rand   *rand.Rand // nil uses the global source
}

func (p UniformPicker) Color(col, row int) int {
	if p.Rand == nil {
		return rand.IntN(p.Colors)
	}
	return p.Rand.IntN(p.Colors)
}

// PerlinPicker derives colours from 2D Perlin noise, so neighbouring gems
// tend to share a colour.
type PerlinPicker struct {
	colors int
	scale  float64
	noise  *perlin.Perlin
}

// NewPerlinPicker returns a picker over colors colours. scale is the noise
// distance between adjacent cells; smaller values give larger patches.
func NewPerlinPicker(colors int, scale float64, seed int64) *PerlinPicker {
	return &PerlinPicker{
		colors: colors,
		scale:  scale,
		noise:  perlin.NewPerlin(2, 2, 3, seed),
	}
}

func (p *PerlinPicker) Color(col, row int) int {
	// Offset by half a cell so no sample lands on the lattice, where the
	// noise is always 0.
	v := p.noise.Noise2D((float64(col)+0.5)*p.scale, (float64(row)+0.5)*p.scale)
	v = (v + 1) / 2
	c := int(math.Floor(v * float64(p.colors)))
	return max(0, min(p.colors-1, c))
}

// Dropped marks a cell whose gem has fallen.
const Dropped = -1

// Board is the grid of gems, stored row by row.
type Board struct {
	cols, rows, tile int
	colors           []int
	remaining        int
}

// NewBoard fills a cols×rows grid of tile-sized cells using picker.
func NewBoard(cols, rows, tile int, picker Picker) *Board {
	b := &Board{
		cols:      cols,
		rows:      rows,
		tile:      tile,
		colors:    make([]int, cols*rows),
		remaining: cols * rows,
	}
	for i := range b.colors {
		b.colors[i] = picker.Color(i%cols, i/cols)
	}
	return b
}

// Len returns the number of cells.
func (b *Board) Len() int { return len(b.colors) }

// Remaining returns the number of gems that have not dropped.
func (b *Board) Remaining() int { return b.remaining }

// Color returns the colour of cell i, or Dropped.
func (b *Board) Color(i int) int { return b.colors[i] }

// CellPos returns the top-left corner of cell i.
func (b *Board) CellPos(i int) (x, y float64) {
	return float64((i % b.cols) * b.tile), float64((i / b.cols) * b.tile)
}

// Pick marks cell i as dropped. It reports false if the gem already dropped
// or i is out of range.
func (b *Board) Pick(i int) bool {
	if i < 0 || i >= len(b.colors) || b.colors[i] == Dropped {
		return false
	}
	b.colors[i] = Dropped
	b.remaining--
	return true
}

// GemFall is the motion of a dropped gem: a small hop, then a fall.
func GemFall() gemfall.Motion {
	return gemfall.Motion{Y: gemfall.Move(-100, 1000)}
}

// BurstParticle describes one particle of a burst. The first half of a burst
// are sprites from the particle sheet, the rest plain red squares.
type BurstParticle struct {
	Sprite bool
	Frame  int
	Motion gemfall.Motion
}

// BurstOrigin returns where the burst for cell i starts.
func (b *Board) BurstOrigin(i int) (x, y float64) {
	x, y = b.CellPos(i)
	return x + BurstOffsetX, y + BurstOffsetY
}

// Burst returns n particles scattering left or right and arcing down.
func Burst(n int, rnd *rand.Rand) []BurstParticle {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	out := make([]BurstParticle, n)
	for i := range out {
		p := &out[i]
		if i < n/2 {
			p.Sprite = true
			p.Frame = rnd.IntN(NumColors)
		}
		dir := 1.0
		if rnd.IntN(2) == 0 {
			dir = -1
		}
		p.Motion = gemfall.Motion{
			X: gemfall.Move(dir*float64(rnd.IntN(20)), dir*50),
			Y: gemfall.Move(-float64(100+rnd.IntN(100)), 500),
		}
	}
	return out
}
