// Package termscene renders gemfall objects as characters on a terminal
// through tcell. It implements gemfall.Scene, so a ParticleEngine can drive
// it the same way it drives a Stage.
package termscene

import (
	"math"
	"slices"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/phanxgames/gemfall"
)

// Glyph describes a terminal object. Frames, when set, are the runes selected
// by the frame attribute; otherwise Rune is drawn.
type Glyph struct {
	Rune   rune
	Frames []rune
	Frame  int
	Color  gemfall.Color
	X, Y   float64
	Layer  int
}

type object struct {
	id gemfall.Handle
	Glyph
}

func (o *object) rune() rune {
	if o.Frame >= 0 && o.Frame < len(o.Frames) {
		return o.Frames[o.Frame]
	}
	return o.Rune
}

// Scene maps scene units onto terminal cells. One column is cellW units wide
// and one row is cellH units tall, so a scene written for pixels can be shown
// on a terminal without changing its coordinates.
//
// Methods are safe for concurrent use.
type Scene struct {
	screen       tcell.Screen
	cellW, cellH float64

	mu      sync.Mutex
	objects map[gemfall.Handle]*object
	nextID  gemfall.Handle
}

// New creates a scene drawing on an initialized screen. Non-positive cell
// sizes default to 1.
func New(screen tcell.Screen, cellW, cellH float64) *Scene {
	if cellW <= 0 {
		cellW = 1
	}
	if cellH <= 0 {
		cellH = 1
	}
	return &Scene{
		screen:  screen,
		cellW:   cellW,
		cellH:   cellH,
		objects: make(map[gemfall.Handle]*object),
	}
}

// Add places a glyph and returns its handle.
func (s *Scene) Add(g Glyph) gemfall.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.objects[s.nextID] = &object{id: s.nextID, Glyph: g}
	return s.nextID
}

// Dimensions reports the screen size in scene units.
func (s *Scene) Dimensions() (width, height float64) {
	cols, rows := s.screen.Size()
	return float64(cols) * s.cellW, float64(rows) * s.cellH
}

// Change applies position, layer, frame and color attributes. Scale and
// alpha have no terminal rendition and are ignored.
func (s *Scene) Change(id gemfall.Handle, a gemfall.Attrs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[id]
	if !ok {
		return
	}
	if a.Has(gemfall.AttrX) {
		o.X = a.X
	}
	if a.Has(gemfall.AttrY) {
		o.Y = a.Y
	}
	if a.Has(gemfall.AttrLayer) {
		o.Layer = a.Layer
	}
	if a.Has(gemfall.AttrFrame) {
		o.Frame = a.Frame
	}
	if a.Has(gemfall.AttrColor) {
		o.Color = a.Color
	}
}

// Remove deletes object id.
func (s *Scene) Remove(id gemfall.Handle) {
	s.mu.Lock()
	delete(s.objects, id)
	s.mu.Unlock()
}

// Len returns the number of objects.
func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Cell converts scene coordinates to a column and row.
func (s *Scene) Cell(x, y float64) (col, row int) {
	return int(math.Floor(x / s.cellW)), int(math.Floor(y / s.cellH))
}

// Draw repaints the screen. Objects draw by ascending layer, then by
// creation order; objects outside the screen are skipped.
func (s *Scene) Draw() {
	s.mu.Lock()
	objs := make([]object, 0, len(s.objects))
	for _, o := range s.objects {
		objs = append(objs, *o)
	}
	s.mu.Unlock()

	slices.SortFunc(objs, func(a, b object) int {
		if a.Layer != b.Layer {
			return a.Layer - b.Layer
		}
		return int(a.id) - int(b.id)
	})

	cols, rows := s.screen.Size()
	s.screen.Clear()
	for i := range objs {
		o := &objs[i]
		col, row := s.Cell(o.X, o.Y)
		if col < 0 || row < 0 || col >= cols || row >= rows {
			continue
		}
		s.screen.SetContent(col, row, o.rune(), nil, styleOf(o.Color))
	}
	s.screen.Show()
}

// styleOf maps a gemfall color to a foreground style.
func styleOf(c gemfall.Color) tcell.Style {
	if c == (gemfall.Color{}) {
		return tcell.StyleDefault
	}
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(
		int32(c.R*255+0.5), int32(c.G*255+0.5), int32(c.B*255+0.5)))
}
