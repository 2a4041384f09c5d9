package gemfall

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Glyph metrics of the ebitenutil debug font.
const (
	debugGlyphW = 6
	debugGlyphH = 16
)

// Padding is a box inset in pixels.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// LabelStyle controls how a layer label is drawn.
type LabelStyle struct {
	Padding    Padding
	Background Color // zero leaves the background transparent
	Color      Color // zero draws white text
}

// label is a boxed line of text owned by a layer.
type label struct {
	text  string
	style LabelStyle

	img   *ebiten.Image // rendered glyphs, rebuilt when text changes
	dirty bool
}

// SetLayerLabel puts a text box at the origin of a layer. Use Translate to
// position it. An empty text removes the label.
func (s *Stage) SetLayerLabel(layerIndex int, text string, style LabelStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.layer(layerIndex)
	if text == "" {
		l.label = nil
		return
	}
	l.label = &label{text: text, style: style, dirty: true}
}

// LayerLabel returns the text of a layer's label.
func (s *Stage) LayerLabel(layerIndex int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.layer(layerIndex)
	if l.label == nil {
		return "", false
	}
	return l.label.text, true
}

// size returns the label's box size including padding.
func (lb *label) size() (w, h float64) {
	lines := strings.Split(lb.text, "\n")
	cols := 0
	for _, ln := range lines {
		cols = max(cols, len(ln))
	}
	p := lb.style.Padding
	w = float64(cols*debugGlyphW) + p.Left + p.Right
	h = float64(len(lines)*debugGlyphH) + p.Top + p.Bottom
	return w, h
}

// draw renders the label and returns the number of draw calls issued.
func (lb *label) draw(dst *ebiten.Image, ox, oy float64) int {
	w, h := lb.size()
	p := lb.style.Padding
	calls := 0

	if lb.style.Background != (Color{}) {
		var op ebiten.DrawImageOptions
		op.GeoM.Scale(w, h)
		op.GeoM.Translate(ox, oy)
		bg := lb.style.Background
		op.ColorScale.Scale(float32(bg.R), float32(bg.G), float32(bg.B), float32(bg.A))
		dst.DrawImage(whitePixel(), &op)
		calls++
	}

	if lb.dirty || lb.img == nil {
		tw := int(w - p.Left - p.Right)
		th := int(h - p.Top - p.Bottom)
		if lb.img != nil {
			lb.img.Deallocate()
		}
		lb.img = ebiten.NewImage(max(tw, 1), max(th, 1))
		ebitenutil.DebugPrint(lb.img, lb.text)
		lb.dirty = false
	}

	var op ebiten.DrawImageOptions
	op.GeoM.Translate(ox+p.Left, oy+p.Top)
	if c := lb.style.Color; c != (Color{}) {
		op.ColorScale.Scale(float32(c.R), float32(c.G), float32(c.B), float32(c.A))
	}
	dst.DrawImage(lb.img, &op)
	return calls + 1
}
