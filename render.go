package gemfall

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Draw renders every layer in ascending order onto screen. Within a layer,
// sprites draw in insertion order and the label, if any, draws last.
func (s *Stage) Draw(screen *ebiten.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t0 := time.Now()
	if s.ClearColor != (Color{}) {
		screen.Fill(s.ClearColor.toRGBA())
	}

	drawCalls := 0
	for _, l := range s.layers {
		for _, sp := range l.sprites {
			s.drawSprite(screen, sp, l.offsetX, l.offsetY)
			drawCalls++
		}
		if l.label != nil {
			drawCalls += l.label.draw(screen, l.offsetX, l.offsetY)
		}
	}

	if s.debug {
		s.stats.drawTime = time.Since(t0)
		s.stats.sprites = len(s.sprites)
		s.stats.drawCalls = drawCalls
		s.debugLog(s.stats)
	}
	s.flushScreenshotsLocked(screen)
}

func (s *Stage) drawSprite(dst *ebiten.Image, sp *Sprite, ox, oy float64) {
	if sp.Alpha <= 0 || sp.Scale == 0 {
		return
	}

	var src *ebiten.Image
	var op ebiten.DrawImageOptions
	if sp.sheet != nil {
		src = sp.sheet.frame(sp.Frame, s.debug)
		// Placeholders are 1x1; stretch them to the tile.
		b := src.Bounds()
		op.GeoM.Scale(sp.width/float64(b.Dx()), sp.height/float64(b.Dy()))
	} else {
		src = whitePixel()
		op.GeoM.Scale(sp.width, sp.height)
	}

	// Scale around the sprite center.
	if sp.Scale != 1 {
		cx, cy := sp.width/2, sp.height/2
		op.GeoM.Translate(-cx, -cy)
		op.GeoM.Scale(sp.Scale, sp.Scale)
		op.GeoM.Translate(cx, cy)
	}
	op.GeoM.Translate(sp.X+ox, sp.Y+oy)

	op.ColorScale.Scale(float32(sp.Color.R), float32(sp.Color.G), float32(sp.Color.B), float32(sp.Color.A))
	op.ColorScale.ScaleAlpha(float32(sp.Alpha))
	dst.DrawImage(src, &op)
}
