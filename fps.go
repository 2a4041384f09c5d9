package gemfall

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const fpsRefresh = 0.5 // seconds

// fpsWidget is the overlay Run draws when RunConfig.ShowFPS is set: frame
// rate, tick rate and sprite count in the top-left corner.
type fpsWidget struct {
	img     *ebiten.Image
	elapsed float64
}

func newFPSWidget() *fpsWidget {
	// Three lines of the debug font.
	return &fpsWidget{
		img:     ebiten.NewImage(110, 3*debugGlyphH),
		elapsed: fpsRefresh,
	}
}

func (w *fpsWidget) update(dt float64, sprites int) {
	w.elapsed += dt
	if w.elapsed < fpsRefresh {
		return
	}
	w.elapsed = 0

	w.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(w.img, fmtOverlay(ebiten.ActualFPS(), ebiten.ActualTPS(), sprites))
}

func fmtOverlay(fps, tps float64, sprites int) string {
	return fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nSprites: %d", fps, tps, sprites)
}

func (w *fpsWidget) draw(screen *ebiten.Image) {
	screen.DrawImage(w.img, nil)
}
