package gemfall

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title   string
	Width   int // window size; zero uses the stage size
	Height  int
	ShowFPS bool
}

// game adapts a Stage to ebiten.Game.
type game struct {
	stage *Stage
	fps   *fpsWidget
}

func (g *game) Update() error {
	if err := g.stage.Update(); err != nil {
		return err
	}
	if g.fps != nil {
		g.fps.update(1.0/float64(ebiten.TPS()), g.stage.Len())
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.stage.Draw(screen)
	if g.fps != nil {
		g.fps.draw(screen)
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	w, h := g.stage.Dimensions()
	return int(w), int(h)
}

// Run opens a window and drives stage until the window closes or the update
// callback returns an error. It blocks.
func Run(stage *Stage, cfg RunConfig) error {
	w, h := stage.Dimensions()
	if cfg.Width == 0 || cfg.Height == 0 {
		cfg.Width, cfg.Height = int(w), int(h)
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)

	g := &game{stage: stage}
	if cfg.ShowFPS {
		g.fps = newFPSWidget()
	}
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("gemfall: run: %w", err)
	}
	return nil
}
