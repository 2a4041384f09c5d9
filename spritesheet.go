package gemfall

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Spritesheet is an image cut into equally sized tiles. Frames are numbered
// left to right, top to bottom.
type Spritesheet struct {
	Name  string
	Image *ebiten.Image
	TileW int
	TileH int

	cols, rows int
}

func newSpritesheet(name string, img *ebiten.Image, tileW, tileH int) (*Spritesheet, error) {
	if tileW <= 0 || tileH <= 0 {
		return nil, fmt.Errorf("gemfall: spritesheet %q: invalid tile size %dx%d", name, tileW, tileH)
	}
	b := img.Bounds()
	return newSpritesheetSize(name, img, b.Dx(), b.Dy(), tileW, tileH)
}

func newSpritesheetSize(name string, img *ebiten.Image, w, h, tileW, tileH int) (*Spritesheet, error) {
	cols, rows := w/tileW, h/tileH
	if cols == 0 || rows == 0 {
		return nil, fmt.Errorf("gemfall: spritesheet %q: image %dx%d smaller than tile %dx%d",
			name, w, h, tileW, tileH)
	}
	return &Spritesheet{
		Name:  name,
		Image: img,
		TileW: tileW,
		TileH: tileH,
		cols:  cols,
		rows:  rows,
	}, nil
}

// Len returns the number of frames in the sheet.
func (s *Spritesheet) Len() int {
	return s.cols * s.rows
}

// FrameRect returns the source rectangle of frame i and whether i exists.
func (s *Spritesheet) FrameRect(i int) (image.Rectangle, bool) {
	if i < 0 || i >= s.Len() {
		return image.Rectangle{}, false
	}
	x := (i % s.cols) * s.TileW
	y := (i / s.cols) * s.TileH
	return image.Rect(x, y, x+s.TileW, y+s.TileH), true
}

// frame returns the sub-image for frame i, or the magenta placeholder if i is
// out of range.
func (s *Spritesheet) frame(i int, debug bool) *ebiten.Image {
	r, ok := s.FrameRect(i)
	if !ok {
		if debug {
			log.Printf("gemfall: spritesheet %q has no frame %d, using magenta placeholder", s.Name, i)
		}
		return magentaImage()
	}
	return s.Image.SubImage(r).(*ebiten.Image)
}

// DefineSpritesheet registers img under name, cut into tileW x tileH tiles.
// Defining a name twice replaces the earlier sheet for sprites added later.
func (s *Stage) DefineSpritesheet(name string, img *ebiten.Image, tileW, tileH int) error {
	sheet, err := newSpritesheet(name, img, tileW, tileH)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sheets[name] = sheet
	s.mu.Unlock()
	return nil
}

// DefineGeneratedSpritesheet registers a single-tile sheet whose pixels come
// from fn. fn must return exactly tileW*tileH*4 bytes of premultiplied
// RGBA data.
func (s *Stage) DefineGeneratedSpritesheet(name string, fn func() []byte, tileW, tileH int) error {
	if tileW <= 0 || tileH <= 0 {
		return fmt.Errorf("gemfall: spritesheet %q: invalid tile size %dx%d", name, tileW, tileH)
	}
	pix := fn()
	if want := tileW * tileH * 4; len(pix) != want {
		return fmt.Errorf("gemfall: spritesheet %q: generator returned %d bytes, want %d", name, len(pix), want)
	}
	img := ebiten.NewImage(tileW, tileH)
	img.WritePixels(pix)
	return s.DefineSpritesheet(name, img, tileW, tileH)
}

// LoadSpritesheetFile loads an image file and registers it as a sheet.
func (s *Stage) LoadSpritesheetFile(name, path string, tileW, tileH int) error {
	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		return fmt.Errorf("gemfall: load spritesheet %q: %w", name, err)
	}
	return s.DefineSpritesheet(name, img, tileW, tileH)
}

// Spritesheet returns the sheet registered under name.
func (s *Stage) Spritesheet(name string) (*Spritesheet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sheet, ok := s.sheets[name]
	return sheet, ok
}

var (
	magentaOnce sync.Once
	magentaImg  *ebiten.Image

	whiteOnce sync.Once
	whiteImg  *ebiten.Image
)

// magentaImage is the placeholder drawn for missing sheets and frames.
func magentaImage() *ebiten.Image {
	magentaOnce.Do(func() {
		magentaImg = ebiten.NewImage(1, 1)
		magentaImg.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
	})
	return magentaImg
}

// whitePixel is a 1x1 white image scaled and tinted to draw solid sprites.
func whitePixel() *ebiten.Image {
	whiteOnce.Do(func() {
		whiteImg = ebiten.NewImage(1, 1)
		whiteImg.Fill(ColorWhite.toRGBA())
	})
	return whiteImg
}
