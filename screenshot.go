package gemfall

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// DefaultScreenshotDir is where captures go when Stage.ScreenshotDir is empty.
const DefaultScreenshotDir = "screenshots"

// Screenshot asks for the next drawn frame to be saved as a PNG named after
// label. Several labels queued before a Draw share one capture.
func (s *Stage) Screenshot(label string) {
	s.mu.Lock()
	s.shots = append(s.shots, label)
	s.mu.Unlock()
}

// flushScreenshotsLocked writes the queued captures of screen. Errors are
// reported on stderr; a failed capture is not retried.
func (s *Stage) flushScreenshotsLocked(screen *ebiten.Image) {
	if len(s.shots) == 0 {
		return
	}
	labels := s.shots
	s.shots = nil

	b := screen.Bounds()
	pix := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pix)
	img := unpremultiply(pix, b.Dx(), b.Dy())

	dir := s.ScreenshotDir
	if dir == "" {
		dir = DefaultScreenshotDir
	}
	if err := saveCaptures(dir, time.Now(), labels, img); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "[gemfall] screenshot: %v\n", err)
	}
}

// unpremultiply converts ebiten's premultiplied pixels to straight alpha.
func unpremultiply(pix []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pix)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := int(img.Pix[i+3])
		if a == 0 || a == 255 {
			continue
		}
		for c := 0; c < 3; c++ {
			img.Pix[i+c] = uint8(min(int(img.Pix[i+c])*255/a, 255))
		}
	}
	return img
}

// saveCaptures writes img once per label into dir, creating dir if needed.
func saveCaptures(dir string, at time.Time, labels []string, img image.Image) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	stamp := at.Format("20060102_150405")
	var errs []error
	for _, label := range labels {
		path := filepath.Join(dir, captureName(stamp, label))
		if err := writePNG(path, img); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func captureName(stamp, label string) string {
	return stamp + "_" + sanitizeLabel(label) + ".png"
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps letters, digits, '-' and '.', replacing everything
// else with '_'. Blank labels become "frame".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "frame"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
