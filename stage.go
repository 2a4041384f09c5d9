package gemfall

import (
	"slices"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// layer is an ordered list of sprites drawn together, optionally offset and
// topped with a text label.
type layer struct {
	sprites          []*Sprite
	offsetX, offsetY float64
	label            *label
}

// Stage is a retained 2D scene of layered sprites rendered with ebiten. It
// implements Scene, so a ParticleEngine can move its sprites.
//
// Stage methods are safe for concurrent use; a ParticleEngine on a
// TickerScheduler pushes changes from its own goroutine.
type Stage struct {
	// ClearColor fills the screen before layers are drawn. A zero value
	// leaves the screen as ebiten provides it.
	ClearColor Color

	// ScreenshotDir receives captures queued with Screenshot. Empty uses
	// DefaultScreenshotDir.
	ScreenshotDir string

	mu      sync.Mutex
	width   int
	height  int
	layers  []*layer
	sheets  map[string]*Spritesheet
	sprites map[Handle]*Sprite
	nextID  Handle
	tweens  []*TweenGroup
	debug   bool

	sched      *FrameScheduler
	updateFunc func() error
	stats      frameStats
	shots      []string
}

// NewStage creates a stage with a single layer and the given logical size.
func NewStage(width, height int) *Stage {
	return &Stage{
		width:   width,
		height:  height,
		layers:  []*layer{{}},
		sheets:  make(map[string]*Spritesheet),
		sprites: make(map[Handle]*Sprite),
		sched:   NewFrameScheduler(SystemClock{}),
	}
}

// Scheduler returns the stage's frame scheduler. Callbacks registered on it
// run from Update on the game loop goroutine.
func (s *Stage) Scheduler() *FrameScheduler {
	return s.sched
}

// SetUpdateFunc sets a callback run once per Update after scheduled timers.
func (s *Stage) SetUpdateFunc(fn func() error) {
	s.mu.Lock()
	s.updateFunc = fn
	s.mu.Unlock()
}

// SetDebugMode enables or disables debug mode. When enabled, missing frames
// are logged and per-frame stats are printed to stderr.
func (s *Stage) SetDebugMode(enabled bool) {
	s.mu.Lock()
	s.debug = enabled
	s.mu.Unlock()
}

// SetLayers sets the number of layers. Sprites on layers beyond n are
// moved to the last layer.
func (s *Stage) SetLayers(n int) {
	if n < 1 {
		n = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.layers) < n {
		s.layers = append(s.layers, &layer{})
	}
	if len(s.layers) > n {
		last := s.layers[n-1]
		for _, l := range s.layers[n:] {
			for _, sp := range l.sprites {
				sp.Layer = n - 1
				last.sprites = append(last.sprites, sp)
			}
		}
		clear(s.layers[n:])
		s.layers = s.layers[:n]
	}
}

// NumLayers returns the number of layers.
func (s *Stage) NumLayers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.layers)
}

// Translate offsets every sprite and the label of a layer.
func (s *Stage) Translate(layerIndex int, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.layer(layerIndex)
	l.offsetX, l.offsetY = x, y
}

// Add creates a sprite and returns its handle. A sheet name that is not
// defined yields a magenta placeholder sprite.
func (s *Stage) Add(def SpriteDef) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sheet *Spritesheet
	if def.Sheet != "" {
		var ok bool
		if sheet, ok = s.sheets[def.Sheet]; !ok {
			sheet = &Spritesheet{Name: def.Sheet, TileW: 1, TileH: 1}
		}
	}
	s.nextID++
	sp := newSprite(s.nextID, def, sheet)
	sp.Layer = s.clampLayer(def.Layer)
	l := s.layers[sp.Layer]
	l.sprites = append(l.sprites, sp)
	s.sprites[sp.id] = sp
	if s.debug {
		debugCheckSpriteCount(len(s.sprites))
	}
	return sp.id
}

// Dimensions reports the stage's logical size.
func (s *Stage) Dimensions() (width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.width), float64(s.height)
}

// Resize changes the logical size reported by Dimensions and used by Run's
// layout.
func (s *Stage) Resize(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
}

// Change applies the masked attributes to sprite id. Unknown handles are
// ignored. Changing the layer moves the sprite on top of its new layer.
func (s *Stage) Change(id Handle, a Attrs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.sprites[id]
	if !ok {
		return
	}
	sp.apply(a)
	if a.Has(AttrLayer) {
		to := s.clampLayer(a.Layer)
		if to != sp.Layer {
			s.detach(sp)
			sp.Layer = to
			s.layers[to].sprites = append(s.layers[to].sprites, sp)
		}
	}
}

// Remove deletes sprite id. Unknown handles are ignored.
func (s *Stage) Remove(id Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.sprites[id]
	if !ok {
		return
	}
	s.detach(sp)
	delete(s.sprites, id)
	sp.removed = true
}

// Sprite returns a snapshot of sprite id.
func (s *Stage) Sprite(id Handle) (SpriteState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.sprites[id]
	if !ok {
		return SpriteState{}, false
	}
	return sp.state(), true
}

// Len returns the number of sprites on the stage.
func (s *Stage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sprites)
}

// LayerHandles returns the handles on a layer in draw order.
func (s *Stage) LayerHandles(layerIndex int) []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if layerIndex < 0 || layerIndex >= len(s.layers) {
		return nil
	}
	ids := make([]Handle, len(s.layers[layerIndex].sprites))
	for i, sp := range s.layers[layerIndex].sprites {
		ids[i] = sp.id
	}
	return ids
}

// Update runs due timers, the update callback and active tweens. Call it
// once per frame; Run does so.
func (s *Stage) Update() error {
	t0 := time.Now()

	// Timers and the update callback call back into the stage, so they run
	// without the lock held.
	s.sched.Update()

	s.mu.Lock()
	fn := s.updateFunc
	s.mu.Unlock()
	if fn != nil {
		if err := fn(); err != nil {
			return err
		}
	}

	s.updateTweens(float32(1.0 / float64(ebiten.TPS())))

	s.mu.Lock()
	s.stats.updateTime = time.Since(t0)
	s.mu.Unlock()
	return nil
}

// clampLayer maps an out-of-range layer index onto the nearest layer.
func (s *Stage) clampLayer(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(s.layers) {
		return len(s.layers) - 1
	}
	return i
}

func (s *Stage) layer(i int) *layer {
	return s.layers[s.clampLayer(i)]
}

// detach removes sp from its layer's list, keeping draw order.
func (s *Stage) detach(sp *Sprite) {
	l := s.layers[sp.Layer]
	if i := slices.Index(l.sprites, sp); i >= 0 {
		l.sprites = slices.Delete(l.sprites, i, i+1)
	}
}
