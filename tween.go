package gemfall

import (
	"slices"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 2 float64 fields on a Sprite simultaneously.
// Groups returned by Stage methods are advanced by Stage.Update. If the
// sprite is removed the group stops immediately.
type TweenGroup struct {
	tweens [2]*gween.Tween
	count  int
	fields [2]*float64
	target *Sprite
	Done   bool

	// OnDone runs once when the group finishes, not when it is cut short by
	// the sprite's removal.
	OnDone func()
}

// Update advances all tweens by dt seconds and writes values to the target
// fields.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.removed {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	if g.Done && g.OnDone != nil {
		g.OnDone()
	}
}

// newScaleTween animates sp.Scale to the target value.
func newScaleTween(sp *Sprite, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: sp}
	g.tweens[0] = gween.New(float32(sp.Scale), float32(to), duration, fn)
	g.fields[0] = &sp.Scale
	return g
}

// newAlphaTween animates sp.Alpha to the target value.
func newAlphaTween(sp *Sprite, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 1, target: sp}
	g.tweens[0] = gween.New(float32(sp.Alpha), float32(to), duration, fn)
	g.fields[0] = &sp.Alpha
	return g
}

// newPositionTween animates sp.X and sp.Y to the target coordinates.
func newPositionTween(sp *Sprite, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 2, target: sp}
	g.tweens[0] = gween.New(float32(sp.X), float32(toX), duration, fn)
	g.tweens[1] = gween.New(float32(sp.Y), float32(toY), duration, fn)
	g.fields[0] = &sp.X
	g.fields[1] = &sp.Y
	return g
}

// TweenScale animates the scale of sprite id to the target value over
// duration seconds. Returns nil if id is unknown.
func (s *Stage) TweenScale(id Handle, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return s.addTween(id, func(sp *Sprite) *TweenGroup {
		return newScaleTween(sp, to, duration, fn)
	})
}

// TweenAlpha animates the alpha of sprite id. Returns nil if id is unknown.
func (s *Stage) TweenAlpha(id Handle, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return s.addTween(id, func(sp *Sprite) *TweenGroup {
		return newAlphaTween(sp, to, duration, fn)
	})
}

// TweenPosition animates sprite id to (toX, toY). A ParticleEngine moving the
// same sprite overwrites the tweened values on its next tick.
func (s *Stage) TweenPosition(id Handle, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return s.addTween(id, func(sp *Sprite) *TweenGroup {
		return newPositionTween(sp, toX, toY, duration, fn)
	})
}

// Pulse scales sprite id up to peak and back to 1 over duration seconds.
func (s *Stage) Pulse(id Handle, peak float64, duration float32) *TweenGroup {
	half := duration / 2
	// OnDone is set before the group is visible to updateTweens.
	return s.addTween(id, func(sp *Sprite) *TweenGroup {
		up := newScaleTween(sp, peak, half, ease.OutQuad)
		up.OnDone = func() {
			s.TweenScale(id, 1, half, ease.InQuad)
		}
		return up
	})
}

// NumTweens returns the number of active stage tweens.
func (s *Stage) NumTweens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tweens)
}

func (s *Stage) addTween(id Handle, mk func(*Sprite) *TweenGroup) *TweenGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.sprites[id]
	if !ok {
		return nil
	}
	g := mk(sp)
	s.tweens = append(s.tweens, g)
	return g
}

// updateTweens advances stage tweens. OnDone callbacks run after the lock is
// released so they may start new tweens.
func (s *Stage) updateTweens(dt float32) {
	s.mu.Lock()
	var callbacks []func()
	for _, g := range s.tweens {
		onDone := g.OnDone
		g.OnDone = nil
		g.Update(dt)
		switch {
		case !g.Done:
			g.OnDone = onDone
		case onDone != nil && !g.target.removed:
			callbacks = append(callbacks, onDone)
		}
	}
	s.tweens = slices.DeleteFunc(s.tweens, func(g *TweenGroup) bool { return g.Done })
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}
