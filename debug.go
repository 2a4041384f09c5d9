package gemfall

import (
	"fmt"
	"os"
	"time"
)

// tickStats holds per-tick metrics of the particle engine.
// Only populated when the engine is in debug mode.
type tickStats struct {
	elapsed time.Duration
	alive   int
	removed int
}

// logStats writes tick stats through the engine logger.
func (e *ParticleEngine) logStats(stats tickStats) {
	e.logger.Printf("[gemfall] tick: %v | alive: %d | removed: %d",
		stats.elapsed, stats.alive, stats.removed)
}

// frameStats holds per-frame timing and draw metrics of a Stage.
type frameStats struct {
	updateTime time.Duration
	drawTime   time.Duration
	sprites    int
	drawCalls  int
}

// debugLog prints frame stats to stderr.
func (s *Stage) debugLog(stats frameStats) {
	_, _ = fmt.Fprintf(os.Stderr,
		"[gemfall] update: %v | draw: %v | sprites: %d | draw calls: %d\n",
		stats.updateTime, stats.drawTime, stats.sprites, stats.drawCalls)
}

// debugMaxSprites is the sprite count above which a debug Stage warns.
const debugMaxSprites = 5000

func debugCheckSpriteCount(n int) {
	if n == debugMaxSprites+1 {
		_, _ = fmt.Fprintf(os.Stderr, "[gemfall] warning: stage holds more than %d sprites\n",
			debugMaxSprites)
	}
}
