// Package gemfall moves scene objects along constant-acceleration paths and
// renders them with [Ebitengine].
//
// The core is [ParticleEngine]. Give it a [Scene], then [ParticleEngine.Add]
// objects with a [Motion]; every tick it computes each position from the time
// elapsed since the object was added, pushes the new coordinates to the
// scene, and removes objects that left the viewport:
//
//	e := gemfall.NewParticleEngine(scene)
//	e.Add(id, 30, 60, gemfall.Motion{
//		Y: gemfall.Move(-100, 1000), // hop up, then fall
//	})
//
// The engine ticks only while it holds particles. It starts with the first
// Add and stops itself once the last particle is gone.
//
// # Positions
//
// Each animated axis follows pos = origin + u*t + a*t²/2, with t in seconds.
// Positions are recomputed from the start time rather than integrated, so a
// late tick never loses distance. An axis left at its zero value is never
// written to the scene.
//
// Objects are removed once they are more than [BoundsMargin] units past the
// left, right or bottom edge. There is no top bound: an object thrown upward
// comes back down.
//
// # Scheduling
//
// By default the engine ticks from its own goroutine through a
// [TickerScheduler]. A game that wants every scene change on its game loop
// passes [WithScheduler] with the [FrameScheduler] of its [Stage]:
//
//	stage := gemfall.NewStage(320, 480)
//	e := gemfall.NewParticleEngine(stage, gemfall.WithScheduler(stage.Scheduler()))
//
// # Stage
//
// [Stage] is a small retained scene: numbered layers of sprites cut from
// sprite sheets, solid rectangles, a text label per layer and scale, alpha
// and position tweens (via [gween]). [Run] opens a window for it:
//
//	if err := gemfall.Run(stage, gemfall.RunConfig{Title: "Gems"}); err != nil {
//		log.Fatal(err)
//	}
//
// Other scenes live in subpackages: termscene draws on a terminal with tcell
// and wsscene streams changes to browsers over a websocket.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package gemfall
