package gemfall

// Axis is the motion along one axis: an initial velocity U and a constant
// acceleration A, both in units per second. The zero value is an axis that
// is not animated; build animated axes with Move.
type Axis struct {
	U, A     float64
	animated bool
}

// Move returns an animated axis with initial velocity u and acceleration a.
// Use Move(u, 0) for constant velocity and Move(0, a) for a pure fall.
func Move(u, a float64) Axis {
	return Axis{U: u, A: a, animated: true}
}

// Animated reports whether the axis carries motion.
func (ax Axis) Animated() bool {
	return ax.animated
}

// At returns the position at t seconds for an object that was at origin
// when t was 0.
func (ax Axis) At(origin, t float64) float64 {
	return origin + ax.U*t + ax.A*t*t/2
}

// Motion holds the per-axis kinematics of a particle.
type Motion struct {
	X, Y Axis
}

// Moves reports whether at least one axis is animated.
func (m Motion) Moves() bool {
	return m.X.animated || m.Y.animated
}
