package gemfall

import "testing"

func TestAxisZeroValueIsStill(t *testing.T) {
	var ax Axis
	if ax.Animated() {
		t.Error("zero Axis should not be animated")
	}
	if (Motion{}).Moves() {
		t.Error("empty Motion should not move")
	}
}

func TestAxisAt(t *testing.T) {
	ax := Move(-100, 1000)
	assertNear(t, "At(0)", ax.At(0, 0), 0)
	assertNear(t, "At(0.1)", ax.At(0, 0.1), -5)
	assertNear(t, "At(0.9)", ax.At(0, 0.9), 315)
	assertNear(t, "At(1)", ax.At(0, 1), 400)

	// Velocity only and acceleration only.
	assertNear(t, "velocity", Move(3, 0).At(10, 2), 16)
	assertNear(t, "acceleration", Move(0, 4).At(10, 2), 18)
}

func TestMotionMoves(t *testing.T) {
	if !(Motion{X: Move(0, 0)}).Moves() {
		t.Error("an animated axis with zero values still moves")
	}
	if !(Motion{Y: Move(1, 0)}).Moves() {
		t.Error("y motion should move")
	}
}

func TestAttrsHas(t *testing.T) {
	a := Position(1, 2)
	if !a.Has(AttrX) || !a.Has(AttrY) || !a.Has(AttrX|AttrY) {
		t.Errorf("Position mask = %b", a.Mask)
	}
	if a.Has(AttrLayer) {
		t.Error("Position should not set layer")
	}
	if l := OnLayer(2); !l.Has(AttrLayer) || l.Layer != 2 {
		t.Errorf("OnLayer = %+v", l)
	}
}
