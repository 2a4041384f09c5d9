package gemfall

// Handle identifies an object owned by a Scene. The particle engine never
// interprets it; it only hands it back to the Scene.
type Handle uint32

// Scene is the rendering collaborator the particle engine drives.
// Implementations must tolerate calls from the engine's tick goroutine.
type Scene interface {
	// Dimensions reports the current viewport size.
	Dimensions() (width, height float64)
	// Change applies the masked attributes in a to the object id.
	Change(id Handle, a Attrs)
	// Remove deletes the object id. Unknown handles are ignored.
	Remove(id Handle)
}

// Attr is a bitmask naming the fields of Attrs that carry a value.
type Attr uint16

const (
	AttrX     Attr = 1 << iota // X position
	AttrY                      // Y position
	AttrLayer                  // render layer
	AttrFrame                  // sprite sheet frame
	AttrScale                  // uniform scale
	AttrAlpha                  // opacity
	AttrColor                  // tint
)

// Attrs is a partial attribute record. Fields whose bit is not set in Mask
// are left untouched by Scene.Change.
type Attrs struct {
	Mask  Attr
	X, Y  float64
	Layer int
	Frame int
	Scale float64
	Alpha float64
	Color Color
}

// Has reports whether every bit in f is set.
func (a Attrs) Has(f Attr) bool {
	return a.Mask&f == f
}

// Position returns Attrs setting both X and Y.
func Position(x, y float64) Attrs {
	return Attrs{Mask: AttrX | AttrY, X: x, Y: y}
}

// OnLayer returns Attrs moving an object to layer.
func OnLayer(layer int) Attrs {
	return Attrs{Mask: AttrLayer, Layer: layer}
}
