package gemfall

// SpriteDef describes a sprite to add to a Stage. When Sheet is empty the
// sprite is a solid Width x Height rectangle tinted with Color.
type SpriteDef struct {
	Sheet  string
	Frame  int
	X, Y   float64
	Layer  int
	Width  float64
	Height float64
	Color  Color
}

// Sprite is a stage object. A single flat struct serves both textured and
// solid sprites.
type Sprite struct {
	id Handle

	X, Y  float64
	Layer int
	Frame int
	Scale float64 // around the sprite center
	Alpha float64
	Color Color

	sheet  *Spritesheet // nil for solid rectangles
	width  float64
	height float64

	removed bool
}

// SpriteState is a snapshot of a sprite's attributes.
type SpriteState struct {
	X, Y          float64
	Layer         int
	Frame         int
	Scale         float64
	Alpha         float64
	Color         Color
	Width, Height float64
	Sheet         string
}

func newSprite(id Handle, def SpriteDef, sheet *Spritesheet) *Sprite {
	sp := &Sprite{
		id:     id,
		X:      def.X,
		Y:      def.Y,
		Layer:  def.Layer,
		Frame:  def.Frame,
		Scale:  1,
		Alpha:  1,
		Color:  def.Color,
		sheet:  sheet,
		width:  def.Width,
		height: def.Height,
	}
	if sp.Color == (Color{}) {
		sp.Color = ColorWhite
	}
	if sheet != nil {
		sp.width = float64(sheet.TileW)
		sp.height = float64(sheet.TileH)
	}
	return sp
}

// ID returns the sprite's handle.
func (sp *Sprite) ID() Handle {
	return sp.id
}

// apply copies the masked attributes of a onto the sprite. The layer is
// handled by the Stage since it moves the sprite between lists.
func (sp *Sprite) apply(a Attrs) {
	if a.Has(AttrX) {
		sp.X = a.X
	}
	if a.Has(AttrY) {
		sp.Y = a.Y
	}
	if a.Has(AttrFrame) {
		sp.Frame = a.Frame
	}
	if a.Has(AttrScale) {
		sp.Scale = a.Scale
	}
	if a.Has(AttrAlpha) {
		sp.Alpha = a.Alpha
	}
	if a.Has(AttrColor) {
		sp.Color = a.Color
	}
}

func (sp *Sprite) state() SpriteState {
	st := SpriteState{
		X:      sp.X,
		Y:      sp.Y,
		Layer:  sp.Layer,
		Frame:  sp.Frame,
		Scale:  sp.Scale,
		Alpha:  sp.Alpha,
		Color:  sp.Color,
		Width:  sp.width,
		Height: sp.height,
	}
	if sp.sheet != nil {
		st.Sheet = sp.sheet.Name
	}
	return st
}
