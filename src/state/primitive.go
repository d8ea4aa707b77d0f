package state

import "cmp"

//Color is a four channel color, every channel is a normalized intensity in [0,1]
//the zero Color means "no color"
type Color struct {
	R float32
	G float32
	B float32
	A float32
}

//Compare orders colors channel by channel (R, G, B, A)
func (c Color) Compare(o Color) int {
	if r := cmp.Compare(c.R, o.R); r != 0 {
		return r
	}
	if r := cmp.Compare(c.G, o.G); r != 0 {
		return r
	}
	if r := cmp.Compare(c.B, o.B); r != 0 {
		return r
	}
	return cmp.Compare(c.A, o.A)
}

//Coord is a position on the screen
type Coord struct {
	X int
	Y int
}

//Compare implements the row-major order: the row decides first, then the column
func (c Coord) Compare(o Coord) int {
	if c.Y != o.Y {
		return cmp.Compare(c.Y, o.Y)
	}
	return cmp.Compare(c.X, o.X)
}

//Rect is an area with origin X, Y
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

//Compare orders rectangles by field order
func (r Rect) Compare(o Rect) int {
	if c := cmp.Compare(r.X, o.X); c != 0 {
		return c
	}
	if c := cmp.Compare(r.Y, o.Y); c != 0 {
		return c
	}
	if c := cmp.Compare(r.Width, o.Width); c != 0 {
		return c
	}
	return cmp.Compare(r.Height, o.Height)
}

//Empty reports whether the rectangle covers no cells
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

//Area returns the count of cells covered by the rectangle
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

//Contains reports whether c is inside the rectangle
func (r Rect) Contains(c Coord) bool {
	return c.X >= r.X && c.X < r.X+r.Width && c.Y >= r.Y && c.Y < r.Y+r.Height
}

//Tag identifies the Primitive alternative, the tag is the first sort key
type Tag int

const (
	TagAreaRequest Tag = iota
	TagPixelResult
)

//Primitive is one record of the State's collection
//the set of alternatives is closed: AreaRequest and PixelResult
type Primitive interface {
	Tag() Tag
	dispatch(s State, h Handlers) []Primitive
}

//AreaRequest declares a region to be expanded by forms
type AreaRequest struct {
	Area Rect
}

//PixelResult is a fully resolved pixel
type PixelResult struct {
	Position Coord
	Color    Color
}

func (AreaRequest) Tag() Tag { return TagAreaRequest }
func (PixelResult) Tag() Tag { return TagPixelResult }

func (a AreaRequest) dispatch(s State, h Handlers) []Primitive {
	if h.Area == nil {
		return nil
	}
	return h.Area(s, a)
}

func (p PixelResult) dispatch(s State, h Handlers) []Primitive {
	if h.Pixel == nil {
		return nil
	}
	return h.Pixel(s, p)
}

//Compare is the composite order of primitives:
//the tag first (all area requests go before all pixel results), then the position
//in row-major order, then the color to break ties
func Compare(a, b Primitive) int {
	if c := cmp.Compare(a.Tag(), b.Tag()); c != 0 {
		return c
	}
	switch x := a.(type) {
	case AreaRequest:
		return x.Area.Compare(b.(AreaRequest).Area)
	case PixelResult:
		y := b.(PixelResult)
		if c := x.Position.Compare(y.Position); c != 0 {
			return c
		}
		return x.Color.Compare(y.Color)
	}
	return 0
}

//Less reports whether a orders before b
func Less(a, b Primitive) bool {
	return Compare(a, b) < 0
}
