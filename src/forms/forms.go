// Package forms is a catalogue of ready-made forms.
//
// Area forms expand every state.AreaRequest into one state.PixelResult per
// cell, emitted in scan order, so an index query over the cycled state
// follows the row-major layout of the requested area. Pixel forms map
// resolved pixels of the previous generation and are used by scenes
// running more than one cycle per frame.
package forms

import (
	"time"

	"cute/src/state"
)

// Shader computes the color of a single cell.
type Shader func(c state.Coord) state.Color

// Expand returns a form emitting one pixel per cell of every area request.
// Empty areas produce nothing; other alternatives are ignored.
func Expand(sh Shader) state.Form {
	return state.Typed(func(_ state.State, a state.AreaRequest) []state.Primitive {
		r := a.Area
		if r.Empty() {
			return nil
		}
		out := make([]state.Primitive, 0, r.Area())
		for y := r.Y; y < r.Y+r.Height; y++ {
			for x := r.X; x < r.X+r.Width; x++ {
				c := state.Coord{X: x, Y: y}
				out = append(out, state.PixelResult{Position: c, Color: sh(c)})
			}
		}
		return out
	})
}

func channel(v int) float32 {
	return float32(v&255) / 255
}

// Pattern is the classic coordinate pattern: red follows the column, green
// the row and blue their sum, every channel wrapping at 256.
func Pattern() state.Form {
	return Expand(patternAt(0))
}

func patternAt(shift int) Shader {
	return func(c state.Coord) state.Color {
		x, y := c.X+shift, c.Y+shift
		return state.Color{R: channel(x), G: channel(y), B: channel(x + y), A: 1}
	}
}

// Animated is Pattern scrolling diagonally by one cell every speed.
func Animated(elapsed time.Duration, speed time.Duration) state.Form {
	shift := 0
	if speed > 0 {
		shift = int(elapsed / speed)
	}
	return Expand(patternAt(shift))
}

// Solid fills every requested cell with c.
func Solid(c state.Color) state.Form {
	return Expand(func(state.Coord) state.Color { return c })
}

// Named is Solid with a color given by name or hex notation, see ParseColor.
func Named(name string) (state.Form, error) {
	c, err := ParseColor(name)
	if err != nil {
		return nil, err
	}
	return Solid(c), nil
}

// Gradient interpolates linearly from `from` at the left edge of the area
// to `to` at its right edge.
func Gradient(from, to state.Color) state.Form {
	return state.Typed(func(s state.State, a state.AreaRequest) []state.Primitive {
		r := a.Area
		span := float32(max(r.Width-1, 1))
		return Expand(func(c state.Coord) state.Color {
			return Lerp(from, to, float32(c.X-r.X)/span)
		})(s, a)
	})
}

// Checker alternates a and b in squares of size cells.
func Checker(size int, a, b state.Color) state.Form {
	size = max(size, 1)
	return Expand(func(c state.Coord) state.Color {
		if (floorDiv(c.X, size)+floorDiv(c.Y, size))%2 == 0 {
			return a
		}
		return b
	})
}

// Tint multiplies every resolved pixel channel by c.
func Tint(c state.Color) state.Form {
	return state.Typed(func(_ state.State, p state.PixelResult) []state.Primitive {
		p.Color = state.Color{
			R: p.Color.R * c.R,
			G: p.Color.G * c.G,
			B: p.Color.B * c.B,
			A: p.Color.A * c.A,
		}
		return []state.Primitive{p}
	})
}

// Keep passes every primitive of the previous generation through unchanged.
func Keep() state.Form {
	return func(_ state.State, p state.Primitive) []state.Primitive {
		return []state.Primitive{p}
	}
}

// Lerp interpolates between two colors, t is clamped to [0,1].
func Lerp(from, to state.Color, t float32) state.Color {
	t = min(max(t, 0), 1)
	return state.Color{
		R: from.R + (to.R-from.R)*t,
		G: from.G + (to.G-from.G)*t,
		B: from.B + (to.B-from.B)*t,
		A: from.A + (to.A-from.A)*t,
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
