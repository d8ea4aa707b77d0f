package state

import (
	"slices"
	"time"
)

//Form is a pure transformation applied to every primitive during a cycle
//it maps a primitive to zero or more successors and must return nothing
//for alternatives it does not understand
type Form func(s State, p Primitive) []Primitive

//Handlers is a partial handler over the Primitive alternatives
//a nil handler means "no output" for that alternative
type Handlers struct {
	Area  func(s State, a AreaRequest) []Primitive
	Pixel func(s State, p PixelResult) []Primitive
}

//Form adapts the handlers into a generic Form by dispatching on the active alternative
func (h Handlers) Form() Form {
	return func(s State, p Primitive) []Primitive {
		if p == nil {
			return nil
		}
		return p.dispatch(s, h)
	}
}

//Typed adapts a function written against a single primitive alternative into a Form
//other alternatives produce no output
func Typed[T Primitive](fn func(s State, p T) []Primitive) Form {
	return func(s State, p Primitive) []Primitive {
		v, ok := p.(T)
		if !ok {
			return nil
		}
		return fn(s, v)
	}
}

//CycleStats describes the cycle which produced a State
type CycleStats struct {
	FormsApplied  int           //count of forms applied
	PrimitivesIn  int           //primitives of the previous generation
	PrimitivesOut int           //primitives of this generation
	Inserts       int           //outputs placed by binary-search insertion
	Merges        int           //batches merged with the two-way merge
	SortedBatches int           //batches which needed sorting before the merge
	Duration      time.Duration //wall time of the cycle
}

//DefMergeThreshold is the default output batch size starting the batch merge
const DefMergeThreshold = 16

//Option configures a State created by New
type Option func(s *State)

//WithMergeThreshold sets the output batch size starting the batch merge
//values below 1 are ignored
func WithMergeThreshold(n int) Option {
	return func(s *State) {
		if n >= 1 {
			s.threshold = n
		}
	}
}

//WithPool sets the buffer pool used by Cycle
func WithPool(p *Pool) Option {
	return func(s *State) {
		s.pool = p
	}
}

//State is an immutable snapshot of the primitive collection and the registered forms
//all methods return a new State, the receiver is never modified
//the zero State is empty and ready to use
type State struct {
	primitives []Primitive
	forms      []Form
	generation int
	stats      CycleStats
	threshold  int
	pool       *Pool
}

//New creates an empty State
func New(opts ...Option) State {
	s := State{}
	for _, o := range opts {
		o(&s)
	}
	return s
}

//Put returns a new State with p appended to the primitives, the primitives are not re-sorted
//a nil primitive is dropped
func (s State) Put(p Primitive) State {
	if p == nil {
		return s
	}
	s.primitives = append(slices.Clip(s.primitives), p)
	return s
}

//FormAny returns a new State with f appended to the forms
//f must be referentially transparent
func (s State) FormAny(f Form) State {
	if f == nil {
		return s
	}
	s.forms = append(slices.Clip(s.forms), f)
	return s
}

//Form returns a new State with the typed handlers registered as a form
func (s State) Form(h Handlers) State {
	return s.FormAny(h.Form())
}

//FragmentAt returns the color of the pixel result at position c
//the zero Color is returned if there is no exact match
func (s State) FragmentAt(c Coord) Color {
	i, found := slices.BinarySearchFunc(s.primitives, c, comparePosition)
	if !found {
		return Color{}
	}
	return s.primitives[i].(PixelResult).Color
}

//comparePosition compares a primitive with the search key PixelResult{Position: c}
//ignoring the color, so the search lands on the lowest-sorted pixel at c
//whatever the channel values are
func comparePosition(p Primitive, c Coord) int {
	r, ok := p.(PixelResult)
	if !ok {
		return Compare(p, PixelResult{Position: c})
	}
	return r.Position.Compare(c)
}

//FragmentAtIndex returns the color of the primitive at index i
//the zero Color is returned if i is out of bounds or the primitive is not a pixel result
func (s State) FragmentAtIndex(i int) Color {
	if i < 0 || i >= len(s.primitives) {
		return Color{}
	}
	if p, ok := s.primitives[i].(PixelResult); ok {
		return p.Color
	}
	return Color{}
}

//Len returns the count of primitives
func (s State) Len() int {
	return len(s.primitives)
}

//At returns the primitive at index i
func (s State) At(i int) (Primitive, bool) {
	if i < 0 || i >= len(s.primitives) {
		return nil, false
	}
	return s.primitives[i], true
}

//Primitives returns a copy of the primitives
func (s State) Primitives() []Primitive {
	return slices.Clone(s.primitives)
}

//FormCount returns the count of registered forms
func (s State) FormCount() int {
	return len(s.forms)
}

//Generation returns the count of cycles which led to this State
func (s State) Generation() int {
	return s.generation
}

//Stats returns the statistics of the cycle which produced this State
func (s State) Stats() CycleStats {
	return s.stats
}

//Sorted reports whether the primitives are ordered by Compare
//it holds for every State returned by Cycle
func (s State) Sorted() bool {
	return slices.IsSortedFunc(s.primitives, Compare)
}

//MergeThreshold returns the output batch size starting the batch merge
func (s State) MergeThreshold() int {
	if s.threshold < 1 {
		return DefMergeThreshold
	}
	return s.threshold
}

func (s State) bufferPool() *Pool {
	if s.pool == nil {
		return DefaultPool
	}
	return s.pool
}
