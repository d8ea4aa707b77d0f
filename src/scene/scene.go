// Package scene loads scene descriptions from YAML.
//
// A scene names the frame size, the forms to register (in evaluation
// order), the count of cycles to run per frame and optionally the area
// requests seeding every frame.
//
//	width: 64
//	height: 32
//	cycles: 2
//	forms:
//	  - name: pattern
//	  - name: tint
//	    params: {color: "#ff8080"}
//	seeds:
//	  - {x: 0, y: 0, width: 64, height: 32}
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"cute/src/forms"
	"cute/src/state"
)

// ErrInvalidScene is returned when a scene fails validation.
var ErrInvalidScene = errors.New("invalid scene")

// FormSpec names a registered form and its parameters.
type FormSpec struct {
	Name   string       `yaml:"name"`
	Params forms.Params `yaml:"params,omitempty"`
}

// Seed is an area request seeding every frame.
type Seed struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Scene is the decoded scene file.
type Scene struct {
	Width          int        `yaml:"width"`
	Height         int        `yaml:"height"`
	Cycles         int        `yaml:"cycles,omitempty"`
	MergeThreshold int        `yaml:"mergeThreshold,omitempty"`
	Forms          []FormSpec `yaml:"forms"`
	Seeds          []Seed     `yaml:"seeds,omitempty"`
}

// Default is the demo scene: the coordinate pattern over
// a single full-frame area request.
func Default(width, height int) *Scene {
	return &Scene{
		Width:  width,
		Height: height,
		Cycles: 1,
		Forms:  []FormSpec{{Name: "pattern"}},
	}
}

// Load decodes and validates a scene. Unknown keys are rejected.
func Load(r io.Reader) (*Scene, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Scene
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document: %w", ErrInvalidScene)
		}
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if s.Cycles == 0 {
		s.Cycles = 1
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads a scene from path.
func LoadFile(path string) (*Scene, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	s, err := Load(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks the scene dimensions and form list. Form names are
// checked against the registry by Build.
func (s *Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("size %dx%d: %w", s.Width, s.Height, ErrInvalidScene)
	}
	if s.Cycles < 1 {
		return fmt.Errorf("cycles %d: %w", s.Cycles, ErrInvalidScene)
	}
	if s.MergeThreshold < 0 {
		return fmt.Errorf("mergeThreshold %d: %w", s.MergeThreshold, ErrInvalidScene)
	}
	if len(s.Forms) == 0 {
		return fmt.Errorf("no forms: %w", ErrInvalidScene)
	}
	for i, f := range s.Forms {
		if f.Name == "" {
			return fmt.Errorf("form #%d has no name: %w", i, ErrInvalidScene)
		}
	}
	for i, sd := range s.Seeds {
		if sd.Width <= 0 || sd.Height <= 0 {
			return fmt.Errorf("seed #%d is empty: %w", i, ErrInvalidScene)
		}
	}
	return nil
}

// Build returns the world state: the scene forms registered in order,
// built for the given elapsed time, with no primitives.
func (s *Scene) Build(elapsed time.Duration, reg *forms.Registry) (state.State, error) {
	if reg == nil {
		reg = forms.DefaultRegistry
	}
	var opts []state.Option
	if s.MergeThreshold > 0 {
		opts = append(opts, state.WithMergeThreshold(s.MergeThreshold))
	}
	w := state.New(opts...)
	env := forms.Env{Elapsed: elapsed}
	for _, spec := range s.Forms {
		f, err := reg.Build(spec.Name, spec.Params, env)
		if err != nil {
			return state.State{}, err
		}
		w = w.FormAny(f)
	}
	return w, nil
}

// SeedPrimitives returns the area requests seeding a frame of the given
// size: the scene seeds, or one request covering the whole frame.
func (s *Scene) SeedPrimitives(width, height int) []state.Primitive {
	if len(s.Seeds) == 0 {
		return []state.Primitive{state.AreaRequest{Area: state.Rect{Width: width, Height: height}}}
	}
	out := make([]state.Primitive, 0, len(s.Seeds))
	for _, sd := range s.Seeds {
		out = append(out, state.AreaRequest{Area: state.Rect{X: sd.X, Y: sd.Y, Width: sd.Width, Height: sd.Height}})
	}
	return out
}
