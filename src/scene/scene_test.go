package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cute/src/forms"
	"cute/src/state"
)

const sampleScene = `
width: 8
height: 4
cycles: 2
mergeThreshold: 4
forms:
  - name: solid
    params: {color: white}
  - name: tint
    params: {color: "#808080"}
seeds:
  - {x: 0, y: 0, width: 4, height: 4}
`

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(sampleScene))
	require.NoError(t, err)

	assert.Equal(t, 8, s.Width)
	assert.Equal(t, 4, s.Height)
	assert.Equal(t, 2, s.Cycles)
	assert.Equal(t, 4, s.MergeThreshold)
	require.Len(t, s.Forms, 2)
	assert.Equal(t, forms.Params{"color": "#808080"}, s.Forms[1].Params)
	assert.Equal(t, []state.Primitive{state.AreaRequest{Area: state.Rect{Width: 4, Height: 4}}}, s.SeedPrimitives(8, 4))
}

func TestBuildAndCycle(t *testing.T) {
	s, err := Load(strings.NewReader(sampleScene))
	require.NoError(t, err)

	w, err := s.Build(0, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, w.FormCount())
	assert.Equal(t, 0, w.Len())
	assert.Equal(t, 4, w.MergeThreshold())

	for _, p := range s.SeedPrimitives(s.Width, s.Height) {
		w = w.Put(p)
	}
	for i := 0; i < s.Cycles; i++ {
		w = w.Cycle()
	}
	gray := float32(128) / 255
	assert.Equal(t, state.Color{R: gray, G: gray, B: gray, A: 1}, w.FragmentAt(state.Coord{X: 3, Y: 3}))
	assert.Equal(t, state.Color{}, w.FragmentAt(state.Coord{X: 4, Y: 0}))
}

func TestDefault(t *testing.T) {
	s := Default(3, 2)
	require.NoError(t, s.Validate())
	assert.Equal(t, []state.Primitive{state.AreaRequest{Area: state.Rect{Width: 5, Height: 6}}}, s.SeedPrimitives(5, 6))

	w, err := s.Build(0, forms.DefaultRegistry)
	require.NoError(t, err)
	assert.Equal(t, 1, w.FormCount())
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"empty":         ``,
		"no size":       "forms: [{name: pattern}]",
		"no forms":      "width: 2\nheight: 2",
		"unnamed form":  "width: 2\nheight: 2\nforms: [{params: {a: b}}]",
		"empty seed":    "width: 2\nheight: 2\nforms: [{name: pattern}]\nseeds: [{x: 1}]",
		"bad cycles":    "width: 2\nheight: 2\ncycles: -1\nforms: [{name: pattern}]",
		"bad threshold": "width: 2\nheight: 2\nmergeThreshold: -1\nforms: [{name: pattern}]",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrInvalidScene)
		})
	}

	_, err := Load(strings.NewReader("width: 2\nheight: 2\ncolour: red\nforms: [{name: pattern}]"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidScene)
}

func TestBuildUnknownForm(t *testing.T) {
	s, err := Load(strings.NewReader("width: 2\nheight: 2\nforms: [{name: sparkle}]"))
	require.NoError(t, err)

	_, err = s.Build(0, nil)
	assert.ErrorIs(t, err, forms.ErrUnknownForm)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleScene), 0o600))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8, s.Width)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
