package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cute/src/state"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want state.Color
	}{
		{"#fff", white},
		{"#000000", black},
		{"#ff000080", state.Color{R: 1, A: 128.0 / 255}},
		{" White ", white},
		{"black", black},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
		})
	}

	for _, bad := range []string{"", "#12", "#ggg", "notacolor", "#1234567"} {
		_, err := ParseColor(bad)
		assert.ErrorIs(t, err, ErrBadParam, bad)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry
	assert.Equal(t, []string{"animated", "checker", "gradient", "keep", "pattern", "solid", "tint"}, r.Names())

	_, err := r.Build("nope", nil, Env{})
	assert.ErrorIs(t, err, ErrUnknownForm)

	_, err = r.Build("checker", Params{"size": "big"}, Env{})
	assert.ErrorIs(t, err, ErrBadParam)

	_, err = r.Build("animated", Params{"speed": "fast"}, Env{})
	assert.ErrorIs(t, err, ErrBadParam)

	_, err = r.Build("solid", Params{"color": "#zz"}, Env{})
	assert.ErrorIs(t, err, ErrBadParam)

	f, err := r.Build("solid", Params{"color": "red"}, Env{})
	require.NoError(t, err)
	s := render(f, state.Rect{Width: 1, Height: 1})
	assert.Equal(t, state.Color{R: 1, A: 1}, s.FragmentAt(state.Coord{}))

	f, err = r.Build("animated", Params{"speed": "1ms"}, Env{Elapsed: 3 * time.Millisecond})
	require.NoError(t, err)
	s = render(f, state.Rect{Width: 1, Height: 1})
	assert.Equal(t, state.Color{R: 3.0 / 255, G: 3.0 / 255, B: 6.0 / 255, A: 1}, s.FragmentAt(state.Coord{}))

	for _, name := range r.Names() {
		_, err := r.Build(name, nil, Env{})
		assert.NoError(t, err, name)
	}
}

func TestRegisterIgnoresInvalid(t *testing.T) {
	r := NewRegistry()
	r.Register("", func(Params, Env) (state.Form, error) { return Keep(), nil })
	r.Register("nil", nil)
	assert.Empty(t, r.Names())
}
