package forms

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/image/colornames"

	"cute/src/state"
)

var (
	//ErrUnknownForm is returned when a form name is not registered
	ErrUnknownForm = errors.New("unknown form")
	//ErrBadParam is returned when a form parameter cannot be parsed
	ErrBadParam = errors.New("bad form parameter")
)

//Params are the textual parameters of a form, as read from a scene file
type Params map[string]string

//Env carries the per-frame values a form may depend on
type Env struct {
	Elapsed time.Duration //time since the start of the animation
}

//Factory builds a form from its parameters
type Factory func(p Params, env Env) (state.Form, error)

//Registry maps form names to factories
type Registry struct {
	factories map[string]Factory
}

//NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

//Register adds the factory under name, empty names and nil factories are ignored
func (r *Registry) Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	r.factories[name] = f
}

//Lookup returns the factory registered under name
func (r *Registry) Lookup(name string) (Factory, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownForm)
	}
	return f, nil
}

//Build looks the factory up and calls it
func (r *Registry) Build(name string, p Params, env Env) (state.Form, error) {
	f, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	form, err := f(p, env)
	if err != nil {
		return nil, fmt.Errorf("form %q: %w", name, err)
	}
	return form, nil
}

//Names returns the sorted names of the registered forms
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for k := range r.factories {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

//DefaultRegistry holds every form of this package
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("pattern", func(Params, Env) (state.Form, error) {
		return Pattern(), nil
	})
	r.Register("animated", func(p Params, env Env) (state.Form, error) {
		speed, err := p.Duration("speed", 10*time.Millisecond)
		if err != nil {
			return nil, err
		}
		return Animated(env.Elapsed, speed), nil
	})
	r.Register("solid", func(p Params, _ Env) (state.Form, error) {
		c, err := p.Color("color", state.Color{A: 1})
		if err != nil {
			return nil, err
		}
		return Solid(c), nil
	})
	r.Register("gradient", func(p Params, _ Env) (state.Form, error) {
		from, err := p.Color("from", state.Color{A: 1})
		if err != nil {
			return nil, err
		}
		to, err := p.Color("to", state.Color{R: 1, G: 1, B: 1, A: 1})
		if err != nil {
			return nil, err
		}
		return Gradient(from, to), nil
	})
	r.Register("checker", func(p Params, _ Env) (state.Form, error) {
		size, err := p.Int("size", 8)
		if err != nil {
			return nil, err
		}
		a, err := p.Color("a", state.Color{A: 1})
		if err != nil {
			return nil, err
		}
		b, err := p.Color("b", state.Color{R: 1, G: 1, B: 1, A: 1})
		if err != nil {
			return nil, err
		}
		return Checker(size, a, b), nil
	})
	r.Register("tint", func(p Params, _ Env) (state.Form, error) {
		c, err := p.Color("color", state.Color{R: 1, G: 1, B: 1, A: 1})
		if err != nil {
			return nil, err
		}
		return Tint(c), nil
	})
	r.Register("keep", func(Params, Env) (state.Form, error) {
		return Keep(), nil
	})
	return r
}

//Int returns the integer parameter key or def when it is absent
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, v, ErrBadParam)
	}
	return n, nil
}

//Duration returns the duration parameter key or def when it is absent
func (p Params) Duration(key string, def time.Duration) (time.Duration, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, v, ErrBadParam)
	}
	return d, nil
}

//Color returns the color parameter key or def when it is absent
func (p Params) Color(key string, def state.Color) (state.Color, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	c, err := ParseColor(v)
	if err != nil {
		return state.Color{}, fmt.Errorf("%s: %w", key, err)
	}
	return c, nil
}

//ParseColor parses "#rgb", "#rrggbb", "#rrggbbaa" or an SVG color name such as "cornflowerblue"
func ParseColor(s string) (state.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return state.Color{
			R: float32(c.R) / 255,
			G: float32(c.G) / 255,
			B: float32(c.B) / 255,
			A: float32(c.A) / 255,
		}, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return state.Color{}, fmt.Errorf("color %q: %w", s, ErrBadParam)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return state.Color{}, fmt.Errorf("color %q: %w", s, ErrBadParam)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return state.Color{}, fmt.Errorf("color %q: %w", s, ErrBadParam)
	}
	return state.Color{
		R: float32(v>>24&0xff) / 255,
		G: float32(v>>16&0xff) / 255,
		B: float32(v>>8&0xff) / 255,
		A: float32(v&0xff) / 255,
	}, nil
}
