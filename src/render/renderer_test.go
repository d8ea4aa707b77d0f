package render

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cute/src/forms"
	"cute/src/state"
)

func patternWorld(time.Duration) (state.State, error) {
	return state.New().FormAny(forms.Pattern()), nil
}

func newTestOptions(fill string) *Options {
	o := DefaultOptions
	o.Interval = 0
	o.Width = 40
	o.Height = 30
	o.Fill = fill
	o.Workers = 3
	return &o
}

//waitFor reads the status channel until the renderer reaches the mode
func waitFor(t *testing.T, ch chan Status, mode RunningState) Status {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case st := <-ch:
			if st.RunningMode == mode {
				return st
			}
		case <-timeout:
			t.Fatalf("timeout waiting for running state %v", mode)
		}
	}
}

type countingViewer struct {
	r        *Renderer
	refreshs chan int
}

func (v *countingViewer) Register(r *Renderer) { v.r = r }
func (v *countingViewer) Start()               {}
func (v *countingViewer) Refresh()             { v.refreshs <- v.r.Status().FrameNum }

func TestToRGBA(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0, G: 255, B: 127, A: 255}, ToRGBA(state.Color{R: -1, G: 2, B: .5, A: 1}))
	assert.Equal(t, color.RGBA{}, ToRGBA(state.Color{R: float32(math.NaN())}))
	assert.Equal(t, color.RGBA{R: 10}, ToRGBA(state.Color{R: 10.0 / 255}))
}

func TestFillersAgree(t *testing.T) {
	s := state.New().
		FormAny(forms.Pattern()).
		Put(state.AreaRequest{Area: state.Rect{Width: 33, Height: 21}}).
		Cycle()

	var reference *image.RGBA
	for _, name := range FillerNames() {
		dst := image.NewRGBA(image.Rect(0, 0, 33, 21))
		Fillers[name](&Options{Workers: 4})(s, dst)
		assert.Equal(t, color.RGBA{R: 7, G: 20, B: 27, A: 255}, dst.RGBAAt(7, 20), name)
		if reference == nil {
			reference = dst
			continue
		}
		assert.Equal(t, reference.Pix, dst.Pix, name)
	}
}

func TestFillPointLeavesGapsTransparent(t *testing.T) {
	s := state.New().
		FormAny(forms.Solid(state.Color{R: 1, A: 1})).
		Put(state.AreaRequest{Area: state.Rect{X: 1, Y: 1, Width: 2, Height: 1}}).
		Cycle()
	dst := image.NewRGBA(image.Rect(0, 0, 4, 3))
	FillPoint(s, dst)

	assert.Equal(t, color.RGBA{R: 255, A: 255}, dst.RGBAAt(2, 1))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(3, 1))
}

func TestSplitRows(t *testing.T) {
	for _, tt := range []struct{ height, workers int }{{0, 4}, {5, 4}, {100, 8}, {101, 8}, {1000, 3}, {17, 0}} {
		areas := splitRows(0, tt.height, tt.workers)
		next := 0
		for _, wa := range areas {
			assert.Equal(t, next, wa.y1)
			assert.Greater(t, wa.y2, wa.y1)
			next = wa.y2
		}
		assert.Equal(t, tt.height, next, "height %d", tt.height)
	}
}

func TestStep(t *testing.T) {
	ch := make(chan Status, 10)
	r := New(patternWorld, nil, newTestOptions("index"), ch)
	defer r.Close()
	v := &countingViewer{refreshs: make(chan int, 10)}
	r.RegisterViewer(v)

	r.Step()
	waitFor(t, ch, RunningStateStep)
	st := waitFor(t, ch, RunningStateManual)

	assert.Equal(t, 1, st.FrameNum)
	assert.Equal(t, 40*30, st.Primitives)
	assert.Equal(t, 1, st.Generation)
	assert.Equal(t, 1, st.Stats.Merges)
	assert.NoError(t, st.Err)
	assert.Equal(t, 1, <-v.refreshs)

	f := r.Frame()
	assert.Equal(t, color.RGBA{R: 39, G: 29, B: 68, A: 255}, f.RGBAAt(39, 29))
	assert.Equal(t, state.Color{R: 1.0 / 255, G: 2.0 / 255, B: 3.0 / 255, A: 1}, r.State().FragmentAt(state.Coord{X: 1, Y: 2}))
	assert.Equal(t, "index", r.Options().Advanced["fill"])
}

func TestRunUntilMaxFrames(t *testing.T) {
	ch := make(chan Status, 10)
	o := newTestOptions("parallel")
	o.MaxFrames = 3
	o.Cycles = 2
	r := New(patternWorld, nil, o, ch)
	defer r.Close()

	r.Run()
	st := waitFor(t, ch, RunningStateFinished)

	assert.Equal(t, 3, st.FrameNum)
	//the second cycle has no form for pixel results
	assert.Equal(t, 0, st.Primitives)
	assert.Equal(t, 2, st.Generation)
	assert.Equal(t, 3, r.Options().Advanced["workers"])
}

func TestStop(t *testing.T) {
	ch := make(chan Status, 10)
	o := newTestOptions("point")
	o.MaxFrames = 0
	o.Interval = time.Millisecond
	r := New(patternWorld, nil, o, ch)
	defer r.Close()

	r.Run()
	waitFor(t, ch, RunningStateRun)
	r.Stop()
	st := waitFor(t, ch, RunningStateManual)
	assert.Equal(t, RunningStateManual, st.RunningMode)
}

func TestWorldError(t *testing.T) {
	boom := errors.New("boom")
	ch := make(chan Status, 10)
	r := New(func(time.Duration) (state.State, error) { return state.State{}, boom }, nil, newTestOptions("point"), ch)
	defer r.Close()

	r.Step()
	st := waitFor(t, ch, RunningStateFinished)
	assert.ErrorIs(t, st.Err, boom)
	assert.Equal(t, 0, st.FrameNum)
}

func TestResizeAndSeeds(t *testing.T) {
	ch := make(chan Status, 10)
	seeds := func(w, h int) []state.Primitive {
		return []state.Primitive{state.AreaRequest{Area: state.Rect{Width: w / 2, Height: h}}}
	}
	r := New(patternWorld, seeds, newTestOptions("point"), ch)
	defer r.Close()

	r.Resize(10, 4)
	r.Step()
	st := waitFor(t, ch, RunningStateManual)

	assert.Equal(t, 5*4, st.Primitives)
	f := r.Frame()
	assert.Equal(t, image.Rect(0, 0, 10, 4), f.Rect)
	assert.Equal(t, uint8(255), f.RGBAAt(4, 3).A)
	assert.Equal(t, color.RGBA{}, f.RGBAAt(5, 3))
	assert.Equal(t, 10, r.Options().Width)
}

func TestElapsedTimeReachesWorld(t *testing.T) {
	ch := make(chan Status, 10)
	var got []time.Duration
	world := func(elapsed time.Duration) (state.State, error) {
		got = append(got, elapsed)
		return state.New(), nil
	}
	r := New(world, nil, newTestOptions("point"), ch)
	defer r.Close()
	base := r.start
	r.now = func() time.Time { return base.Add(250 * time.Millisecond) }

	r.Step()
	waitFor(t, ch, RunningStateManual)
	require.Len(t, got, 1)
	assert.Equal(t, 250*time.Millisecond, got[0])
}

func TestUnknownFillFallsBack(t *testing.T) {
	r := New(patternWorld, nil, newTestOptions("zigzag"), nil)
	defer r.Close()
	assert.Equal(t, DefFill, r.Options().Fill)
}
