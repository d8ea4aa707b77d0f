package render

import (
	"testing"
)

const (
	width  = 200
	height = 200
)

func newBenchOptions(fill string) *Options {
	o := DefaultOptions
	o.Interval = 0
	o.Width = width
	o.Height = height
	o.Fill = fill
	return &o
}

func renderStep(r *Renderer, b *testing.B) {
	statusCh := r.StatusCh()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Step()
		for {
			st := <-statusCh
			if st.RunningMode == RunningStateManual || st.RunningMode == RunningStateFinished {
				break
			}
		}
	}
	b.StopTimer()
	r.Close()
}

func Benchmark_Step(b *testing.B) {
	for _, f := range FillerNames() {
		b.Run(f, func(b *testing.B) {
			o := newBenchOptions(f)
			o.MaxFrames = 0
			r := New(patternWorld, nil, o, make(chan Status, 10))
			renderStep(r, b)
		})
	}
}
