package state

import (
	"fmt"
	"testing"
)

const (
	benchWidth  = 200
	benchHeight = 200
)

func benchState(threshold int) State {
	return New(WithMergeThreshold(threshold)).
		Put(AreaRequest{Rect{0, 0, benchWidth, benchHeight}}).
		FormAny(expandArea(cellColor))
}

func Benchmark_Cycle(b *testing.B) {
	//a huge threshold forces the incremental insertion for every output
	for _, threshold := range []int{DefMergeThreshold, benchWidth*benchHeight + 1} {
		b.Run(fmt.Sprintf("threshold=%d", threshold), func(b *testing.B) {
			s := benchState(threshold)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = s.Cycle()
			}
		})
	}
}

func Benchmark_FragmentAt(b *testing.B) {
	s := benchState(DefMergeThreshold).Cycle()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.FragmentAt(Coord{i % benchWidth, (i / benchWidth) % benchHeight})
	}
}
