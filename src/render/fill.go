package render

import (
	"image"
	"image/color"
	"math"
	"sort"
	"sync"

	"cute/src/state"
)

//Filler writes the colors of a cycled State into the pixel buffer
type Filler func(s state.State, dst *image.RGBA)

const (
	DefWorkers          = 8 //default workers of the parallel filler
	DefMinRowsPerWorker = 8 //minimum rows for one worker
)

//Fillers are the available fill strategies
var Fillers = map[string]func(o *Options) Filler{
	"point": func(*Options) Filler { return FillPoint },
	"index": func(*Options) Filler { return FillIndex },
	"parallel": func(o *Options) Filler {
		return FillParallel(o.Workers)
	},
}

//FillerNames returns the sorted names of the fill strategies
func FillerNames() []string {
	names := make([]string, 0, len(Fillers))
	for k := range Fillers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

//ToRGBA converts a normalized color to 8 bit channels, out-of-range values are clamped
func ToRGBA(c state.Color) color.RGBA {
	return color.RGBA{R: toByte(c.R), G: toByte(c.G), B: toByte(c.B), A: toByte(c.A)}
}

func toByte(v float32) uint8 {
	f := float64(v) * 255
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= 255 {
		return 255
	}
	return uint8(f)
}

//FillPoint queries every pixel by its coordinate
func FillPoint(s state.State, dst *image.RGBA) {
	fillRows(s, dst, dst.Rect.Min.Y, dst.Rect.Max.Y)
}

func fillRows(s state.State, dst *image.RGBA, y1 int, y2 int) {
	b := dst.Rect
	for y := y1; y < y2; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetRGBA(x, y, ToRGBA(s.FragmentAt(state.Coord{X: x, Y: y})))
		}
	}
}

//FillIndex queries the pixels sequentially by index, the n-th primitive goes to the n-th pixel in scan order
//it is correct only when the forms emit exactly one pixel per cell of a frame-sized area
func FillIndex(s state.State, dst *image.RGBA) {
	b := dst.Rect
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetRGBA(x, y, ToRGBA(s.FragmentAtIndex(n)))
			n++
		}
	}
}

//workArea is a band of rows filled by one worker
type workArea struct {
	y1 int
	y2 int
}

//splitRows splits the rows y1..y2 into bands for the workers
func splitRows(y1 int, y2 int, workers int) []workArea {
	if workers < 1 {
		workers = DefWorkers
	}
	height := y2 - y1
	linesPerWorker := height / workers
	if linesPerWorker < DefMinRowsPerWorker {
		linesPerWorker = DefMinRowsPerWorker
	} else if linesPerWorker*workers < height {
		linesPerWorker++
	}
	areas := make([]workArea, 0, workers)
	for y := y1; y < y2; y += linesPerWorker {
		areas = append(areas, workArea{y, min(y+linesPerWorker, y2)})
	}
	return areas
}

//FillParallel queries the pixels by coordinate from several goroutines
//a State is immutable so the workers share it without locking, every worker owns its rows
func FillParallel(workers int) Filler {
	return func(s state.State, dst *image.RGBA) {
		var waitGroup sync.WaitGroup
		for _, wa := range splitRows(dst.Rect.Min.Y, dst.Rect.Max.Y, workers) {
			waitGroup.Add(1)
			go func() {
				defer waitGroup.Done()
				fillRows(s, dst, wa.y1, wa.y2)
			}()
		}
		waitGroup.Wait()
	}
}
