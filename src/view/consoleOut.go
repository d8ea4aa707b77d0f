package view

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/logrusorgru/aurora"

	"cute/src/render"
)

//ConsoleOut is the non-interactive viewer: prints the configuration, the progress and the result
//with Print set, the last frame is printed with 256-color escape sequences when the rendering finishes
type ConsoleOut struct {
	r         *render.Renderer
	w         io.Writer
	au        aurora.Aurora
	startTime time.Time
	Print     bool
	finished  chan render.Status
}

func NewConsoleOut(w io.Writer, colors bool) *ConsoleOut {
	return &ConsoleOut{w: w, au: aurora.NewAurora(colors), finished: make(chan render.Status, 1)}
}

func (c *ConsoleOut) Refresh() {
	st := c.r.Status()
	if st.RunningMode == render.RunningStateFinished {
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		resultData := map[string]interface{}{
			"Last frame":   st.FrameNum,
			"Total time":   totalTime,
			"Primitives":   st.Primitives,
			"Generation":   st.Generation,
			"Batch merges": st.Stats.Merges,
			"Inserts":      st.Stats.Inserts,
		}
		if st.Err != nil {
			resultData["Error"] = c.au.Red(st.Err.Error())
		}
		if c.Print && st.Err == nil {
			_, _ = fmt.Fprintln(c.w, ANSI(c.au, c.r.Frame(), 0, 0))
		}
		_, _ = fmt.Fprintln(c.w, c.au.Bold("\nFinished:"))
		c.printHashData(resultData)
		select {
		case c.finished <- st:
		default:
		}
	} else if st.RunningMode == render.RunningStateRun {
		if st.FrameNum%10 == 0 {
			_, _ = fmt.Fprintf(c.w, "  Frames done: %v (%v per frame)\n", st.FrameNum, st.FrameTime.Round(time.Microsecond))
		}
	}
}

func (c *ConsoleOut) Register(r *render.Renderer) {
	c.r = r
	o := c.r.Options()
	_, _ = fmt.Fprintln(c.w, c.au.Bold("Running configuration:"))
	_, _ = fmt.Fprintf(c.w, "  Dimension: %v x %v\n", o.Width, o.Height)
	_, _ = fmt.Fprintf(c.w, "  Interval: %v\n", o.Interval)
	_, _ = fmt.Fprintf(c.w, "  Max frames: %v\n", o.MaxFrames)
	_, _ = fmt.Fprintf(c.w, "  Cycles per frame: %v\n", o.Cycles)
	c.printHashData(o.Advanced)
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	_, _ = fmt.Fprintln(c.w, "\nRendering started...")
}

//Finished returns the channel receiving the final status
func (c *ConsoleOut) Finished() <-chan render.Status {
	return c.finished
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		_, _ = fmt.Fprintf(c.w, "  %s: %v\n", c.au.Green(propName), d[propName])
	}
}
