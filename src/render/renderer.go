package render

import (
	"image"
	"log/slog"
	"sync"
	"time"

	"cute/src/logging"
	"cute/src/state"
)

//Options represents the Renderer's configurable options
type Options struct {
	Width           int
	Height          int
	Interval        time.Duration
	MaxFrames       int
	MaxSkippedTicks int
	Cycles          int    //cycles per frame
	Fill            string //fill strategy, one of FillerNames()
	Workers         int    //workers of the parallel fill strategy
	Logger          *slog.Logger
	Advanced        map[string]interface{} //advanced options (strategy specific)
}

//Status represents the status of the Renderer at concrete moment
type Status struct {
	FrameNum    int
	RunningMode RunningState
	Primitives  int              //primitives of the last cycled State
	Generation  int              //generation of the last cycled State
	FrameTime   time.Duration    //whole frame: build, cycles and fill
	CycleTime   time.Duration    //cycles only
	Stats       state.CycleStats //statistics of the last cycle
	Err         error            //the error which finished the rendering, if any
}

//Viewer is the interface to any Viewer - the object who can display frames or control the renderer
type Viewer interface {
	Refresh()
	Register(r *Renderer)
	Start()
}

//WorldFunc builds the world State for the frame: forms registered, no primitives
type WorldFunc func(elapsed time.Duration) (state.State, error)

//SeedFunc returns the primitives seeding a frame of the given size
type SeedFunc func(width int, height int) []state.Primitive

//RunningState is the renderer running status at the concrete moment
type RunningState int

//default options
const (
	DefFrameInterval   = time.Millisecond * 40
	DefMaxFrames       = 100
	DefWidth           = 64
	DefHeight          = 32
	DefMaxSkippedTicks = 5
	DefCycles          = 1
	DefFill            = "point"
)

const (
	RunningStateManual   RunningState = 0x0
	RunningStateStep     RunningState = 0x1
	RunningStateRun      RunningState = 0x2
	RunningStateFinished RunningState = 0x3
)

var DefaultOptions = Options{
	Width:           DefWidth,
	Height:          DefHeight,
	Interval:        DefFrameInterval,
	MaxFrames:       DefMaxFrames,
	MaxSkippedTicks: DefMaxSkippedTicks,
	Cycles:          DefCycles,
	Fill:            DefFill,
	Workers:         DefWorkers,
}

//FullFrame seeds every frame with a single area request covering the whole frame
func FullFrame(width int, height int) []state.Primitive {
	return []state.Primitive{state.AreaRequest{Area: state.Rect{Width: width, Height: height}}}
}

//Renderer drives the engine: every frame it builds the world, seeds it, cycles it and fills the pixel buffer
//all commands are executed one by one by the main loop goroutine
type Renderer struct {
	options Options
	state   struct {
		Status
		sync.Mutex
	}
	frame struct {
		*image.RGBA
		last state.State
		sync.Mutex
	}
	world     WorldFunc
	seeds     SeedFunc
	fill      Filler
	logger    *slog.Logger
	statusCh  chan Status
	views     []Viewer
	controlCh chan func()
	closeCh   chan bool
	start     time.Time
	now       func() time.Time
}

//New creates the Renderer instance
//statusCh receives the Status on every running state change, it may be nil
func New(world WorldFunc, seeds SeedFunc, o *Options, statusCh chan Status) *Renderer {
	if o == nil {
		d := DefaultOptions
		o = &d
	}
	if seeds == nil {
		seeds = FullFrame
	}
	opts := *o
	if opts.Cycles < 1 {
		opts.Cycles = DefCycles
	}
	if opts.Workers < 1 {
		opts.Workers = DefWorkers
	}
	newFiller, ok := Fillers[opts.Fill]
	if !ok {
		opts.Fill = DefFill
		newFiller = Fillers[DefFill]
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	opts.Advanced = map[string]interface{}{"fill": opts.Fill}
	if opts.Fill == "parallel" {
		opts.Advanced["workers"] = opts.Workers
	}

	r := Renderer{
		options:   opts,
		world:     world,
		seeds:     seeds,
		fill:      newFiller(&opts),
		logger:    opts.Logger,
		controlCh: make(chan func(), 1),
		closeCh:   make(chan bool, 1),
		statusCh:  statusCh,
		now:       time.Now,
	}
	r.start = r.now()
	r.frame.RGBA = image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	go r.mainLoop()
	return &r
}

//RegisterViewer registers the viewer - the renderer will call the viewer when a frame is done
func (r *Renderer) RegisterViewer(v Viewer) {
	r.views = append(r.views, v)
	v.Register(r)
}

//StatusCh returns the channel with the renderer's status updates
func (r *Renderer) StatusCh() chan Status {
	return r.statusCh
}

//Status returns current renderer status
func (r *Renderer) Status() Status {
	r.state.Lock()
	defer r.state.Unlock()
	return r.state.Status
}

//Options returns the renderer configuration
func (r *Renderer) Options() Options {
	r.frame.Lock()
	defer r.frame.Unlock()
	return r.options
}

//Frame returns a copy of the last rendered frame
func (r *Renderer) Frame() *image.RGBA {
	r.frame.Lock()
	defer r.frame.Unlock()
	c := image.NewRGBA(r.frame.Rect)
	copy(c.Pix, r.frame.Pix)
	return c
}

//State returns the cycled State of the last frame
//States are immutable, the caller may query it from any goroutine
func (r *Renderer) State() state.State {
	r.frame.Lock()
	defer r.frame.Unlock()
	return r.frame.last
}

//Run starts rendering frames every Interval, returns immediately
func (r *Renderer) Run() {
	r.controlCh <- r.run
}

//Stop stops the rendering, returns immediately
func (r *Renderer) Stop() {
	r.controlCh <- r.stop
}

//Step renders one frame, returns immediately
//the Status struct will be written to the statusCh on start and on finish
func (r *Renderer) Step() {
	r.controlCh <- r.step
}

//Resize changes the frame size, returns immediately
func (r *Renderer) Resize(width int, height int) {
	r.controlCh <- func() {
		r.frame.Lock()
		r.options.Width, r.options.Height = width, height
		r.frame.RGBA = image.NewRGBA(image.Rect(0, 0, width, height))
		r.frame.Unlock()
	}
}

//Close stops the main loop, returns immediately
func (r *Renderer) Close() {
	r.closeCh <- true
}

//mainLoop waits for commands and executes them, should start as a goroutine
func (r *Renderer) mainLoop() {
	var c = false
	for !c {
		select {
		case cmd := <-r.controlCh:
			cmd()
		case c = <-r.closeCh:
		}
	}
}

//switchRunningState switches the state of the renderer
//also writes the new state to the statusCh to signal upper control software
func (r *Renderer) switchRunningState(to RunningState) {
	r.state.Lock()
	r.state.RunningMode = to
	st := r.state.Status
	r.state.Unlock()
	if r.statusCh != nil {
		r.statusCh <- st
	}
}

func (r *Renderer) runningMode() RunningState {
	r.state.Lock()
	defer r.state.Unlock()
	return r.state.RunningMode
}

//run renders frames until Stop is called or MaxFrames is reached
func (r *Renderer) run() {
	go func() {
		r.switchRunningState(RunningStateRun)
		skipped := 0
		done := make(chan bool)
		defer close(done)
		for {
			mode := r.runningMode()
			if mode != RunningStateRun && mode != RunningStateStep {
				break
			}
			if skipped > r.options.MaxSkippedTicks {
				r.logger.Warn("rendering is too slow for the frame interval", "interval", r.options.Interval)
				r.switchRunningState(RunningStateFinished)
				break
			}
			//skip the tick if the renderer is still drawing the previous frame
			if mode != RunningStateStep {
				skipped = 0
				r.controlCh <- func() {
					r.step()
					done <- true
				}
				<-done
			} else {
				skipped++
			}
			if r.options.Interval > 0 {
				time.Sleep(r.options.Interval)
			}
		}
	}()
}

//stop stops the rendering cycle
func (r *Renderer) stop() {
	if r.runningMode() == RunningStateRun {
		r.switchRunningState(RunningStateManual)
	}
}

//step renders one frame
func (r *Renderer) step() {
	rm := r.runningMode()
	finished := false
	defer func() {
		if finished {
			r.switchRunningState(RunningStateFinished)
		} else {
			r.switchRunningState(rm)
		}
		r.refreshView()
	}()

	r.switchRunningState(RunningStateStep)
	if err := r.renderFrame(); err != nil {
		r.logger.Error("frame failed", "frame", r.Status().FrameNum+1, "error", err)
		r.state.Lock()
		r.state.Err = err
		r.state.Unlock()
		finished = true
		return
	}
	if limit := r.options.MaxFrames; limit != 0 && r.Status().FrameNum >= limit {
		finished = true
	}
}

//renderFrame builds the world, seeds it, runs the cycles and fills the pixel buffer
func (r *Renderer) renderFrame() error {
	start := r.now()
	w, err := r.world(start.Sub(r.start))
	if err != nil {
		return err
	}

	r.frame.Lock()
	defer r.frame.Unlock()

	b := r.frame.Rect
	for _, p := range r.seeds(b.Dx(), b.Dy()) {
		w = w.Put(p)
	}
	cycleStart := r.now()
	for i := 0; i < r.options.Cycles; i++ {
		w = w.Cycle()
	}
	cycleTime := r.now().Sub(cycleStart)
	r.fill(w, r.frame.RGBA)
	r.frame.last = w

	r.state.Lock()
	r.state.FrameNum++
	r.state.Primitives = w.Len()
	r.state.Generation = w.Generation()
	r.state.Stats = w.Stats()
	r.state.CycleTime = cycleTime
	r.state.FrameTime = r.now().Sub(start)
	st := r.state.Status
	r.state.Unlock()

	r.logger.Debug("frame",
		"frame", st.FrameNum,
		"primitives", st.Primitives,
		"cycle", st.CycleTime,
		"total", st.FrameTime,
	)
	return nil
}

//refreshView calls Refresh event for all registered views
func (r *Renderer) refreshView() {
	for _, v := range r.views {
		v.Refresh()
	}
}
