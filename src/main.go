package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/integrii/flaggy"

	"cute/src/forms"
	"cute/src/logging"
	"cute/src/metrics"
	"cute/src/render"
	"cute/src/scene"
	"cute/src/state"
	"cute/src/view"
)

type EnvOptions struct {
	interactive bool
	print       bool
	noColor     bool
	verbose     bool
	scenePath   string
	pngPath     string
	pngScale    int
	metricsAddr string
	logPath     string
}

func main() {
	eo, ro := initOptions()

	logger, closeLog, err := newLogger(eo)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()
	state.SetLogger(logger)
	ro.Logger = logger

	sc, err := loadScene(eo.scenePath, ro)
	if err != nil {
		logger.Error("cannot load the scene", "error", err)
		os.Exit(1)
	}
	world := func(elapsed time.Duration) (state.State, error) {
		return sc.Build(elapsed, forms.DefaultRegistry)
	}
	//fail fast on unknown forms instead of on the first frame
	if _, err := world(0); err != nil {
		logger.Error("cannot build the scene", "error", err, "forms", strings.Join(forms.DefaultRegistry.Names(), "|"))
		os.Exit(1)
	}

	var statusCh chan render.Status
	if !eo.interactive {
		statusCh = make(chan render.Status, 10) //the buffered channel to getting the renderer status
	}

	r := render.New(world, sc.SeedPrimitives, ro, statusCh)

	if eo.metricsAddr != "" {
		c := metrics.NewCollector()
		r.RegisterViewer(c)
		go func() {
			logger.Info("serving metrics", "addr", eo.metricsAddr)
			if err := http.ListenAndServe(eo.metricsAddr, c.Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	if eo.interactive {
		v := view.NewViewTerminal(eo.pngPath, eo.pngScale, logger)
		r.RegisterViewer(v)
		v.Start()
		r.Close()
		return
	}

	if eo.pngPath != "" {
		r.RegisterViewer(view.NewPNGWriter(eo.pngPath, eo.pngScale, logger))
	}
	out := view.NewConsoleOut(os.Stdout, !eo.noColor)
	out.Print = eo.print
	r.RegisterViewer(out)
	out.Start()

	r.Run()
	var st render.Status
	for {
		st = <-statusCh
		if st.RunningMode == render.RunningStateFinished {
			break
		}
	}
	//the viewers are refreshed after the status is published
	<-out.Finished()
	r.Close()
	if st.Err != nil {
		os.Exit(1)
	}
}

func initOptions() (eo *EnvOptions, ro *render.Options) {

	o := render.DefaultOptions
	ro = &o
	eo = &EnvOptions{pngScale: 1}
	flaggy.SetName("cute")
	flaggy.SetDescription("Procedural per-pixel image generation: forms, cycles and fragments")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Int(&ro.Width, "x", "width", "Width of the frame")
	flaggy.Int(&ro.Height, "y", "height", "Height of the frame")
	flaggy.Duration(&ro.Interval, "i", "interval", "Interval between the frames, for example 40ms")
	flaggy.Int(&ro.MaxFrames, "f", "frames", "Limit the rendering to frames, 0 means no limit")
	flaggy.Int(&ro.Cycles, "c", "cycles", "Cycles per frame")
	flaggy.String(&ro.Fill, "e", "fill", "Fill strategy ["+strings.Join(render.FillerNames(), "|")+"]")
	flaggy.Int(&ro.Workers, "w", "workers", "Workers of the parallel fill strategy")
	flaggy.String(&eo.scenePath, "s", "scene", "Scene file (YAML), the default scene draws the coordinate pattern")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.Bool(&eo.print, "p", "print", "Print the last frame to the terminal")
	flaggy.Bool(&eo.noColor, "", "no-color", "Disable colors")
	flaggy.String(&eo.pngPath, "o", "png", "Save the last frame to a PNG file")
	flaggy.Int(&eo.pngScale, "", "scale", "Upscale factor of the PNG file")
	flaggy.String(&eo.metricsAddr, "m", "metrics", "Serve Prometheus metrics on this address, for example :2112")
	flaggy.String(&eo.logPath, "l", "log", "Write the log to this file instead of stderr")
	flaggy.Bool(&eo.verbose, "v", "verbose", "Debug logging: one record per cycle and per frame")

	flaggy.Parse()

	if _, ok := render.Fillers[ro.Fill]; !ok {
		flaggy.ShowHelpAndExit("unknown fill strategy")
	}
	if ro.Width <= 0 || ro.Height <= 0 {
		flaggy.ShowHelpAndExit("the frame size must be positive")
	}
	if eo.interactive && eo.pngPath == "" {
		eo.pngPath = "frame.png"
	}

	return
}

//newLogger logs to stderr, or to the log file, which is the only choice for the interactive mode
func newLogger(eo *EnvOptions) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if eo.verbose {
		level = slog.LevelDebug
	}
	if eo.logPath == "" {
		if eo.interactive {
			return logging.NewNop(), func() {}, nil
		}
		return logging.New(level), func() {}, nil
	}
	f, err := os.OpenFile(eo.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return logging.NewWriter(f, level), func() { _ = f.Close() }, nil
}

//loadScene loads the scene file, the scene decides the frame size and the cycles
//without a file the default scene takes the size from the flags
func loadScene(path string, ro *render.Options) (*scene.Scene, error) {
	if path == "" {
		sc := scene.Default(ro.Width, ro.Height)
		sc.Cycles = ro.Cycles
		return sc, nil
	}
	sc, err := scene.LoadFile(path)
	if err != nil {
		return nil, err
	}
	ro.Width, ro.Height, ro.Cycles = sc.Width, sc.Height, sc.Cycles
	return sc, nil
}
