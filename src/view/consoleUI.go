package view

import (
	"bytes"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"cute/src/render"
)

type keyBindings struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

//ConsoleUI is the interactive terminal viewer
//the frame view follows the terminal size: the renderer is resized to the view, two frame rows per text line
type ConsoleUI struct {
	r         *render.Renderer
	g         *gocui.Gui
	k         []keyBindings
	au        aurora.Aurora
	logger    *slog.Logger
	pngPath   string
	pngScale  int
	frameSize struct{ w, h int }
}

var (
	runningStateDescr = map[render.RunningState]string{
		render.RunningStateManual:   aurora.Colorize("waiting", aurora.BlueFg).String(),
		render.RunningStateStep:     "drawing",
		render.RunningStateRun:      aurora.Colorize("running", aurora.CyanFg).String(),
		render.RunningStateFinished: aurora.Colorize("finished", aurora.RedFg).String(),
	}
)

func NewViewTerminal(pngPath string, pngScale int, logger *slog.Logger) *ConsoleUI {

	var err error
	t := ConsoleUI{
		au:       aurora.NewAurora(true),
		logger:   logger,
		pngPath:  pngPath,
		pngScale: pngScale,
	}

	t.g, err = gocui.NewGui(gocui.Output256)
	if err != nil {
		log.Panicln(err)
	}

	t.k = []keyBindings{
		{gocui.KeyCtrlC,
			"^C",
			"Exit",
			t.cmdQuit,
			""},
		{'n',
			"N",
			"Next frame",
			t.cmdNextFrame,
			""},
		{'r',
			"R",
			"Run",
			t.cmdRun,
			""},
		{'s',
			"S",
			"Stop",
			t.cmdStop,
			""},
		{'p',
			"P",
			"Save PNG",
			t.cmdSave,
			""},
	}
	t.g.SetManagerFunc(t.layout)

	t.initKeyBindings(t.k)

	return &t
}

func (t *ConsoleUI) initKeyBindings(k []keyBindings) {
	for _, kb := range k {
		h := kb.handler
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(gui *gocui.Gui, view *gocui.View) error { return h(view) }); err != nil {
			log.Panicln(err)
		}
	}
}

func (t *ConsoleUI) Register(r *render.Renderer) {
	t.r = r
}

func (t *ConsoleUI) Start() {
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
	t.g.Close()
}

func (t *ConsoleUI) Refresh() {
	t.renderFrame()
	t.renderConfiguration()
	t.renderStatus()
}

func (t *ConsoleUI) renderFrame() {
	frame := t.r.Frame()
	t.g.Update(func(g *gocui.Gui) error {
		v, e := g.View("frame")
		if e != nil {
			return e
		}
		v.Clear()
		maxW, maxH := v.Size()
		_, _ = fmt.Fprint(v, ANSI(t.au, frame, maxW, maxH))
		return nil
	})
}

func (t *ConsoleUI) renderStatus() {
	s := t.r.Status()
	t.g.Update(func(g *gocui.Gui) error {
		if v, e := g.View("status"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, t.renderProp("Frame", "%v", s.FrameNum))
			_, _ = fmt.Fprintln(v, t.renderProp("Primitives", "%v", s.Primitives))
			_, _ = fmt.Fprintln(v, t.renderProp("Generation", "%v", s.Generation))
			_, _ = fmt.Fprintln(v, t.renderProp("Cycle time", "%v", s.CycleTime.Round(time.Microsecond)))
			_, _ = fmt.Fprintln(v, t.renderProp("Frame time", "%v", s.FrameTime.Round(time.Microsecond)))
			_, _ = fmt.Fprintln(v, t.renderProp("Merges", "%v", s.Stats.Merges))
			_, _ = fmt.Fprintln(v, t.renderProp("Inserts", "%v", s.Stats.Inserts))
			_, _ = fmt.Fprintln(v, t.renderProp("Mode", "%v", runningStateDescr[s.RunningMode]))
		}
		return nil
	})
}

func (t *ConsoleUI) renderConfiguration() {
	//it needs to call Update when calls from goroutine
	t.g.Update(func(g *gocui.Gui) error {
		c := t.r.Options()
		if v, e := g.View("configuration"); e == nil {
			v.Clear()
			_, _ = fmt.Fprintln(v, t.renderProp("Dimension", "%v x %v", c.Width, c.Height))
			_, _ = fmt.Fprintln(v, t.renderProp("Interval", "%v", c.Interval))
			_, _ = fmt.Fprintln(v, t.renderProp("Frames", "%v", c.MaxFrames))
			_, _ = fmt.Fprintln(v, t.renderProp("Cycles", "%v", c.Cycles))
			_, _ = fmt.Fprintln(v, t.renderProp("Fill", "%v", c.Fill))
		}
		return nil
	})
}

func (t *ConsoleUI) renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {

	maxX, maxY := g.Size()
	leftColumnWidth := 28
	minWindowHeight := 20

	if maxY < minWindowHeight {
		if _, err := t.headerLayout(g, maxY, "Terminal height too small"); err != nil {
			if err != gocui.ErrUnknownView {
				return err
			}
		}
		_ = g.DeleteView("configuration")
		_ = g.DeleteView("status")
		_ = g.DeleteView("frame")
		return nil
	}

	if _, err := t.headerLayout(g, 3, "cute: forms, cycles and fragments"); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
	}

	if v, err := g.SetView("configuration", 0, 3, leftColumnWidth, 3+(maxY-5-3)/2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Configuration"
		v.Frame = true
		t.renderConfiguration()
	}

	if v, err := g.SetView("status", 0, 3+(maxY-5-3)/2+1, leftColumnWidth, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Status"
		v.Frame = true
		t.renderStatus()
	}

	v, err := g.SetView("frame", leftColumnWidth+1, 3, maxX-1, maxY-5)
	if err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Frame"
		v.Frame = true
	}
	//follow the terminal: the frame is as large as the view
	if w, h := v.Size(); w != t.frameSize.w || h != t.frameSize.h {
		t.frameSize.w, t.frameSize.h = w, h
		go func() {
			t.r.Resize(w, h*2)
			t.r.Step()
		}()
	}

	if v, err := g.SetView("help", -1, maxY-5, maxX, maxY-3); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		b := bytes.Buffer{}
		b.WriteString("KEYBINDINGS: ")
		for i, k := range t.k {
			if i != 0 {
				b.WriteString(", ")
			}
			b.WriteString(aurora.Green(k.name).String())
			b.WriteString(": ")
			b.WriteString(k.descr)
		}
		_, _ = fmt.Fprintln(v, b.String())
	}

	return nil
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		if maxX < len(text) {
			text = text[:max(maxX, 0)]
		}
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+strings.Repeat(" ", (maxX-len(text))/2)+text)
	}
	return
}

func (t *ConsoleUI) cmdQuit(_ *gocui.View) error {
	return gocui.ErrQuit
}

func (t *ConsoleUI) cmdNextFrame(_ *gocui.View) error {
	t.r.Step()
	return nil
}

func (t *ConsoleUI) cmdRun(_ *gocui.View) error {
	t.r.Run()
	return nil
}

func (t *ConsoleUI) cmdStop(_ *gocui.View) error {
	t.r.Stop()
	return nil
}

func (t *ConsoleUI) cmdSave(_ *gocui.View) error {
	if err := SavePNG(t.pngPath, t.r.Frame(), t.pngScale); err != nil {
		t.logger.Error("saving frame failed", "path", t.pngPath, "error", err)
		return nil
	}
	t.logger.Info("frame saved", "path", t.pngPath)
	return nil
}
