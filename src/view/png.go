package view

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"

	"golang.org/x/image/draw"

	"cute/src/render"
)

//WritePNG encodes img as PNG, every pixel is upscaled to a scale x scale square
func WritePNG(w io.Writer, img image.Image, scale int) error {
	if scale > 1 {
		b := img.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
		draw.NearestNeighbor.Scale(dst, dst.Rect, img, b, draw.Src, nil)
		img = dst
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

//SavePNG writes img to path
func SavePNG(path string, img image.Image, scale int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close png: %w", cerr)
		}
	}()
	return WritePNG(f, img, scale)
}

//PNGWriter is the viewer saving the last frame once the renderer has finished
type PNGWriter struct {
	r      *render.Renderer
	path   string
	scale  int
	logger *slog.Logger
	saved  chan error
}

func NewPNGWriter(path string, scale int, logger *slog.Logger) *PNGWriter {
	return &PNGWriter{path: path, scale: scale, logger: logger, saved: make(chan error, 1)}
}

func (p *PNGWriter) Register(r *render.Renderer) {
	p.r = r
}

func (p *PNGWriter) Start() {}

func (p *PNGWriter) Refresh() {
	st := p.r.Status()
	if st.RunningMode != render.RunningStateFinished || st.Err != nil {
		return
	}
	err := SavePNG(p.path, p.r.Frame(), p.scale)
	if err != nil {
		p.logger.Error("saving frame failed", "path", p.path, "error", err)
	} else {
		p.logger.Info("frame saved", "path", p.path, "frame", st.FrameNum)
	}
	select {
	case p.saved <- err:
	default:
	}
}

//Saved returns the channel receiving the result of the save
func (p *PNGWriter) Saved() <-chan error {
	return p.saved
}
