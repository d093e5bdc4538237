// Package plotrender draws arm figures with gonum/plot and saves every
// update as an image file.
package plotrender

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"zappem.net/pub/kinematics/musclearm"
)

// figure is the state kept for one handle.
type figure struct {
	title string
	style musclearm.Style
	label string
	geom  *musclearm.Geometry
	id    int
	frame int
}

// Renderer saves figures under Dir. Each geometry update writes
// <Prefix>-<figure>-<frame>.<Format>, where figures are numbered in
// the order they were initialized and frames count from 0 per figure.
type Renderer struct {
	Dir    string
	Prefix string
	// Format is any extension plot.Save understands: png, svg, pdf,
	// eps, jpg, tif.
	Format string
	Width  vg.Length
	Height vg.Length

	log     *zap.Logger
	figs    map[musclearm.Handle]*figure
	next    int
	written []string
}

// New returns a Renderer writing format files to dir.
func New(dir, format string, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		Dir:    dir,
		Prefix: "arm",
		Format: strings.TrimPrefix(strings.ToLower(format), "."),
		Width:  6 * vg.Inch,
		Height: 6 * vg.Inch,
		log:    log,
		figs:   make(map[musclearm.Handle]*figure),
	}
}

// Initialize opens a new figure.
func (r *Renderer) Initialize(title string, style musclearm.Style) (musclearm.Handle, error) {
	h := musclearm.NewHandle()
	r.figs[h] = &figure{title: title, style: style, id: r.next}
	r.next++
	return h, nil
}

func (r *Renderer) lookup(h musclearm.Handle) (*figure, error) {
	f, ok := r.figs[h]
	if !ok {
		return nil, fmt.Errorf("plot handle %q: %w", h, musclearm.ErrUnknownHandle)
	}
	return f, nil
}

// UpdateGeometry draws g and saves it as the next frame.
func (r *Renderer) UpdateGeometry(h musclearm.Handle, g musclearm.Geometry) error {
	f, err := r.lookup(h)
	if err != nil {
		return err
	}
	f.geom = &g
	p, err := f.plot()
	if err != nil {
		return err
	}
	name := filepath.Join(r.Dir, fmt.Sprintf("%s-%d-%04d.%s", r.Prefix, f.id, f.frame, r.Format))
	if err := p.Save(r.Width, r.Height, name); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	f.frame++
	r.written = append(r.written, name)
	r.log.Debug("saved arm frame", zap.String("file", name))
	return nil
}

// SetLabel sets the caption shown under the figure. It takes effect
// with the next saved frame.
func (r *Renderer) SetLabel(h musclearm.Handle, text string) error {
	f, err := r.lookup(h)
	if err != nil {
		return err
	}
	f.label = text
	return nil
}

// Dispose forgets the figure.
func (r *Renderer) Dispose(h musclearm.Handle) error {
	if _, err := r.lookup(h); err != nil {
		return err
	}
	delete(r.figs, h)
	return nil
}

// Written lists every file saved so far, in order.
func (r *Renderer) Written() []string {
	return r.written
}

// xys converts points into plotter data.
func xys(pts []musclearm.Point) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		out[i].X = pt.X
		out[i].Y = pt.Y
	}
	return out
}

// plot builds the gonum plot for the figure's latest geometry.
func (f *figure) plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = f.title
	p.X.Label.Text = f.label
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	if f.geom != nil {
		for _, e := range musclearm.Entities() {
			pts := f.geom.Points(e)
			if len(pts) == 0 {
				continue
			}
			l, err := plotter.NewLine(xys(pts))
			if err != nil {
				return nil, fmt.Errorf("%s line: %w", e, err)
			}
			ls := f.style.Line(e)
			l.Color = ls.Color
			l.Width = vg.Points(ls.Width)
			p.Add(l)
			if f.style.Legend {
				p.Legend.Add(string(e), l)
			}
		}
	}

	if ext := f.style.Extent; ext > 0 {
		p.X.Min, p.X.Max = -ext, ext
		p.Y.Min, p.Y.Max = -ext, ext
	}
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}
