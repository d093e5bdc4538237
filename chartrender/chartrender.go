// Package chartrender draws arm figures as interactive HTML pages
// using go-echarts. The page for a figure is rewritten on every update
// and also traces the path the wrist has taken so far.
package chartrender

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"zappem.net/pub/kinematics/musclearm"
)

// Opener returns the destination for the next rendering of figure n.
type Opener func(n int) (io.WriteCloser, error)

// FileOpener writes figure n to dir/<prefix>-<n>.html, truncating
// whatever was there before.
func FileOpener(dir, prefix string) Opener {
	return func(n int) (io.WriteCloser, error) {
		return os.Create(filepath.Join(dir, fmt.Sprintf("%s-%d.html", prefix, n)))
	}
}

type figure struct {
	n     int
	title string
	style musclearm.Style
	label string
	last  *musclearm.Geometry
	trail []opts.ScatterData
}

// Renderer implements musclearm.Renderer with go-echarts pages.
type Renderer struct {
	// Width and Height are CSS sizes for the chart element.
	Width, Height string
	// Assets, if set, replaces the echarts CDN host.
	Assets string

	open Opener
	log  *zap.Logger
	figs map[musclearm.Handle]*figure
	next int
}

// New returns a Renderer that writes pages through open.
func New(open Opener, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		Width:  "800px",
		Height: "800px",
		open:   open,
		log:    log,
		figs:   make(map[musclearm.Handle]*figure),
	}
}

// Initialize opens a new figure.
func (r *Renderer) Initialize(title string, style musclearm.Style) (musclearm.Handle, error) {
	if r.open == nil {
		return "", fmt.Errorf("chart renderer has no output")
	}
	h := musclearm.NewHandle()
	r.figs[h] = &figure{n: r.next, title: title, style: style}
	r.next++
	return h, nil
}

func (r *Renderer) lookup(h musclearm.Handle) (*figure, error) {
	f, ok := r.figs[h]
	if !ok {
		return nil, fmt.Errorf("chart handle %q: %w", h, musclearm.ErrUnknownHandle)
	}
	return f, nil
}

// UpdateGeometry replaces the drawn geometry and rewrites the page.
func (r *Renderer) UpdateGeometry(h musclearm.Handle, g musclearm.Geometry) error {
	f, err := r.lookup(h)
	if err != nil {
		return err
	}
	f.last = &g
	if len(g.Lower) > 0 {
		w := g.Lower[len(g.Lower)-1]
		f.trail = append(f.trail, opts.ScatterData{Value: []interface{}{w.X, w.Y}})
	}
	return r.write(f)
}

// SetLabel sets the chart subtitle. It is shown from the next page
// write onwards.
func (r *Renderer) SetLabel(h musclearm.Handle, text string) error {
	f, err := r.lookup(h)
	if err != nil {
		return err
	}
	f.label = text
	return nil
}

// Dispose writes the final page and forgets the figure.
func (r *Renderer) Dispose(h musclearm.Handle) error {
	f, err := r.lookup(h)
	if err != nil {
		return err
	}
	delete(r.figs, h)
	if f.last == nil {
		return nil
	}
	return r.write(f)
}

func (r *Renderer) write(f *figure) (err error) {
	w, err := r.open(f.n)
	if err != nil {
		return fmt.Errorf("open chart %d: %w", f.n, err)
	}
	defer func() {
		err = multierr.Append(err, w.Close())
	}()
	if err := r.chart(f).Render(w); err != nil {
		return fmt.Errorf("render chart %d: %w", f.n, err)
	}
	r.log.Debug("wrote arm chart", zap.Int("figure", f.n), zap.Int("points", len(f.trail)))
	return nil
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// chart builds the page for f.
func (r *Renderer) chart(f *figure) *charts.Line {
	line := charts.NewLine()
	ini := opts.Initialization{PageTitle: f.title, Width: r.Width, Height: r.Height}
	if r.Assets != "" {
		ini.AssetsHost = r.Assets
	}
	x := opts.XAxis{Type: "value", Name: "x (m)", NameLocation: "middle", NameGap: 25}
	y := opts.YAxis{Type: "value", Name: "y (m)", NameLocation: "middle", NameGap: 30}
	if ext := f.style.Extent; ext > 0 {
		x.Min, x.Max = -ext, ext
		y.Min, y.Max = -ext, ext
	}
	line.SetGlobalOptions(
		charts.WithInitializationOpts(ini),
		charts.WithTitleOpts(opts.Title{Title: f.title, Subtitle: f.label}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(f.style.Legend)}),
		charts.WithXAxisOpts(x),
		charts.WithYAxisOpts(y),
	)

	if f.last != nil {
		for _, e := range musclearm.Entities() {
			pts := f.last.Points(e)
			data := make([]opts.LineData, len(pts))
			for i, pt := range pts {
				data[i] = opts.LineData{Value: []interface{}{pt.X, pt.Y}}
			}
			ls := f.style.Line(e)
			c := hex(ls.Color)
			line.AddSeries(string(e), data,
				charts.WithLineStyleOpts(opts.LineStyle{Color: c, Width: float32(ls.Width)}),
				charts.WithItemStyleOpts(opts.ItemStyle{Color: c}),
			)
		}
	}

	if len(f.trail) > 1 {
		trail := charts.NewScatter()
		trail.AddSeries("wrist", f.trail, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
		line.Overlap(trail)
	}
	return line
}
