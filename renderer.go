package musclearm

import (
	"fmt"
	"image/color"

	"github.com/google/uuid"
)

// Entity names one of the four drawable line structures of an arm.
type Entity string

// The drawable entities, in drawing order.
const (
	Upper   Entity = "upper"
	Lower   Entity = "lower"
	Biceps  Entity = "biceps"
	Triceps Entity = "triceps"
)

// Entities lists every Entity in drawing order.
func Entities() []Entity {
	return []Entity{Upper, Lower, Biceps, Triceps}
}

// Geometry holds the point sequences of all four entities for one
// parameter set. It is recomputed in full every time it is requested.
type Geometry struct {
	Upper   []Point
	Lower   []Point
	Biceps  []Point
	Triceps []Point
}

// Points returns the point sequence of entity e, or nil for an
// unknown entity.
func (g Geometry) Points(e Entity) []Point {
	switch e {
	case Upper:
		return g.Upper
	case Lower:
		return g.Lower
	case Biceps:
		return g.Biceps
	case Triceps:
		return g.Triceps
	}
	return nil
}

// LineStyle describes how a single entity is stroked. Width is in
// typographic points.
type LineStyle struct {
	Color color.RGBA
	Width float64
}

// Style configures a figure. Extent is the half width of the square
// plot window in meters; zero lets the renderer pick its own range.
type Style struct {
	Lines  map[Entity]LineStyle
	Extent float64
	Legend bool
}

// Line returns the line style for e, falling back to a thin black
// line when none is configured.
func (s Style) Line(e Entity) LineStyle {
	if ls, ok := s.Lines[e]; ok {
		return ls
	}
	return LineStyle{Color: color.RGBA{A: 255}, Width: 1}
}

// DefaultStyle draws the segments in dark grey and the muscles in red
// (biceps) and blue (triceps) inside a 0.7m window.
func DefaultStyle() Style {
	return Style{
		Lines: map[Entity]LineStyle{
			Upper:   {Color: color.RGBA{R: 64, G: 64, B: 64, A: 255}, Width: 4},
			Lower:   {Color: color.RGBA{R: 64, G: 64, B: 64, A: 255}, Width: 4},
			Biceps:  {Color: color.RGBA{R: 214, G: 39, B: 40, A: 255}, Width: 2},
			Triceps: {Color: color.RGBA{R: 31, G: 119, B: 180, A: 255}, Width: 2},
		},
		Extent: 0.7,
		Legend: true,
	}
}

// Handle identifies a figure issued by a Renderer.
type Handle string

// NewHandle returns a fresh, unique Handle.
func NewHandle() Handle {
	return Handle(uuid.NewString())
}

// Renderer draws arm figures. An Arm acquires one handle at
// construction, pushes geometry and labels through it, and releases it
// with Dispose. Renderers own all window or file state.
type Renderer interface {
	Initialize(title string, style Style) (Handle, error)
	UpdateGeometry(h Handle, g Geometry) error
	SetLabel(h Handle, text string) error
	Dispose(h Handle) error
}

// Recorder is an in-memory Renderer. It keeps every geometry and label
// pushed to it, which makes it useful for tests and headless callers.
// A Recorder serves one handle at a time.
type Recorder struct {
	Title    string
	Style    Style
	Frames   []Geometry
	Labels   []string
	Disposed bool

	// Fail, when set, is returned by UpdateGeometry and SetLabel.
	Fail error

	h Handle
}

// Initialize starts a new figure.
func (r *Recorder) Initialize(title string, style Style) (Handle, error) {
	if r.h != "" {
		return "", fmt.Errorf("recorder already serving %q: %w", r.h, ErrRendererBusy)
	}
	r.h = NewHandle()
	r.Title = title
	r.Style = style
	r.Disposed = false
	return r.h, nil
}

func (r *Recorder) check(h Handle) error {
	if h == "" || h != r.h {
		return fmt.Errorf("recorder handle %q: %w", h, ErrUnknownHandle)
	}
	return nil
}

// UpdateGeometry records g as the latest frame.
func (r *Recorder) UpdateGeometry(h Handle, g Geometry) error {
	if err := r.check(h); err != nil {
		return err
	}
	if r.Fail != nil {
		return r.Fail
	}
	r.Frames = append(r.Frames, g)
	return nil
}

// SetLabel records text as the latest label.
func (r *Recorder) SetLabel(h Handle, text string) error {
	if err := r.check(h); err != nil {
		return err
	}
	if r.Fail != nil {
		return r.Fail
	}
	r.Labels = append(r.Labels, text)
	return nil
}

// Dispose releases the figure. The recorded frames are kept.
func (r *Recorder) Dispose(h Handle) error {
	if err := r.check(h); err != nil {
		return err
	}
	r.h = ""
	r.Disposed = true
	return nil
}

// Last returns the most recent frame, and false if nothing has been
// recorded.
func (r *Recorder) Last() (Geometry, bool) {
	if len(r.Frames) == 0 {
		return Geometry{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

// Label returns the most recent label.
func (r *Recorder) Label() string {
	if len(r.Labels) == 0 {
		return ""
	}
	return r.Labels[len(r.Labels)-1]
}
