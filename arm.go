// Package musclearm computes the planar geometry of a two segment
// arm (upper arm and forearm) with two muscle connectors, biceps and
// triceps, and keeps a rendered figure of it up to date.
//
// The arm is described in global 2D coordinates with the shoulder
// fixed at the origin:
//
//	Upper   = shoulder -> elbow, rotated clockwise by the shoulder angle
//	Lower   = elbow kink -> elbow -> wrist, where the kink is the elbow
//	          offset sticking out behind the elbow
//	Biceps  = point on the upper segment -> point ahead of the elbow
//	Triceps = point on the upper segment -> point behind the elbow
//
// The elbow angle is measured in the rotated frame of the upper
// segment, so every offset expressed relative to the elbow is first
// rotated by -shoulder before being added to the elbow point. All
// angles are in degrees; lengths are in meters.
package musclearm

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Rows of Params.Attachments.
const (
	Proximal = 0 // offset along the upper segment from the shoulder
	Distal   = 1 // offset from the elbow anchor
)

// Columns of Params.Attachments and indices of the muscle state pairs.
const (
	BicepsMuscle  = 0
	TricepsMuscle = 1
)

// Params holds the full parameter set of an arm.
type Params struct {
	// Lengths holds the upper and lower segment radii.
	Lengths [2]float64
	// Angles holds the shoulder and elbow angles in degrees.
	Angles [2]float64
	// ElbowOffset is the length of the stick-out behind the elbow.
	ElbowOffset float64
	// Attachments is indexed [Proximal|Distal][BicepsMuscle|TricepsMuscle].
	Attachments [2][2]float64

	// Stress and StrainDelta are carried per muscle but play no part
	// in the geometry.
	Stress      [2]float64
	StrainDelta [2]float64
}

// DefaultParams returns the reference arm: 0.315m upper and 0.290m
// lower segments held at 30 degrees shoulder and 15 degrees elbow.
func DefaultParams() Params {
	return Params{
		Lengths:     [2]float64{0.315, 0.290},
		Angles:      [2]float64{30, 15},
		ElbowOffset: 0.020,
		Attachments: [2][2]float64{
			{0.010, 0.050},
			{0.025, 0.015},
		},
	}
}

// elbow is the shared anchor of the upper and lower segments.
func (p Params) elbow() Point {
	return PolarToCartesian(p.Lengths[0], -p.Angles[0])
}

// local maps a polar offset, expressed in the elbow frame, into the
// global frame (without translation).
func (p Params) local(radius float64) Point {
	return Rotate(PolarToCartesian(radius, p.Angles[1]), -p.Angles[0])
}

// Upper returns the shoulder and elbow points.
func (p Params) Upper() []Point {
	return []Point{{}, p.elbow()}
}

// Lower returns the elbow kink, the elbow and the wrist.
func (p Params) Lower() []Point {
	e := p.elbow()
	return []Point{
		e.Sub(p.local(p.ElbowOffset)),
		e,
		e.Add(p.local(p.Lengths[1])),
	}
}

func (p Params) muscle(m int) []Point {
	from := PolarToCartesian(p.Attachments[Proximal][m], -p.Angles[0])
	d := p.local(p.Attachments[Distal][m])
	to := p.elbow()
	if m == TricepsMuscle {
		to = to.Sub(d)
	} else {
		to = to.Add(d)
	}
	return []Point{from, to}
}

// Biceps returns the two attachment points of the biceps.
func (p Params) Biceps() []Point {
	return p.muscle(BicepsMuscle)
}

// Triceps returns the two attachment points of the triceps. It
// differs from Biceps only in that the distal offset is taken behind
// the elbow anchor rather than ahead of it.
func (p Params) Triceps() []Point {
	return p.muscle(TricepsMuscle)
}

// Geometry computes all four entities from p.
func (p Params) Geometry() Geometry {
	return Geometry{
		Upper:   p.Upper(),
		Lower:   p.Lower(),
		Biceps:  p.Biceps(),
		Triceps: p.Triceps(),
	}
}

// Err* are the errors exported by this package.
var (
	ErrClosed           = errors.New("arm is closed")
	ErrNoRenderer       = errors.New("no renderer")
	ErrRendererBusy     = errors.New("renderer already in use")
	ErrUnknownHandle    = errors.New("unknown renderer handle")
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrShapeMismatch    = errors.New("parameter shape mismatch")
)

// Arm is the kinematic model of one arm together with the renderer
// figure that displays it. The parameters change only through
// Configure, and every change redraws the figure. An Arm is not safe
// for concurrent use.
type Arm struct {
	r     Renderer
	h     Handle
	log   *zap.Logger
	title string
	style Style

	p     Params
	name  string
	label string

	pending []Update
	closed  bool
}

// Option customizes an Arm at construction.
type Option func(*Arm)

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *zap.Logger) Option {
	return func(a *Arm) {
		if l != nil {
			a.log = l
		}
	}
}

// WithParams replaces DefaultParams as the starting parameter set.
func WithParams(p Params) Option {
	return func(a *Arm) { a.p = p }
}

// WithTitle sets the figure title.
func WithTitle(title string) Option {
	return func(a *Arm) { a.title = title }
}

// WithStyle sets the figure style.
func WithStyle(s Style) Option {
	return func(a *Arm) { a.style = s }
}

// WithName sets the arm name shown as the figure label.
func WithName(name string) Option {
	return func(a *Arm) { a.name = name }
}

// WithUpdates applies updates, as Configure would, to the starting
// parameters before the first draw.
func WithUpdates(updates ...Update) Option {
	return func(a *Arm) { a.pending = append(a.pending, updates...) }
}

// NewArm acquires a figure from r and draws the starting pose. Invalid
// WithUpdates fail NewArm before any figure is acquired; if the first
// draw fails the figure is released again before returning.
func NewArm(r Renderer, opts ...Option) (*Arm, error) {
	if r == nil {
		return nil, ErrNoRenderer
	}
	a := &Arm{
		r:     r,
		log:   zap.NewNop(),
		title: "Arm",
		style: DefaultStyle(),
		p:     DefaultParams(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if len(a.pending) > 0 {
		p, name, err := apply(a.p, a.name, a.pending)
		if err != nil {
			return nil, err
		}
		a.p, a.name, a.pending = p, name, nil
	}
	h, err := r.Initialize(a.title, a.style)
	if err != nil {
		return nil, fmt.Errorf("initialize renderer: %w", err)
	}
	a.h = h
	if err := a.push(); err != nil {
		return nil, multierr.Append(err, r.Dispose(h))
	}
	a.log.Info("arm ready", zap.String("title", a.title), zap.String("handle", string(h)))
	return a, nil
}

// Params returns a copy of the current parameter set.
func (a *Arm) Params() Params {
	return a.p
}

// Name returns the arm name.
func (a *Arm) Name() string {
	return a.name
}

// Upper returns the current upper segment points.
func (a *Arm) Upper() []Point { return a.p.Upper() }

// Lower returns the current lower segment points.
func (a *Arm) Lower() []Point { return a.p.Lower() }

// Biceps returns the current biceps points.
func (a *Arm) Biceps() []Point { return a.p.Biceps() }

// Triceps returns the current triceps points.
func (a *Arm) Triceps() []Point { return a.p.Triceps() }

// Geometry recomputes all four entities for the current parameters.
func (a *Arm) Geometry() Geometry { return a.p.Geometry() }

// MuscleLengths returns the current lengths of the biceps and triceps
// connectors.
func (a *Arm) MuscleLengths() (biceps, triceps float64) {
	b, t := a.p.Biceps(), a.p.Triceps()
	return b[1].Sub(b[0]).R(), t[1].Sub(t[0]).R()
}

// Label returns the text the figure is currently labelled with.
func (a *Arm) Label() string {
	switch {
	case a.label != "":
		return a.label
	case a.name != "":
		return a.name
	}
	return fmt.Sprintf("shoulder %.1f°, elbow %.1f°", a.p.Angles[0], a.p.Angles[1])
}

// SetLabel overrides the figure label until the arm name is next
// configured.
func (a *Arm) SetLabel(text string) error {
	if a.closed {
		return ErrClosed
	}
	a.label = text
	if err := a.r.SetLabel(a.h, a.Label()); err != nil {
		return fmt.Errorf("set label: %w", err)
	}
	return nil
}

// push recomputes the geometry and hands it, with the label, to the
// renderer.
func (a *Arm) push() error {
	g := a.p.Geometry()
	a.log.Debug("recomputed arm",
		zap.Float64("shoulder", a.p.Angles[0]),
		zap.Float64("elbow", a.p.Angles[1]),
		zap.Float64("elbow_x", g.Upper[1].X),
		zap.Float64("elbow_y", g.Upper[1].Y),
	)
	// Renderers that draw on update want the label first.
	if err := a.r.SetLabel(a.h, a.Label()); err != nil {
		return fmt.Errorf("set label: %w", err)
	}
	if err := a.r.UpdateGeometry(a.h, g); err != nil {
		return fmt.Errorf("update geometry: %w", err)
	}
	return nil
}

// Close releases the renderer figure. Calling Close more than once is
// harmless.
func (a *Arm) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.log.Info("arm closed", zap.String("handle", string(a.h)))
	if err := a.r.Dispose(a.h); err != nil {
		return fmt.Errorf("dispose renderer: %w", err)
	}
	return nil
}
