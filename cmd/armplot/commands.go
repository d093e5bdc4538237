package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/plot/vg"

	"zappem.net/pub/kinematics/musclearm"
	"zappem.net/pub/kinematics/musclearm/chartrender"
	"zappem.net/pub/kinematics/musclearm/internal/config"
	"zappem.net/pub/kinematics/musclearm/internal/observability"
	"zappem.net/pub/kinematics/musclearm/plotrender"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *zap.Logger
	console zapcore.WriteSyncer
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(zapcore.Lock(os.Stderr))
}

// newRootCmdWith builds the command tree logging to console.
func newRootCmdWith(console zapcore.WriteSyncer) *cobra.Command {
	a := &app{v: viper.New(), console: console}

	root := &cobra.Command{
		Use:          "armplot",
		Short:        "Draw a two segment arm with its biceps and triceps",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = observability.New(cfg.Logger, a.console)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.log == nil {
				return nil
			}
			return observability.Sync(a.log)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "YAML configuration file")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("format", "png", "output format (png, svg, pdf, html)")
	pf.StringP("output", "o", ".", "output directory")
	pf.String("name", "", "arm name shown as the figure label")
	for key, flag := range map[string]string{
		"logger.level":  "log-level",
		"render.format": "format",
		"render.output": "output",
		"arm.name":      "name",
	} {
		if err := a.v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(a.renderCmd(), a.sweepCmd(), a.reachCmd())
	return root
}

// renderer builds the renderer selected by the configuration.
func (a *app) renderer() musclearm.Renderer {
	rc := a.cfg.Render
	if rc.Format == "html" {
		r := chartrender.New(chartrender.FileOpener(rc.Output, "arm"), a.log)
		r.Width = fmt.Sprintf("%dpx", int(rc.Width*96))
		r.Height = fmt.Sprintf("%dpx", int(rc.Height*96))
		return r
	}
	r := plotrender.New(rc.Output, rc.Format, a.log)
	r.Width = vg.Length(rc.Width) * vg.Inch
	r.Height = vg.Length(rc.Height) * vg.Inch
	return r
}

// withArm runs fn on an arm built from the configuration and always
// closes it.
func (a *app) withArm(fn func(arm *musclearm.Arm) error) (err error) {
	arm, err := musclearm.NewArm(a.renderer(),
		musclearm.WithLogger(a.log),
		musclearm.WithTitle(a.cfg.Render.Title),
		musclearm.WithStyle(a.cfg.Render.Style()),
		musclearm.WithUpdates(a.cfg.Arm.Updates()...),
	)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, arm.Close())
	}()
	return fn(arm)
}

// report prints the pose of arm.
func report(w io.Writer, arm *musclearm.Arm) {
	p := arm.Params()
	wr := p.Wrist()
	b, t := arm.MuscleLengths()
	fmt.Fprintf(w, "shoulder=%.2f elbow=%.2f wrist=(%.4f, %.4f) biceps=%.4f triceps=%.4f\n",
		p.Angles[0], p.Angles[1], wr.X, wr.Y, b, t)
}

func (a *app) renderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Render the configured pose once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withArm(func(arm *musclearm.Arm) error {
				report(cmd.OutOrStdout(), arm)
				a.log.Info("rendered arm", zap.String("output", a.cfg.Render.Output))
				return nil
			})
		},
	}
}

// sweepPaces plans the joint angles visited by a sweep of one angle
// starting from the pose angles.
func sweepPaces(angles [2]float64, s config.SweepConfig) ([]musclearm.Pace, error) {
	n, err := s.Frames()
	if err != nil {
		return nil, err
	}
	i := 1
	if s.Parameter == "shoulder" {
		i = 0
	}
	from, to := angles, angles
	from[i] = s.From
	to[i] = s.From + float64(n)*s.Step
	return musclearm.Joined(from, to, n), nil
}

func (a *app) sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Render one frame per step while sweeping an angle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withArm(func(arm *musclearm.Arm) error {
				paces, err := sweepPaces(arm.Params().Angles, a.cfg.Sweep)
				if err != nil {
					return err
				}
				for _, p := range paces {
					if err := cmd.Context().Err(); err != nil {
						return err
					}
					if err := arm.Configure(musclearm.Set(musclearm.JointAngles, p.J)); err != nil {
						return err
					}
					report(cmd.OutOrStdout(), arm)
				}
				a.log.Info("sweep done", zap.Int("frames", len(paces)), zap.String("parameter", a.cfg.Sweep.Parameter))
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.String("parameter", "elbow", "angle to sweep (shoulder or elbow)")
	f.Float64("from", 0, "first angle in degrees")
	f.Float64("to", 120, "last angle in degrees")
	f.Float64("step", 10, "angle increment in degrees")
	for _, k := range []string{"parameter", "from", "to", "step"} {
		if err := a.v.BindPFlag("sweep."+k, f.Lookup(k)); err != nil {
			panic(err)
		}
	}
	return cmd
}

func (a *app) reachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reach X Y",
		Short: "Move the wrist to (X, Y) meters and render the pose",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var xy [2]float64
			for i, s := range args {
				f, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return fmt.Errorf("bad coordinate %q: %w", s, err)
				}
				xy[i] = f
			}
			return a.withArm(func(arm *musclearm.Arm) error {
				if err := arm.Reach(musclearm.Point{X: xy[0], Y: xy[1]}); err != nil {
					return fmt.Errorf("reach (%g, %g): %w", xy[0], xy[1], err)
				}
				report(cmd.OutOrStdout(), arm)
				return nil
			})
		},
	}
}
