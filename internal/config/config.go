// Package config loads armplot settings from defaults, an optional
// YAML file and MUSCLEARM_* environment variables.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"

	"zappem.net/pub/kinematics/musclearm"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// MUSCLEARM_ARM_ELBOW_OFFSET.
const EnvPrefix = "MUSCLEARM"

// LoggerConfig configures the zap logger.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	LogFile    string `mapstructure:"log_file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// ArmConfig holds the starting arm parameters. AttachmentOffsets is
// handed to Configure as decoded, so it may be a nested 2x2 list or a
// flat row-major list of four numbers.
type ArmConfig struct {
	Name              string      `mapstructure:"name"`
	SegmentLengths    []float64   `mapstructure:"segment_lengths"`
	JointAngles       []float64   `mapstructure:"joint_angles"`
	ElbowOffset       float64     `mapstructure:"elbow_offset"`
	AttachmentOffsets interface{} `mapstructure:"attachment_offsets"`
	Stress            []float64   `mapstructure:"stress"`
	StrainDelta       []float64   `mapstructure:"strain_delta"`
}

// RenderConfig selects the renderer and its output. Width and Height
// are in inches; html pages use 96 pixels per inch.
type RenderConfig struct {
	Format string  `mapstructure:"format"`
	Output string  `mapstructure:"output"`
	Title  string  `mapstructure:"title"`
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
	Extent float64 `mapstructure:"extent"`
}

// SweepConfig describes an angle sweep.
type SweepConfig struct {
	Parameter string  `mapstructure:"parameter"`
	From      float64 `mapstructure:"from"`
	To        float64 `mapstructure:"to"`
	Step      float64 `mapstructure:"step"`
}

// MaxFrames bounds the number of steps a sweep may take.
const MaxFrames = 10000

// Frames returns the number of whole steps taken from From towards To.
func (s SweepConfig) Frames() (int, error) {
	steps := (s.To - s.From) / s.Step
	if math.IsNaN(steps) || math.IsInf(steps, 0) {
		return 0, fmt.Errorf("sweep from %g to %g by %g has no finite step count", s.From, s.To, s.Step)
	}
	steps = math.Floor(steps + 1e-9)
	if steps < 0 {
		return 0, fmt.Errorf("sweep from %g to %g never advances with step %g", s.From, s.To, s.Step)
	}
	if steps > MaxFrames {
		return 0, fmt.Errorf("sweep from %g to %g by %g takes %g steps, limit %d", s.From, s.To, s.Step, steps, MaxFrames)
	}
	return int(steps), nil
}

// Config is the full armplot configuration.
type Config struct {
	Logger LoggerConfig `mapstructure:"logger"`
	Arm    ArmConfig    `mapstructure:"arm"`
	Render RenderConfig `mapstructure:"render"`
	Sweep  SweepConfig  `mapstructure:"sweep"`
}

// Formats lists the accepted render formats.
var Formats = []string{"png", "svg", "pdf", "html"}

// SetDefaults registers every key with its default value. The arm
// defaults match musclearm.DefaultParams.
func SetDefaults(v *viper.Viper) {
	p := musclearm.DefaultParams()

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)

	// -- Arm --
	v.SetDefault("arm.name", "")
	v.SetDefault("arm.segment_lengths", p.Lengths[:])
	v.SetDefault("arm.joint_angles", p.Angles[:])
	v.SetDefault("arm.elbow_offset", p.ElbowOffset)
	v.SetDefault("arm.attachment_offsets", [][]float64{
		p.Attachments[musclearm.Proximal][:],
		p.Attachments[musclearm.Distal][:],
	})
	v.SetDefault("arm.stress", p.Stress[:])
	v.SetDefault("arm.strain_delta", p.StrainDelta[:])

	// -- Render --
	v.SetDefault("render.format", "png")
	v.SetDefault("render.output", ".")
	v.SetDefault("render.title", "Arm")
	v.SetDefault("render.width", 6)
	v.SetDefault("render.height", 6)
	v.SetDefault("render.extent", musclearm.DefaultStyle().Extent)

	// -- Sweep --
	v.SetDefault("sweep.parameter", "elbow")
	v.SetDefault("sweep.from", 0)
	v.SetDefault("sweep.to", 120)
	v.SetDefault("sweep.step", 10)
}

// Load reads the configuration into v. An empty path skips the file
// and uses defaults and the environment only.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Render.Format = strings.ToLower(cfg.Render.Format)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the render and sweep settings. Arm parameters are
// left to musclearm.Arm.Configure.
func (c *Config) Validate() error {
	ok := false
	for _, f := range Formats {
		ok = ok || c.Render.Format == f
	}
	if !ok {
		return fmt.Errorf("render.format %q not one of %s", c.Render.Format, strings.Join(Formats, ", "))
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render size must be positive, got %gx%g", c.Render.Width, c.Render.Height)
	}
	switch c.Sweep.Parameter {
	case "shoulder", "elbow":
	default:
		return fmt.Errorf("sweep.parameter %q not shoulder or elbow", c.Sweep.Parameter)
	}
	if c.Sweep.Step == 0 {
		return fmt.Errorf("sweep.step must not be zero")
	}
	if _, err := c.Sweep.Frames(); err != nil {
		return err
	}
	return nil
}

// Updates converts the arm settings into Configure updates.
func (a ArmConfig) Updates() []musclearm.Update {
	return []musclearm.Update{
		musclearm.Set(musclearm.SegmentLengths, a.SegmentLengths),
		musclearm.Set(musclearm.JointAngles, a.JointAngles),
		musclearm.Set(musclearm.ElbowOffset, a.ElbowOffset),
		musclearm.Set(musclearm.AttachmentOffsets, a.AttachmentOffsets),
		musclearm.Set(musclearm.Stress, a.Stress),
		musclearm.Set(musclearm.StrainDelta, a.StrainDelta),
		musclearm.Set(musclearm.Name, a.Name),
	}
}

// Style returns the figure style for the render settings.
func (r RenderConfig) Style() musclearm.Style {
	s := musclearm.DefaultStyle()
	s.Extent = r.Extent
	return s
}
