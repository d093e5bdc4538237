package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zappem.net/pub/kinematics/musclearm"
)

// configured returns the parameters of an arm set up from cfg.
func configured(t *testing.T, cfg *Config) musclearm.Params {
	t.Helper()
	a, err := musclearm.NewArm(&musclearm.Recorder{}, musclearm.WithUpdates(cfg.Arm.Updates()...))
	require.NoError(t, err)
	defer a.Close()
	return a.Params()
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, []float64{0.315, 0.290}, cfg.Arm.SegmentLengths)
	assert.Equal(t, []float64{30, 15}, cfg.Arm.JointAngles)
	assert.Equal(t, 0.020, cfg.Arm.ElbowOffset)
	assert.Equal(t, musclearm.DefaultParams().Attachments, configured(t, cfg).Attachments)
	assert.Equal(t, "png", cfg.Render.Format)
	assert.Equal(t, "elbow", cfg.Sweep.Parameter)
}

func TestDefaultUpdatesReproduceDefaultArm(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	a, err := musclearm.NewArm(&musclearm.Recorder{}, musclearm.WithParams(musclearm.Params{}))
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Configure(cfg.Arm.Updates()...))
	assert.Equal(t, musclearm.DefaultParams(), a.Params())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logger:
  level: debug
arm:
  name: right
  segment_lengths: [0.4, 0.3]
  joint_angles: [45, 90]
  attachment_offsets:
    - [0.02, 0.04]
    - [0.03, 0.01]
render:
  format: SVG
  extent: 1.2
sweep:
  parameter: shoulder
  from: -30
  to: 30
  step: 5
`), 0o644))
	t.Setenv("MUSCLEARM_ARM_ELBOW_OFFSET", "0.05")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "right", cfg.Arm.Name)
	assert.Equal(t, []float64{0.4, 0.3}, cfg.Arm.SegmentLengths)
	assert.Equal(t, []float64{45, 90}, cfg.Arm.JointAngles)
	assert.Equal(t, 0.05, cfg.Arm.ElbowOffset)
	assert.Equal(t, [2][2]float64{{0.02, 0.04}, {0.03, 0.01}}, configured(t, cfg).Attachments)
	assert.Equal(t, "svg", cfg.Render.Format)
	assert.Equal(t, 1.2, cfg.Render.Style().Extent)
	assert.Equal(t, SweepConfig{Parameter: "shoulder", From: -30, To: 30, Step: 5}, cfg.Sweep)
}

func TestFlatAttachmentOffsets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("arm:\n  attachment_offsets: [0.01, 0.05, 0.025, 0.015]\n"), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, [2][2]float64{{0.01, 0.05}, {0.025, 0.015}}, configured(t, cfg).Attachments)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	vs := []struct {
		key   string
		value interface{}
	}{
		{"render.format", "gif"},
		{"render.width", 0},
		{"render.height", -1},
		{"sweep.parameter", "wrist"},
		{"sweep.step", 0},
		{"sweep.step", 1e-15},
		{"sweep.step", -10},
		{"sweep.from", math.NaN()},
	}
	for _, v := range vs {
		vp := viper.New()
		vp.Set(v.key, v.value)
		if _, err := Load(vp, ""); err == nil {
			t.Errorf("%s=%v: expected validation error", v.key, v.value)
		}
	}
}
