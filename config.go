package qem

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// Config holds every knob of a simplification session. Nothing in the
// engine falls back to a hidden default: start from DefaultConfig and
// override what you need.
type Config struct {
	// Absolute face budget. When zero, ReductionFraction of the input face
	// count is used instead.
	TargetTriangles int `json:"target_triangle_count"`
	// Fraction of faces to keep, in (0, 1]. Values above 1 are clamped to 1,
	// which runs the lossless pass only.
	ReductionFraction float64 `json:"reduction_fraction"`

	// Growth rate of the acceptance threshold across iterations.
	Aggressiveness float64 `json:"aggressiveness"`
	// Iterations between adjacency and quadric refreshes.
	UpdateRate    int `json:"update_rate"`
	MaxIterations int `json:"max_iterations"`
	// Scales the threshold schedule and is the determinant tolerance of the
	// optimal position solve.
	NumericScale float64 `json:"numeric_scale"`

	// K: exponent of the sliver penalty, and offset of the default
	// threshold schedule.
	AspectPenaltyExponent float64 `json:"aspect_penalty_exponent"`
	// Shape quality in [0, 1] below which collapses are penalised, zero
	// disables the penalty.
	AspectThreshold float64 `json:"aspect_threshold"`

	Lossless          bool    `json:"lossless"`
	LosslessThreshold float64 `json:"lossless_threshold"`
	MaxLosslessPasses int     `json:"max_lossless_passes"`

	// Lock border vertices in place. Otherwise edges touching the border
	// have their cost multiplied by BorderPenalty.
	PreserveBorder bool    `json:"preserve_border"`
	BorderPenalty  float64 `json:"border_penalty"`

	// Add a curvature term to every edge cost, so that collapses pulling a
	// vertex off a crease are put off.
	PreserveCurvature bool `json:"preserve_curvature"`

	// Angle in degrees between incident face normals beyond which a vertex
	// is treated as a seam. Zero disables the test.
	SeamAngle float64 `json:"seam_angle"`
	// Largest rotation in degrees a surviving face normal may undergo in a
	// collapse.
	MaxNormalDeviation float64 `json:"max_normal_deviation"`

	Verbose bool `json:"verbose"`

	// Threshold schedule, DefaultThreshold when nil.
	Threshold ThresholdPolicy `json:"-"`
}

func DefaultConfig() Config {
	return Config{
		ReductionFraction:     0.5,
		Aggressiveness:        7,
		UpdateRate:            5,
		MaxIterations:         100,
		NumericScale:          1e-9,
		AspectPenaltyExponent: 3,
		AspectThreshold:       0.1,
		LosslessThreshold:     1e-4,
		MaxLosslessPasses:     10000,
		PreserveBorder:        true,
		BorderPenalty:         10,
		SeamAngle:             90,
		// dot product of 0.2 between old and new normal
		MaxNormalDeviation: 78.463,
	}
}

// ThresholdPolicy maps an iteration index to the largest collapse cost that
// iteration accepts. Policies should not decrease with the iteration.
type ThresholdPolicy func(iteration int, cfg Config) float64

// DefaultThreshold is NumericScale * (iteration + K)^Aggressiveness: cheap
// collapses go first and costlier ones become admissible as iterations pass.
func DefaultThreshold(iteration int, cfg Config) float64 {
	return cfg.NumericScale * math.Pow(float64(iteration)+cfg.AspectPenaltyExponent, cfg.Aggressiveness)
}

func (cfg *Config) threshold(iteration int) float64 {
	if cfg.Threshold != nil {
		return cfg.Threshold(iteration, *cfg)
	}
	return DefaultThreshold(iteration, *cfg)
}

func invalid(name string, value interface{}) error {
	return fmt.Errorf("%w: %s = %v", ErrInvalidParameter, name, value)
}

func bad(x float64) bool {
	return math.IsNaN(x) || math.IsInf(x, 0)
}

// Validate checks every value against its domain.
func (cfg *Config) Validate() error {
	switch {
	case cfg.TargetTriangles < 0:
		return invalid("target_triangle_count", cfg.TargetTriangles)
	case cfg.TargetTriangles == 0 && (cfg.ReductionFraction <= 0 || math.IsNaN(cfg.ReductionFraction)):
		return invalid("reduction_fraction", cfg.ReductionFraction)
	case cfg.Aggressiveness < 0 || bad(cfg.Aggressiveness):
		return invalid("aggressiveness", cfg.Aggressiveness)
	case cfg.UpdateRate < 1:
		return invalid("update_rate", cfg.UpdateRate)
	case cfg.MaxIterations < 1:
		return invalid("max_iterations", cfg.MaxIterations)
	case cfg.NumericScale <= 0 || bad(cfg.NumericScale):
		return invalid("numeric_scale", cfg.NumericScale)
	case cfg.AspectPenaltyExponent < 0 || bad(cfg.AspectPenaltyExponent):
		return invalid("aspect_penalty_exponent", cfg.AspectPenaltyExponent)
	case cfg.AspectThreshold < 0 || cfg.AspectThreshold > 1 || math.IsNaN(cfg.AspectThreshold):
		return invalid("aspect_threshold", cfg.AspectThreshold)
	case cfg.LosslessThreshold < 0 || bad(cfg.LosslessThreshold):
		return invalid("lossless_threshold", cfg.LosslessThreshold)
	case cfg.MaxLosslessPasses < 1:
		return invalid("max_lossless_passes", cfg.MaxLosslessPasses)
	case cfg.BorderPenalty < 1 || bad(cfg.BorderPenalty):
		return invalid("border_penalty", cfg.BorderPenalty)
	case cfg.SeamAngle < 0 || cfg.SeamAngle > 180 || math.IsNaN(cfg.SeamAngle):
		return invalid("seam_angle", cfg.SeamAngle)
	case cfg.MaxNormalDeviation <= 0 || cfg.MaxNormalDeviation > 180 || math.IsNaN(cfg.MaxNormalDeviation):
		return invalid("max_normal_deviation", cfg.MaxNormalDeviation)
	}
	return nil
}

// resolve validates cfg and works out the face budget for a mesh with
// face_count live faces, and whether the lossless pass runs instead.
func (cfg *Config) resolve(face_count int) (target int, lossless bool, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	lossless = cfg.Lossless
	if cfg.TargetTriangles > 0 {
		target = cfg.TargetTriangles
	} else {
		fraction := cfg.ReductionFraction
		if fraction >= 1 {
			// lossless only
			fraction = 1
			lossless = true
		}
		target = int(math.Round(float64(face_count) * fraction))
	}
	if target < MinTriangles {
		err = fmt.Errorf("%w: object will not survive decimation to %d triangles",
			ErrInsufficientGeometry, target)
	}
	return
}

// LoadConfig decodes JSON from r over DefaultConfig, so a file need only
// name the values it changes.
func LoadConfig(r io.Reader) (cfg Config, err error) {
	cfg = DefaultConfig()
	if err = json.NewDecoder(r).Decode(&cfg); err != nil {
		err = fmt.Errorf("%w: could not parse config: %v", ErrInvalidParameter, err)
		return
	}
	err = cfg.Validate()
	return
}

func ReadConfigFile(config_path string) (cfg Config, err error) {
	input_file, err := os.Open(config_path)
	if err != nil {
		return
	}
	defer input_file.Close()
	return LoadConfig(input_file)
}
