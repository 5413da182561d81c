package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for the localization
// engine. Every field is optional; Get* methods fall back to the built-in
// defaults when a field is absent.
type TuningConfig struct {
	// Field geometry, metres
	PitchHalfLength      *float64 `json:"pitch_half_length,omitempty"`
	PitchHalfWidth       *float64 `json:"pitch_half_width,omitempty"`
	PitchMargin          *float64 `json:"pitch_margin,omitempty"`
	GoalHalfWidth        *float64 `json:"goal_half_width,omitempty"`
	PenaltyAreaLength    *float64 `json:"penalty_area_length,omitempty"`
	PenaltyAreaHalfWidth *float64 `json:"penalty_area_half_width,omitempty"`

	// Distance quantization, log-domain steps
	StaticQStep  *float64 `json:"static_qstep,omitempty"`
	MovableQStep *float64 `json:"movable_qstep,omitempty"`

	// Bearing params
	DirBaseErr        *float64 `json:"dir_base_err,omitempty"`
	LegacyDirRounding *bool    `json:"legacy_dir_rounding,omitempty"`

	// Candidate engine params
	CandidateTargetCount *int     `json:"candidate_target_count,omitempty"`
	MaxFilterMarkers     *int     `json:"max_filter_markers,omitempty"`
	ResampleJitter       *float64 `json:"resample_jitter,omitempty"`
	BehindMatchDist2     *float64 `json:"behind_match_dist2,omitempty"`
	RNGSeed              *uint64  `json:"rng_seed,omitempty"`

	// Object localizer params
	DistChgHalfStep *float64 `json:"dist_chg_half_step,omitempty"`
	DirChgHalfStep  *float64 `json:"dir_chg_half_step,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }
func ptrUint64(v uint64) *uint64    { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field set to its
// built-in default.
func DefaultTuningConfig() *TuningConfig {
	c := EmptyTuningConfig()
	return &TuningConfig{
		PitchHalfLength:      ptrFloat64(c.GetPitchHalfLength()),
		PitchHalfWidth:       ptrFloat64(c.GetPitchHalfWidth()),
		PitchMargin:          ptrFloat64(c.GetPitchMargin()),
		GoalHalfWidth:        ptrFloat64(c.GetGoalHalfWidth()),
		PenaltyAreaLength:    ptrFloat64(c.GetPenaltyAreaLength()),
		PenaltyAreaHalfWidth: ptrFloat64(c.GetPenaltyAreaHalfWidth()),
		StaticQStep:          ptrFloat64(c.GetStaticQStep()),
		MovableQStep:         ptrFloat64(c.GetMovableQStep()),
		DirBaseErr:           ptrFloat64(c.GetDirBaseErr()),
		LegacyDirRounding:    ptrBool(c.GetLegacyDirRounding()),
		CandidateTargetCount: ptrInt(c.GetCandidateTargetCount()),
		MaxFilterMarkers:     ptrInt(c.GetMaxFilterMarkers()),
		ResampleJitter:       ptrFloat64(c.GetResampleJitter()),
		BehindMatchDist2:     ptrFloat64(c.GetBehindMatchDist2()),
		RNGSeed:              ptrUint64(c.GetRNGSeed()),
		DistChgHalfStep:      ptrFloat64(c.GetDistChgHalfStep()),
		DirChgHalfStep:       ptrFloat64(c.GetDirChgHalfStep()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,          // from internal/config/
		"../../../" + DefaultConfigPath,       // from internal/localize/
		"../../../../" + DefaultConfigPath,    // from internal/localize/l4selfpos/
		"../../../../../" + DefaultConfigPath, // from internal/localize/storage/sqlite/
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

func positive(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || *v <= 0 {
		return fmt.Errorf("%s must be positive, got %v", name, *v)
	}
	return nil
}

func nonNegative(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || *v < 0 {
		return fmt.Errorf("%s must be non-negative, got %v", name, *v)
	}
	return nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	for _, check := range []error{
		positive("pitch_half_length", c.PitchHalfLength),
		positive("pitch_half_width", c.PitchHalfWidth),
		nonNegative("pitch_margin", c.PitchMargin),
		positive("goal_half_width", c.GoalHalfWidth),
		positive("penalty_area_length", c.PenaltyAreaLength),
		positive("penalty_area_half_width", c.PenaltyAreaHalfWidth),
		positive("static_qstep", c.StaticQStep),
		positive("movable_qstep", c.MovableQStep),
		nonNegative("dir_base_err", c.DirBaseErr),
		nonNegative("resample_jitter", c.ResampleJitter),
		positive("behind_match_dist2", c.BehindMatchDist2),
		nonNegative("dist_chg_half_step", c.DistChgHalfStep),
		nonNegative("dir_chg_half_step", c.DirChgHalfStep),
	} {
		if check != nil {
			return check
		}
	}

	if c.CandidateTargetCount != nil && *c.CandidateTargetCount <= 0 {
		return fmt.Errorf("candidate_target_count must be positive, got %d", *c.CandidateTargetCount)
	}
	if c.MaxFilterMarkers != nil && *c.MaxFilterMarkers < 0 {
		return fmt.Errorf("max_filter_markers must be non-negative, got %d", *c.MaxFilterMarkers)
	}

	// Penalty box and goal must fit inside the pitch.
	if c.GetPenaltyAreaLength() >= c.GetPitchHalfLength() {
		return fmt.Errorf("penalty_area_length %v must be shorter than pitch_half_length %v",
			c.GetPenaltyAreaLength(), c.GetPitchHalfLength())
	}
	if c.GetPenaltyAreaHalfWidth() >= c.GetPitchHalfWidth() {
		return fmt.Errorf("penalty_area_half_width %v must be less than pitch_half_width %v",
			c.GetPenaltyAreaHalfWidth(), c.GetPitchHalfWidth())
	}
	if c.GetGoalHalfWidth() >= c.GetPenaltyAreaHalfWidth() {
		return fmt.Errorf("goal_half_width %v must be less than penalty_area_half_width %v",
			c.GetGoalHalfWidth(), c.GetPenaltyAreaHalfWidth())
	}

	return nil
}

// GetPitchHalfLength returns the pitch_half_length value or the default.
func (c *TuningConfig) GetPitchHalfLength() float64 {
	if c.PitchHalfLength == nil {
		return 52.5
	}
	return *c.PitchHalfLength
}

// GetPitchHalfWidth returns the pitch_half_width value or the default.
func (c *TuningConfig) GetPitchHalfWidth() float64 {
	if c.PitchHalfWidth == nil {
		return 34.0
	}
	return *c.PitchHalfWidth
}

// GetPitchMargin returns the pitch_margin value or the default.
func (c *TuningConfig) GetPitchMargin() float64 {
	if c.PitchMargin == nil {
		return 5.0
	}
	return *c.PitchMargin
}

// GetGoalHalfWidth returns the goal_half_width value or the default.
func (c *TuningConfig) GetGoalHalfWidth() float64 {
	if c.GoalHalfWidth == nil {
		return 7.01
	}
	return *c.GoalHalfWidth
}

// GetPenaltyAreaLength returns the penalty_area_length value or the default.
func (c *TuningConfig) GetPenaltyAreaLength() float64 {
	if c.PenaltyAreaLength == nil {
		return 16.5
	}
	return *c.PenaltyAreaLength
}

// GetPenaltyAreaHalfWidth returns the penalty_area_half_width value or the default.
func (c *TuningConfig) GetPenaltyAreaHalfWidth() float64 {
	if c.PenaltyAreaHalfWidth == nil {
		return 20.16
	}
	return *c.PenaltyAreaHalfWidth
}

// GetStaticQStep returns the static_qstep value or the default.
func (c *TuningConfig) GetStaticQStep() float64 {
	if c.StaticQStep == nil {
		return 0.01
	}
	return *c.StaticQStep
}

// GetMovableQStep returns the movable_qstep value or the default.
func (c *TuningConfig) GetMovableQStep() float64 {
	if c.MovableQStep == nil {
		return 0.1
	}
	return *c.MovableQStep
}

// GetDirBaseErr returns the dir_base_err value or the default.
func (c *TuningConfig) GetDirBaseErr() float64 {
	if c.DirBaseErr == nil {
		return 0.5
	}
	return *c.DirBaseErr
}

// GetLegacyDirRounding returns the legacy_dir_rounding value or the default.
func (c *TuningConfig) GetLegacyDirRounding() bool {
	if c.LegacyDirRounding == nil {
		return false
	}
	return *c.LegacyDirRounding
}

// GetCandidateTargetCount returns the candidate_target_count value or the default.
func (c *TuningConfig) GetCandidateTargetCount() int {
	if c.CandidateTargetCount == nil {
		return 50
	}
	return *c.CandidateTargetCount
}

// GetMaxFilterMarkers returns the max_filter_markers value or the default.
func (c *TuningConfig) GetMaxFilterMarkers() int {
	if c.MaxFilterMarkers == nil {
		return 30
	}
	return *c.MaxFilterMarkers
}

// GetResampleJitter returns the resample_jitter value or the default.
func (c *TuningConfig) GetResampleJitter() float64 {
	if c.ResampleJitter == nil {
		return 0.01
	}
	return *c.ResampleJitter
}

// GetBehindMatchDist2 returns the behind_match_dist2 value or the default.
func (c *TuningConfig) GetBehindMatchDist2() float64 {
	if c.BehindMatchDist2 == nil {
		return 3.0
	}
	return *c.BehindMatchDist2
}

// GetRNGSeed returns the rng_seed value or the default.
func (c *TuningConfig) GetRNGSeed() uint64 {
	if c.RNGSeed == nil {
		return 1
	}
	return *c.RNGSeed
}

// GetDistChgHalfStep returns the dist_chg_half_step value or the default.
func (c *TuningConfig) GetDistChgHalfStep() float64 {
	if c.DistChgHalfStep == nil {
		return 0.01
	}
	return *c.DistChgHalfStep
}

// GetDirChgHalfStep returns the dir_chg_half_step value or the default.
func (c *TuningConfig) GetDirChgHalfStep() float64 {
	if c.DirChgHalfStep == nil {
		return 0.05
	}
	return *c.DirChgHalfStep
}
