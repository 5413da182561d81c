package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	// Test that defaults are set via pointers
	if cfg.PitchHalfLength == nil || *cfg.PitchHalfLength != 52.5 {
		t.Errorf("Expected PitchHalfLength 52.5, got %v", cfg.PitchHalfLength)
	}
	if cfg.StaticQStep == nil || *cfg.StaticQStep != 0.01 {
		t.Errorf("Expected StaticQStep 0.01, got %v", cfg.StaticQStep)
	}
	if cfg.LegacyDirRounding == nil || *cfg.LegacyDirRounding != false {
		t.Errorf("Expected LegacyDirRounding false, got %v", cfg.LegacyDirRounding)
	}
	if cfg.RNGSeed == nil || *cfg.RNGSeed != 1 {
		t.Errorf("Expected RNGSeed 1, got %v", cfg.RNGSeed)
	}

	// Test getter methods
	if cfg.GetMovableQStep() != 0.1 {
		t.Errorf("GetMovableQStep() = %f, want 0.1", cfg.GetMovableQStep())
	}
	if cfg.GetCandidateTargetCount() != 50 {
		t.Errorf("GetCandidateTargetCount() = %d, want 50", cfg.GetCandidateTargetCount())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "static_qstep": 0.02,
  "legacy_dir_rounding": true,
  "candidate_target_count": 80,
  "behind_match_dist2": 4.5,
  "rng_seed": 99
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetStaticQStep() != 0.02 {
		t.Errorf("Expected StaticQStep 0.02, got %v", cfg.GetStaticQStep())
	}
	if !cfg.GetLegacyDirRounding() {
		t.Error("Expected LegacyDirRounding true")
	}
	if cfg.GetCandidateTargetCount() != 80 {
		t.Errorf("Expected CandidateTargetCount 80, got %d", cfg.GetCandidateTargetCount())
	}
	if cfg.GetBehindMatchDist2() != 4.5 {
		t.Errorf("Expected BehindMatchDist2 4.5, got %v", cfg.GetBehindMatchDist2())
	}
	if cfg.GetRNGSeed() != 99 {
		t.Errorf("Expected RNGSeed 99, got %d", cfg.GetRNGSeed())
	}

	// Omitted fields keep their defaults.
	if cfg.GetMovableQStep() != 0.1 {
		t.Errorf("Expected default MovableQStep 0.1, got %v", cfg.GetMovableQStep())
	}
	if cfg.GetPitchHalfWidth() != 34.0 {
		t.Errorf("Expected default PitchHalfWidth 34, got %v", cfg.GetPitchHalfWidth())
	}
}

func TestLoadTuningConfigMissing(t *testing.T) {
	_, err := LoadTuningConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadTuningConfigInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_config.json")

	invalidJSON := `{
  "static_qstep": "invalid"
`
	if err := os.WriteFile(configPath, []byte(invalidJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestLoadTuningConfigRejectsInvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.json")

	if err := os.WriteFile(configPath, []byte(`{"movable_qstep": 0}`), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	if _, err := LoadTuningConfig(configPath); err == nil {
		t.Error("Expected validation error for zero movable_qstep, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TuningConfig
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     DefaultTuningConfig(),
			wantErr: false,
		},
		{
			name:    "empty config is valid",
			cfg:     &TuningConfig{},
			wantErr: false,
		},
		{
			name:    "negative pitch length",
			cfg:     &TuningConfig{PitchHalfLength: ptrFloat64(-1)},
			wantErr: true,
		},
		{
			name:    "zero static step",
			cfg:     &TuningConfig{StaticQStep: ptrFloat64(0)},
			wantErr: true,
		},
		{
			name:    "negative margin",
			cfg:     &TuningConfig{PitchMargin: ptrFloat64(-0.5)},
			wantErr: true,
		},
		{
			name:    "zero margin is allowed",
			cfg:     &TuningConfig{PitchMargin: ptrFloat64(0)},
			wantErr: false,
		},
		{
			name:    "zero target count",
			cfg:     &TuningConfig{CandidateTargetCount: ptrInt(0)},
			wantErr: true,
		},
		{
			name:    "negative filter markers",
			cfg:     &TuningConfig{MaxFilterMarkers: ptrInt(-1)},
			wantErr: true,
		},
		{
			name:    "negative jitter",
			cfg:     &TuningConfig{ResampleJitter: ptrFloat64(-0.01)},
			wantErr: true,
		},
		{
			name:    "zero behind match radius",
			cfg:     &TuningConfig{BehindMatchDist2: ptrFloat64(0)},
			wantErr: true,
		},
		{
			name:    "penalty area longer than half pitch",
			cfg:     &TuningConfig{PenaltyAreaLength: ptrFloat64(60)},
			wantErr: true,
		},
		{
			name:    "goal wider than penalty area",
			cfg:     &TuningConfig{GoalHalfWidth: ptrFloat64(25)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDefaultConfigFile(t *testing.T) {
	cfg, err := LoadTuningConfig("../../config/tuning.defaults.json")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	// The file and the built-in defaults must agree.
	def := EmptyTuningConfig()
	if cfg.GetStaticQStep() != def.GetStaticQStep() {
		t.Errorf("static_qstep: file %v, built-in %v", cfg.GetStaticQStep(), def.GetStaticQStep())
	}
	if cfg.GetBehindMatchDist2() != def.GetBehindMatchDist2() {
		t.Errorf("behind_match_dist2: file %v, built-in %v", cfg.GetBehindMatchDist2(), def.GetBehindMatchDist2())
	}
	if cfg.GetPenaltyAreaHalfWidth() != def.GetPenaltyAreaHalfWidth() {
		t.Errorf("penalty_area_half_width: file %v, built-in %v", cfg.GetPenaltyAreaHalfWidth(), def.GetPenaltyAreaHalfWidth())
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetMaxFilterMarkers() != 30 {
		t.Errorf("Expected MaxFilterMarkers 30, got %d", cfg.GetMaxFilterMarkers())
	}
}

func TestLoadTuningConfigRejectsPathTraversal(t *testing.T) {
	// Path traversal with ".." is allowed since this is a CLI-only flag,
	// but the file must still have a .json extension.
	_, err := LoadTuningConfig("../../etc/passwd")
	if err == nil {
		t.Error("Expected error for non-.json path, got nil")
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	_, err := LoadTuningConfig("/some/path/config.yaml")
	if err == nil {
		t.Error("Expected error for non-.json extension, got nil")
	}
}

func TestLoadTuningConfigRejectsLargeFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "large.json")

	// Create a file larger than 1MB
	largeData := make([]byte, 2*1024*1024) // 2MB
	if err := os.WriteFile(configPath, largeData, 0644); err != nil {
		t.Fatalf("Failed to write large file: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error for file size > 1MB, got nil")
	}
}

func TestGetterDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	floatChecks := []struct {
		name string
		got  float64
		want float64
	}{
		{"pitch_half_length", cfg.GetPitchHalfLength(), 52.5},
		{"pitch_half_width", cfg.GetPitchHalfWidth(), 34.0},
		{"pitch_margin", cfg.GetPitchMargin(), 5.0},
		{"goal_half_width", cfg.GetGoalHalfWidth(), 7.01},
		{"penalty_area_length", cfg.GetPenaltyAreaLength(), 16.5},
		{"penalty_area_half_width", cfg.GetPenaltyAreaHalfWidth(), 20.16},
		{"static_qstep", cfg.GetStaticQStep(), 0.01},
		{"movable_qstep", cfg.GetMovableQStep(), 0.1},
		{"dir_base_err", cfg.GetDirBaseErr(), 0.5},
		{"resample_jitter", cfg.GetResampleJitter(), 0.01},
		{"behind_match_dist2", cfg.GetBehindMatchDist2(), 3.0},
		{"dist_chg_half_step", cfg.GetDistChgHalfStep(), 0.01},
		{"dir_chg_half_step", cfg.GetDirChgHalfStep(), 0.05},
	}
	for _, c := range floatChecks {
		if c.got != c.want {
			t.Errorf("%s default = %v, want %v", c.name, c.got, c.want)
		}
	}

	if cfg.GetLegacyDirRounding() {
		t.Error("legacy_dir_rounding should default to false")
	}
	if cfg.GetCandidateTargetCount() != 50 {
		t.Errorf("candidate_target_count default = %d, want 50", cfg.GetCandidateTargetCount())
	}
	if cfg.GetMaxFilterMarkers() != 30 {
		t.Errorf("max_filter_markers default = %d, want 30", cfg.GetMaxFilterMarkers())
	}
	if cfg.GetRNGSeed() != 1 {
		t.Errorf("rng_seed default = %d, want 1", cfg.GetRNGSeed())
	}
}
