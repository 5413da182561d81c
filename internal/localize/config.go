package localize

import (
	"github.com/banshee-data/fieldpose/internal/config"
	"github.com/banshee-data/fieldpose/internal/localize/l2field"
	"github.com/banshee-data/fieldpose/internal/localize/l3bearing"
	"github.com/banshee-data/fieldpose/internal/localize/l4selfpos"
	"github.com/banshee-data/fieldpose/internal/localize/l5objects"
)

// FieldGeometryFromTuning builds the field dimensions from cfg.
func FieldGeometryFromTuning(cfg *config.TuningConfig) l2field.FieldGeometry {
	return l2field.FieldGeometry{
		PitchHalfLength:      cfg.GetPitchHalfLength(),
		PitchHalfWidth:       cfg.GetPitchHalfWidth(),
		PitchMargin:          cfg.GetPitchMargin(),
		GoalHalfWidth:        cfg.GetGoalHalfWidth(),
		PenaltyAreaLength:    cfg.GetPenaltyAreaLength(),
		PenaltyAreaHalfWidth: cfg.GetPenaltyAreaHalfWidth(),
	}
}

// ResolverFromTuning builds the bearing resolver from cfg.
func ResolverFromTuning(cfg *config.TuningConfig) l3bearing.Resolver {
	return l3bearing.Resolver{
		BaseErr: cfg.GetDirBaseErr(),
		Legacy:  cfg.GetLegacyDirRounding(),
	}
}

// SelfPosParamsFromTuning builds the candidate engine tuning from cfg.
func SelfPosParamsFromTuning(cfg *config.TuningConfig) l4selfpos.Params {
	return l4selfpos.Params{
		TargetCount:      cfg.GetCandidateTargetCount(),
		MaxMarkers:       cfg.GetMaxFilterMarkers(),
		Jitter:           cfg.GetResampleJitter(),
		BehindMatchDist2: cfg.GetBehindMatchDist2(),
	}
}

// ObjectParamsFromTuning builds the object localizer tuning from cfg.
func ObjectParamsFromTuning(cfg *config.TuningConfig) l5objects.Params {
	return l5objects.Params{
		DistChgHalfStep: cfg.GetDistChgHalfStep(),
		DirChgHalfStep:  cfg.GetDirChgHalfStep(),
	}
}
