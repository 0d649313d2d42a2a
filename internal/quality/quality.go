// Package quality keeps the frame rate stable by stepping rendering and
// gameplay density through discrete tiers based on measured performance.
package quality

import "strings"

// Tier is a discrete quality level. Order matters: adjustments move one
// step at a time.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

// String returns the tier name for HUD and log output.
func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	}
	return "unknown"
}

// Settings is the full parameter record a tier maps to. The renderer
// consumes the visual fields; the director consumes MaxTargets.
type Settings struct {
	Tier         Tier
	PixelRatio   float64 // Render scale applied to the canvas resolution
	ShadowDetail int     // Segments used for floor shadow outlines
	Antialias    bool    // Extra edge smoothing pass
	Shadows      bool    // Floor shadows on/off
	MaxParticles int     // Live hit-spark cap
	TargetDetail int     // Bullseye ring count per target
	MaxTargets   int     // Active target population the director maintains
}

var tierSettings = [3]Settings{
	TierLow: {
		Tier:         TierLow,
		PixelRatio:   0.5,
		ShadowDetail: 0,
		Antialias:    false,
		Shadows:      false,
		MaxParticles: 20,
		TargetDetail: 1,
		MaxTargets:   3,
	},
	TierMedium: {
		Tier:         TierMedium,
		PixelRatio:   0.75,
		ShadowDetail: 8,
		Antialias:    false,
		Shadows:      true,
		MaxParticles: 60,
		TargetDetail: 2,
		MaxTargets:   5,
	},
	TierHigh: {
		Tier:         TierHigh,
		PixelRatio:   1.0,
		ShadowDetail: 16,
		Antialias:    true,
		Shadows:      true,
		MaxParticles: 120,
		TargetDetail: 3,
		MaxTargets:   8,
	},
}

// SettingsFor returns the parameter record for a tier.
func SettingsFor(tier Tier) Settings {
	if tier < TierLow || tier > TierHigh {
		tier = TierMedium
	}
	return tierSettings[tier]
}

// Capabilities seeds the controller before any runtime samples exist, so
// the first frames are not judged against an unrealistic budget.
type Capabilities struct {
	Tier      Tier
	TargetFPS float64
	MinFPS    float64
}

// Detect probes the session for a starting tier. Terminals that cannot
// keep up with dense redraws (bare consoles, unknown TERM) start low;
// remote sessions start in the middle because every frame crosses the
// network; local rich terminals start high.
func Detect(term string, remote bool) Capabilities {
	term = strings.ToLower(term)
	switch {
	case term == "" || term == "dumb" || term == "vt100" || term == "linux":
		return Capabilities{Tier: TierLow, TargetFPS: 30, MinFPS: 15}
	case remote:
		return Capabilities{Tier: TierMedium, TargetFPS: 60, MinFPS: 30}
	default:
		return Capabilities{Tier: TierHigh, TargetFPS: 60, MinFPS: 30}
	}
}
