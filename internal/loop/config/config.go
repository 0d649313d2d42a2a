// Package config centralizes fixed game parameters.
// Operator-tunable gameplay values live in internal/config's tuning file.
package config

import "time"

// View resolution - the rendered viewport in logical pixels.
// Actual rendering scales to fit terminal size; height is in sub-pixels
// (half-blocks), so 96 means 48 terminal rows.
const (
	ViewWidth  = 160
	ViewHeight = 96
)

// Max render resolution in terminal cells. Larger terminals get the
// canvas centered with a border around it.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 48
)

// Room geometry - the practice range the player stands in. The player's
// eye sits at the origin plus EyeHeight; the floor is the y=0 plane.
const (
	RoomHalfExtent = 16.0 // Walls at +/-RoomHalfExtent on X and Z
	RoomHeight     = 8.0  // Ceiling height
	EyeHeight      = 1.6  // Camera height above the floor
)

// Camera look control.
const (
	LookSpeed     = 1.8  // Radians per second for key-held look
	MouseLookGain = 0.05 // Per-frame edge-look rate at the screen border
	EdgeLookZone  = 0.7  // Pointer ndc magnitude where edge-look engages
	MaxPitch      = 1.2  // Radians; keeps the horizon reachable
	FieldOfView   = 1.3  // Vertical FOV in radians (~75 degrees)
)

// Scoring
const (
	ScoreHit            = 100
	ScoreFastBonus      = 50   // Extra points for a quick reaction
	FastReactionSeconds = 0.35 // Reaction time that earns the full bonus
)

// Target size adjustment step for the mouse wheel.
const TargetSizeStep = 0.1

// MaxUsernameLength is the maximum display length for player usernames.
const MaxUsernameLength = 16

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// LeaderboardSize is how many top scores the hub keeps and displays.
const LeaderboardSize = 5
