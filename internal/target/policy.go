package target

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Spawn radius clamp range.
const (
	minSpawnRadius = 5.0
	maxSpawnRadius = 25.0
)

// SpawnArea is the axis-aligned volume where targets may legally appear.
// The Z range keeps every placement in front of the player by at least the
// standoff distance, so MinX<MaxX, MinY<MaxY and MinZ<MaxZ always hold.
type SpawnArea struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// Clamp forces p back inside the area bounds. Every placement passes
// through here, which is what keeps pathological camera directions
// (straight up, behind the range) from escaping the legal volume.
func (a SpawnArea) Clamp(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		clampFloat(p.X(), a.MinX, a.MaxX),
		clampFloat(p.Y(), a.MinY, a.MaxY),
		clampFloat(p.Z(), a.MinZ, a.MaxZ),
	}
}

// SpawnParams tunes target placement.
type SpawnParams struct {
	Radius      float64 // X/Z extent of the spawn volume
	Depth       float64 // Distance to the frontal plane used for view-biased placement
	SpreadX     float64 // Horizontal jitter around the aim point
	SpreadY     float64 // Vertical jitter around the aim point
	DepthJitter float64 // Jitter along the view depth
	ViewBias    float64 // Fraction of placements biased toward the aim point
	MinY        float64 // Lowest target center height
	MaxY        float64 // Highest target center height
	Standoff    float64 // Closest a target may spawn to the player origin
}

// DefaultSpawnParams returns the built-in placement tuning.
func DefaultSpawnParams() SpawnParams {
	return SpawnParams{
		Radius:      10.0,
		Depth:       8.0,
		SpreadX:     3.0,
		SpreadY:     1.5,
		DepthJitter: 2.0,
		ViewBias:    0.7,
		MinY:        0.9,
		MaxY:        3.5,
		Standoff:    4.0,
	}
}

// SpawnPolicy picks world positions for new targets. Most placements land
// near where the player is already aiming; the remainder are uniform over
// the spawn volume so the player still has to search.
type SpawnPolicy struct {
	camera CameraSurface
	rng    *rand.Rand
	params SpawnParams
	area   SpawnArea
}

// NewSpawnPolicy creates a policy reading aim from camera and randomness
// from rng. rng must not be nil; inject a seeded source for reproducible
// placement.
func NewSpawnPolicy(camera CameraSurface, rng *rand.Rand, params SpawnParams) *SpawnPolicy {
	sp := &SpawnPolicy{
		camera: camera,
		rng:    rng,
		params: params,
	}
	sp.SetRadius(params.Radius)
	return sp
}

// Next returns the placement for one new target, clamped into the spawn
// volume.
func (sp *SpawnPolicy) Next() mgl64.Vec3 {
	var pos mgl64.Vec3
	if sp.rng.Float64() < sp.params.ViewBias {
		pos = sp.viewBiased()
	} else {
		pos = sp.uniform()
	}
	return sp.area.Clamp(pos)
}

// viewBiased projects the camera's forward direction onto the frontal
// plane at the configured depth, then jitters around that aim point. When
// the player looks away from the range the projection has no usable
// intersection, so the point straight ahead at depth is used instead; the
// final clamp reels in whatever remains out of bounds.
func (sp *SpawnPolicy) viewBiased() mgl64.Vec3 {
	eye := sp.camera.WorldPosition()
	dir := sp.camera.WorldDirection()

	aim := mgl64.Vec3{eye.X(), eye.Y(), -sp.params.Depth}
	if dir.Z() < -1e-3 {
		t := (-sp.params.Depth - eye.Z()) / dir.Z()
		aim = eye.Add(dir.Mul(t))
	}

	return mgl64.Vec3{
		aim.X() + sp.spread(sp.params.SpreadX),
		aim.Y() + sp.spread(sp.params.SpreadY),
		aim.Z() + sp.spread(sp.params.DepthJitter),
	}
}

// uniform samples each coordinate independently over the spawn volume.
func (sp *SpawnPolicy) uniform() mgl64.Vec3 {
	return mgl64.Vec3{
		sp.area.MinX + sp.rng.Float64()*(sp.area.MaxX-sp.area.MinX),
		sp.area.MinY + sp.rng.Float64()*(sp.area.MaxY-sp.area.MinY),
		sp.area.MinZ + sp.rng.Float64()*(sp.area.MaxZ-sp.area.MinZ),
	}
}

// spread returns a jitter uniform in [-half, half].
func (sp *SpawnPolicy) spread(half float64) float64 {
	return (sp.rng.Float64()*2 - 1) * half
}

// SetRadius rebuilds the spawn volume with the given X/Z extent, clamped
// to the legal range. The Z side always stops at the standoff distance so
// targets never appear on top of the player.
func (sp *SpawnPolicy) SetRadius(r float64) {
	r = clampFloat(r, minSpawnRadius, maxSpawnRadius)
	sp.params.Radius = r
	sp.area = SpawnArea{
		MinX: -r,
		MaxX: r,
		MinY: sp.params.MinY,
		MaxY: sp.params.MaxY,
		MinZ: -r,
		MaxZ: -sp.params.Standoff,
	}
}

// Radius returns the current X/Z extent of the spawn volume.
func (sp *SpawnPolicy) Radius() float64 { return sp.params.Radius }

// Area returns the current spawn volume.
func (sp *SpawnPolicy) Area() SpawnArea { return sp.area }
