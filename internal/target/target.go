// Package target implements the gameplay core: pooled target lifecycle,
// spawn placement and ray hit testing. All mutation happens on the session
// goroutine; other packages only read target state for rendering.
package target

import (
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Target size clamp range in world units.
const (
	minTargetSize = 0.1
	maxTargetSize = 2.0
)

// RenderSurface receives targets as they become visible or invisible.
type RenderSurface interface {
	Add(t *Target)
	Remove(t *Target)
}

// CameraSurface exposes the player camera to spawn placement.
type CameraSurface interface {
	WorldPosition() mgl64.Vec3
	WorldDirection() mgl64.Vec3
}

// ScoreSink is notified after the caller has interpreted a shot result.
// The core itself never computes score.
type ScoreSink interface {
	OnHit(reaction time.Duration)
	OnMiss()
}

// idCounter is shared across sessions; atomic because every SSH session
// runs its own game goroutine.
var idCounter atomic.Int64

func nextTargetID() int64 {
	return idCounter.Add(1)
}

// Target is a single spawnable practice ball. The Pool owns its lifecycle;
// a target is recycled through reset/deactivate until the pool evicts and
// disposes it.
type Target struct {
	id        int64
	pos       mgl64.Vec3
	size      float64
	spawnTime time.Time
	hitTime   time.Time
	active    bool
	disposed  bool
}

// ID returns the target's identity for this life. Reset assigns a new one.
func (t *Target) ID() int64 { return t.id }

// Position returns the target's center.
func (t *Target) Position() mgl64.Vec3 { return t.pos }

// Size returns the target's radius in world units.
func (t *Target) Size() float64 { return t.size }

// SpawnTime returns when this life began.
func (t *Target) SpawnTime() time.Time { return t.spawnTime }

// HitTime returns when the target was hit this life; zero if it wasn't.
func (t *Target) HitTime() time.Time { return t.hitTime }

// IsActive reports whether the target is in play. Inactive targets are
// never rendered and never hit-tested.
func (t *Target) IsActive() bool { return t.active }

// reset starts a new life: fresh id, requested placement, active.
func (t *Target) reset(pos mgl64.Vec3, size float64, now time.Time) {
	t.id = nextTargetID()
	t.pos = pos
	t.size = clampFloat(size, minTargetSize, maxTargetSize)
	t.spawnTime = now
	t.hitTime = time.Time{}
	t.active = true
}

// deactivate takes the target out of play and clears per-life state.
func (t *Target) deactivate() {
	t.active = false
	t.hitTime = time.Time{}
}

// markHit records the hit moment. The director releases the target right
// after, so callers read the reaction time from the HitResult, not from
// the target.
func (t *Target) markHit(now time.Time) {
	t.hitTime = now
	t.active = false
}

// dispose ends the target for good. Only the pool calls this, and only
// when evicting.
func (t *Target) dispose() {
	t.active = false
	t.disposed = true
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
