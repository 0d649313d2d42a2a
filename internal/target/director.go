package target

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/sshooter/internal/clock"
	"github.com/tomz197/sshooter/internal/physics"
	"github.com/tomz197/sshooter/internal/quality"
)

// Active target count clamp range.
const (
	minTargetCount = 1
	maxTargetCount = 20
)

// backstopInterval is the recurring spawn check that repopulates targets
// if the on-hit replacement ever falls behind.
const backstopInterval = time.Second

// missFallbackDistance is how far along the shot ray the feedback point
// is synthesized when the ray leaves the room without touching geometry.
const missFallbackDistance = 10.0

// State is the director's spawn phase.
type State int

const (
	StateIdle State = iota
	StateSpawning
)

// RayCamera extends CameraSurface with pick-ray construction, which hit
// testing needs on top of position and direction.
type RayCamera interface {
	CameraSurface
	RayThrough(ndcX, ndcY float64) physics.Ray
}

// HitResult is the outcome of one shot.
type HitResult struct {
	Hit      bool
	Target   *Target    // The struck target; may already be recycled, so read Reaction and Point instead of its fields
	Point    mgl64.Vec3 // Impact point, or the feedback point on a miss
	Reaction time.Duration
}

// Director owns the active target set. It keeps the population topped up
// while spawning, resolves shots against it, and reacts to quality changes
// by resizing the population and the pool behind it.
type Director struct {
	clk    clock.Clock
	pool   *Pool
	policy *SpawnPolicy
	camera RayCamera
	room   physics.Room

	state      State
	maxTargets int
	targetSize float64

	nextBackstop time.Time
}

// NewDirector creates an idle director.
func NewDirector(clk clock.Clock, pool *Pool, policy *SpawnPolicy, camera RayCamera, room physics.Room, maxTargets int, targetSize float64) *Director {
	return &Director{
		clk:        clk,
		pool:       pool,
		policy:     policy,
		camera:     camera,
		room:       room,
		state:      StateIdle,
		maxTargets: clampInt(maxTargets, minTargetCount, maxTargetCount),
		targetSize: clampFloat(targetSize, minTargetSize, maxTargetSize),
	}
}

// StartSpawning brings the population up to the configured count and arms
// the recurring backstop. Calling it while already spawning does nothing.
func (d *Director) StartSpawning() {
	if d.state == StateSpawning {
		return
	}
	d.state = StateSpawning
	d.topUp()
	d.nextBackstop = d.clk.Now().Add(backstopInterval)
}

// StopSpawning releases every active target and disarms the backstop
// before returning, so no later update can repopulate a stopped director.
func (d *Director) StopSpawning() {
	if d.state == StateIdle {
		return
	}
	d.state = StateIdle
	d.nextBackstop = time.Time{}
	for d.pool.ActiveCount() > 0 {
		active := d.pool.Active()
		d.pool.Release(active[len(active)-1])
	}
}

// Dispose tears the director down. It currently only needs to stop
// spawning; the pool outlives the director.
func (d *Director) Dispose() {
	d.StopSpawning()
}

// Update runs the backstop: once per interval while spawning, any targets
// missing from the population are respawned. Hits replace targets
// synchronously, so this only matters when something else drained the
// pool, such as a quality downgrade followed by an upgrade.
func (d *Director) Update() {
	if d.state != StateSpawning {
		return
	}
	now := d.clk.Now()
	if now.Before(d.nextBackstop) {
		return
	}
	d.topUp()
	d.nextBackstop = now.Add(backstopInterval)
}

func (d *Director) topUp() {
	for d.pool.ActiveCount() < d.maxTargets {
		d.pool.Acquire(d.policy.Next(), d.targetSize)
	}
}

// CheckHit resolves one shot fired through the given viewport pixel.
// The pointer is converted to normalized device coordinates (y flipped to
// up-positive), a ray is cast from the camera, and the nearest active
// target along the ray wins. On a hit the target is released and, while
// spawning, a replacement is acquired before this returns. On a miss the
// feedback point is where the ray strikes the room, or a point ten units
// out when it doesn't.
func (d *Director) CheckHit(pointerX, pointerY float64, viewportW, viewportH int) HitResult {
	if viewportW <= 0 || viewportH <= 0 {
		return HitResult{}
	}
	ndcX := 2*pointerX/float64(viewportW) - 1
	ndcY := 1 - 2*pointerY/float64(viewportH)
	ray := d.camera.RayThrough(ndcX, ndcY)

	var (
		best   *Target
		bestT  float64
		anyHit bool
	)
	for _, tgt := range d.pool.Active() {
		if !tgt.IsActive() {
			continue
		}
		t, ok := physics.RaySphere(ray, tgt.Position(), tgt.Size())
		if !ok {
			continue
		}
		// Strict nearest wins; at exactly equal distance the lower id
		// keeps the result independent of list order.
		if !anyHit || t < bestT || (t == bestT && tgt.ID() < best.ID()) {
			best = tgt
			bestT = t
			anyHit = true
		}
	}

	if anyHit {
		now := d.clk.Now()
		reaction := now.Sub(best.SpawnTime())
		best.markHit(now)
		point := ray.At(bestT)
		d.pool.Release(best)
		if d.state == StateSpawning {
			d.topUp()
		}
		return HitResult{Hit: true, Target: best, Point: point, Reaction: reaction}
	}

	if p, ok := d.room.Intersect(ray); ok {
		return HitResult{Point: p}
	}
	return HitResult{Point: ray.At(missFallbackDistance)}
}

// SetMaxTargets changes the population the director maintains, clamped to
// the legal range. While spawning it takes effect immediately: missing
// targets are spawned, surplus targets are culled from the tail of the
// active list.
func (d *Director) SetMaxTargets(n int) {
	d.maxTargets = clampInt(n, minTargetCount, maxTargetCount)
	if d.state != StateSpawning {
		return
	}
	for d.pool.ActiveCount() > d.maxTargets {
		active := d.pool.Active()
		d.pool.Release(active[len(active)-1])
	}
	d.topUp()
}

// SetTargetSize changes the radius used for future spawns, clamped to the
// legal range. Targets already in play keep their size.
func (d *Director) SetTargetSize(size float64) {
	d.targetSize = clampFloat(size, minTargetSize, maxTargetSize)
}

// SetSpawnRadius resizes the spawn volume; the policy clamps it.
func (d *Director) SetSpawnRadius(r float64) {
	d.policy.SetRadius(r)
}

// State returns the current spawn phase.
func (d *Director) State() State { return d.state }

// MaxTargets returns the population the director maintains.
func (d *Director) MaxTargets() int { return d.maxTargets }

// TargetSize returns the radius used for future spawns.
func (d *Director) TargetSize() float64 { return d.targetSize }

// QualityChanged resizes the target population and the pool behind it
// when the quality tier moves. The pool is re-bounded and pre-warmed
// before the population changes so an upgrade never allocates mid-frame.
func (d *Director) QualityChanged(s quality.Settings) {
	d.pool.SetMaxPoolSize(2 * s.MaxTargets)
	d.pool.Preload(s.MaxTargets)
	d.SetMaxTargets(s.MaxTargets)
}

// Ensure Director can subscribe to the quality controller.
var _ quality.Subscriber = (*Director)(nil)
