package target

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/sshooter/internal/clock"
	"github.com/tomz197/sshooter/internal/physics"
	"github.com/tomz197/sshooter/internal/quality"
)

const (
	testViewportW = 80
	testViewportH = 48
)

type directorRig struct {
	clk     *clock.Manual
	surface *recordingSurface
	camera  *stubCamera
	pool    *Pool
	policy  *SpawnPolicy
	dir     *Director
}

func newDirectorRig(maxTargets int) *directorRig {
	clk := clock.NewManual(testStart)
	surface := newRecordingSurface()
	camera := &stubCamera{pos: mgl64.Vec3{0, 1.6, 0}, dir: mgl64.Vec3{0, 0, -1}}
	pool := NewPool(clk, surface, 20)
	policy := NewSpawnPolicy(camera, rand.New(rand.NewSource(99)), DefaultSpawnParams())
	room := physics.Room{HalfExtent: 16, Height: 8}
	dir := NewDirector(clk, pool, policy, camera, room, maxTargets, 0.5)
	return &directorRig{clk: clk, surface: surface, camera: camera, pool: pool, policy: policy, dir: dir}
}

// shootAt fires at the given world position through the test viewport.
func (r *directorRig) shootAt(p mgl64.Vec3) HitResult {
	px, py := pointerFor(p, r.camera.pos, testViewportW, testViewportH)
	return r.dir.CheckHit(px, py, testViewportW, testViewportH)
}

func TestDirectorStartSpawningTopsUp(t *testing.T) {
	r := newDirectorRig(3)

	if got := r.dir.State(); got != StateIdle {
		t.Fatalf("new director state = %v, want idle", got)
	}

	r.dir.StartSpawning()
	if got := r.dir.State(); got != StateSpawning {
		t.Fatalf("state after start = %v, want spawning", got)
	}
	if got := r.pool.ActiveCount(); got != 3 {
		t.Fatalf("active after start = %d, want 3", got)
	}

	// Starting again changes nothing.
	r.dir.StartSpawning()
	if got := r.pool.ActiveCount(); got != 3 {
		t.Errorf("active after duplicate start = %d, want 3", got)
	}
}

func TestDirectorStopSpawningReleasesEverything(t *testing.T) {
	r := newDirectorRig(5)
	r.dir.StartSpawning()
	r.dir.StopSpawning()

	if got := r.dir.State(); got != StateIdle {
		t.Errorf("state after stop = %v, want idle", got)
	}
	if got := r.pool.ActiveCount(); got != 0 {
		t.Errorf("active after stop = %d, want 0", got)
	}
	if got := r.pool.AvailableCount(); got != 5 {
		t.Errorf("available after stop = %d, want 5", got)
	}

	// The backstop is disarmed synchronously: no later update may
	// repopulate a stopped director.
	r.clk.Advance(5 * time.Second)
	r.dir.Update()
	if got := r.pool.ActiveCount(); got != 0 {
		t.Errorf("stopped director respawned %d targets", got)
	}
}

func TestDirectorBackstopRepopulates(t *testing.T) {
	r := newDirectorRig(3)
	r.dir.StartSpawning()

	// Drain one target behind the director's back.
	r.pool.Release(r.pool.Active()[0])
	if got := r.pool.ActiveCount(); got != 2 {
		t.Fatalf("active after drain = %d, want 2", got)
	}

	// Before the interval elapses the backstop must not fire.
	r.clk.Advance(200 * time.Millisecond)
	r.dir.Update()
	if got := r.pool.ActiveCount(); got != 2 {
		t.Fatalf("backstop fired early: active = %d", got)
	}

	r.clk.Advance(time.Second)
	r.dir.Update()
	if got := r.pool.ActiveCount(); got != 3 {
		t.Errorf("active after backstop = %d, want 3", got)
	}
}

func TestDirectorCheckHitNearestWins(t *testing.T) {
	r := newDirectorRig(3)

	near := r.pool.Acquire(mgl64.Vec3{0, 1.6, -5}, 0.5)
	far := r.pool.Acquire(mgl64.Vec3{0, 1.6, -9}, 0.5)

	res := r.dir.CheckHit(testViewportW/2, testViewportH/2, testViewportW, testViewportH)
	if !res.Hit {
		t.Fatal("center shot through two stacked targets reported a miss")
	}
	if res.Target != near {
		t.Errorf("hit target id %d, want the nearer id %d", res.Target.ID(), near.ID())
	}
	if !far.IsActive() {
		t.Error("far target was consumed by a shot that hit the near one")
	}
	want := mgl64.Vec3{0, 1.6, -4.5}
	if res.Point.Sub(want).Len() > 1e-9 {
		t.Errorf("hit point = %v, want %v", res.Point, want)
	}
}

func TestDirectorCheckHitEqualDistanceStable(t *testing.T) {
	r := newDirectorRig(3)

	first := r.pool.Acquire(mgl64.Vec3{0, 1.6, -6}, 0.5)
	second := r.pool.Acquire(mgl64.Vec3{0, 1.6, -6}, 0.5)
	if first.ID() >= second.ID() {
		t.Fatalf("expected ids to increase: %d then %d", first.ID(), second.ID())
	}

	// The winner must not depend on active-list order, so flip it.
	r.pool.active[0], r.pool.active[1] = r.pool.active[1], r.pool.active[0]

	res := r.dir.CheckHit(testViewportW/2, testViewportH/2, testViewportW, testViewportH)
	if !res.Hit {
		t.Fatal("shot through two coincident targets reported a miss")
	}
	if res.Target != first {
		t.Errorf("equidistant hit picked id %d, want the lower id %d", res.Target.ID(), first.ID())
	}
}

func TestDirectorReplenishesOnHit(t *testing.T) {
	r := newDirectorRig(3)
	r.dir.StartSpawning()
	victim := r.pool.Active()[0]

	r.clk.Advance(250 * time.Millisecond)
	res := r.shootAt(victim.Position())
	if !res.Hit {
		t.Fatalf("aimed shot at %v missed", victim.Position())
	}
	if res.Reaction != 250*time.Millisecond {
		t.Errorf("reaction = %v, want 250ms", res.Reaction)
	}

	// Replacement happens inside CheckHit, not on the next backstop tick.
	if got := r.pool.ActiveCount(); got != 3 {
		t.Errorf("active immediately after hit = %d, want 3", got)
	}
}

func TestDirectorNoReplenishWhenIdle(t *testing.T) {
	r := newDirectorRig(3)
	planted := r.pool.Acquire(mgl64.Vec3{0, 1.6, -6}, 0.5)

	res := r.shootAt(planted.Position())
	if !res.Hit {
		t.Fatal("aimed shot missed the planted target")
	}
	if got := r.pool.ActiveCount(); got != 0 {
		t.Errorf("idle director spawned a replacement: active = %d", got)
	}
}

func TestDirectorMissFeedbackPoints(t *testing.T) {
	r := newDirectorRig(3)

	// Straight ahead with no targets: the far wall provides the point.
	res := r.dir.CheckHit(testViewportW/2, testViewportH/2, testViewportW, testViewportH)
	if res.Hit {
		t.Fatal("shot in an empty room reported a hit")
	}
	wantWall := mgl64.Vec3{0, 1.6, -16}
	if res.Point.Sub(wantWall).Len() > 1e-9 {
		t.Errorf("miss point = %v, want far wall %v", res.Point, wantWall)
	}

	// Aimed at the sky: nothing to hit, so the point is synthesized ten
	// units out along the ray.
	res = r.dir.CheckHit(testViewportW/2, 0, testViewportW, testViewportH)
	if res.Hit {
		t.Fatal("sky shot reported a hit")
	}
	ray := physics.NewRay(r.camera.pos, mgl64.Vec3{0, 1, -1})
	wantSky := ray.At(missFallbackDistance)
	if res.Point.Sub(wantSky).Len() > 1e-9 {
		t.Errorf("sky miss point = %v, want %v", res.Point, wantSky)
	}
}

func TestDirectorSetMaxTargetsCullsFromTail(t *testing.T) {
	r := newDirectorRig(5)
	r.dir.StartSpawning()

	order := append([]*Target(nil), r.pool.Active()...)
	r.dir.SetMaxTargets(3)

	if got := r.pool.ActiveCount(); got != 3 {
		t.Fatalf("active after shrink = %d, want 3", got)
	}
	for i, tgt := range r.pool.Active() {
		if tgt != order[i] {
			t.Fatalf("culling disturbed the head of the active list at %d", i)
		}
	}
	for _, tgt := range order[3:] {
		if tgt.IsActive() {
			t.Error("tail target survived the cull")
		}
	}

	r.dir.SetMaxTargets(7)
	if got := r.pool.ActiveCount(); got != 7 {
		t.Errorf("active after grow = %d, want 7", got)
	}
}

func TestDirectorSettersClamp(t *testing.T) {
	r := newDirectorRig(5)

	r.dir.SetMaxTargets(1000)
	if got := r.dir.MaxTargets(); got != maxTargetCount {
		t.Errorf("max targets = %d, want %d", got, maxTargetCount)
	}
	r.dir.SetMaxTargets(0)
	if got := r.dir.MaxTargets(); got != minTargetCount {
		t.Errorf("max targets = %d, want %d", got, minTargetCount)
	}

	r.dir.SetTargetSize(50)
	if got := r.dir.TargetSize(); got != maxTargetSize {
		t.Errorf("target size = %v, want %v", got, maxTargetSize)
	}
	r.dir.SetTargetSize(0)
	if got := r.dir.TargetSize(); got != minTargetSize {
		t.Errorf("target size = %v, want %v", got, minTargetSize)
	}

	r.dir.SetSpawnRadius(1000)
	if got := r.policy.Radius(); got != maxSpawnRadius {
		t.Errorf("spawn radius = %v, want %v", got, maxSpawnRadius)
	}
}

func TestDirectorQualityChangedResizesPopulation(t *testing.T) {
	r := newDirectorRig(8)
	r.dir.StartSpawning()
	if got := r.pool.ActiveCount(); got != 8 {
		t.Fatalf("active before downgrade = %d, want 8", got)
	}

	r.dir.QualityChanged(quality.SettingsFor(quality.TierLow))
	low := quality.SettingsFor(quality.TierLow)
	if got := r.pool.ActiveCount(); got != low.MaxTargets {
		t.Errorf("active after downgrade = %d, want %d", got, low.MaxTargets)
	}
	if got := r.pool.MaxPoolSize(); got != 2*low.MaxTargets {
		t.Errorf("pool bound after downgrade = %d, want %d", got, 2*low.MaxTargets)
	}

	r.dir.QualityChanged(quality.SettingsFor(quality.TierHigh))
	high := quality.SettingsFor(quality.TierHigh)
	if got := r.pool.ActiveCount(); got != high.MaxTargets {
		t.Errorf("active after upgrade = %d, want %d", got, high.MaxTargets)
	}
}

func TestDirectorHitPointOnSphereSurface(t *testing.T) {
	r := newDirectorRig(3)
	tgt := r.pool.Acquire(mgl64.Vec3{2, 1.6, -7}, 0.5)

	res := r.shootAt(tgt.Position())
	if !res.Hit {
		t.Fatal("aimed shot missed")
	}
	// The impact point sits on the sphere, one radius from the center.
	if d := res.Point.Sub(tgt.Position()).Len(); math.Abs(d-0.5) > 1e-6 {
		t.Errorf("hit point %v is %v from center, want 0.5", res.Point, d)
	}
}
