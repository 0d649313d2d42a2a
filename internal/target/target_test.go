package target

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/sshooter/internal/clock"
	"github.com/tomz197/sshooter/internal/physics"
)

// recordingSurface tracks which targets the pool considers renderable.
type recordingSurface struct {
	visible map[*Target]bool
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{visible: make(map[*Target]bool)}
}

func (s *recordingSurface) Add(t *Target)    { s.visible[t] = true }
func (s *recordingSurface) Remove(t *Target) { delete(s.visible, t) }

// stubCamera sits at pos looking along dir. RayThrough treats dir as the
// screen center and offsets it by the normalized device coordinates,
// which matches pointerFor below.
type stubCamera struct {
	pos mgl64.Vec3
	dir mgl64.Vec3
}

func (c *stubCamera) WorldPosition() mgl64.Vec3  { return c.pos }
func (c *stubCamera) WorldDirection() mgl64.Vec3 { return c.dir }

func (c *stubCamera) RayThrough(ndcX, ndcY float64) physics.Ray {
	return physics.NewRay(c.pos, c.dir.Add(mgl64.Vec3{ndcX, ndcY, 0}))
}

// pointerFor inverts stubCamera.RayThrough for a camera looking along -Z:
// it returns the viewport pixel that aims exactly at p.
func pointerFor(p, eye mgl64.Vec3, vw, vh int) (px, py float64) {
	k := eye.Z() - p.Z()
	ndcX := (p.X() - eye.X()) / k
	ndcY := (p.Y() - eye.Y()) / k
	px = (ndcX + 1) * float64(vw) / 2
	py = (1 - ndcY) * float64(vh) / 2
	return px, py
}

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestPool(maxSize int) (*Pool, *recordingSurface, *clock.Manual) {
	clk := clock.NewManual(testStart)
	surface := newRecordingSurface()
	return NewPool(clk, surface, maxSize), surface, clk
}

func TestTargetResetAssignsFreshIdentity(t *testing.T) {
	pool, _, _ := newTestPool(10)

	first := pool.Acquire(mgl64.Vec3{0, 1, -5}, 0.5)
	firstID := first.ID()
	if !first.IsActive() {
		t.Fatal("acquired target should be active")
	}
	if firstID == 0 {
		t.Fatal("acquired target should have an id")
	}

	pool.Release(first)
	if first.IsActive() {
		t.Error("released target should be inactive")
	}

	second := pool.Acquire(mgl64.Vec3{1, 2, -6}, 0.8)
	if second.ID() == firstID {
		t.Errorf("recycled target kept id %d; want a fresh one", firstID)
	}
	if got := second.Position(); got != (mgl64.Vec3{1, 2, -6}) {
		t.Errorf("recycled target position = %v, want {1 2 -6}", got)
	}
	if got := second.Size(); got != 0.8 {
		t.Errorf("recycled target size = %v, want 0.8", got)
	}
}

func TestTargetSizeClamped(t *testing.T) {
	pool, _, _ := newTestPool(10)

	big := pool.Acquire(mgl64.Vec3{}, 99)
	if got := big.Size(); got != maxTargetSize {
		t.Errorf("oversize target size = %v, want %v", got, maxTargetSize)
	}

	small := pool.Acquire(mgl64.Vec3{}, 0.001)
	if got := small.Size(); got != minTargetSize {
		t.Errorf("undersize target size = %v, want %v", got, minTargetSize)
	}
}

func TestTargetSpawnAndHitTimes(t *testing.T) {
	clk := clock.NewManual(testStart)
	pool := NewPool(clk, newRecordingSurface(), 10)

	tgt := pool.Acquire(mgl64.Vec3{0, 1, -5}, 0.5)
	if !tgt.SpawnTime().Equal(testStart) {
		t.Errorf("spawn time = %v, want %v", tgt.SpawnTime(), testStart)
	}
	if !tgt.HitTime().IsZero() {
		t.Error("fresh target should have no hit time")
	}

	clk.Advance(300 * time.Millisecond)
	tgt.markHit(clk.Now())
	if tgt.IsActive() {
		t.Error("hit target should be inactive")
	}
	if got := tgt.HitTime().Sub(tgt.SpawnTime()); got != 300*time.Millisecond {
		t.Errorf("hit-to-spawn gap = %v, want 300ms", got)
	}

	// Recycling clears the per-life hit record.
	pool.Release(tgt)
	fresh := pool.Acquire(mgl64.Vec3{}, 0.5)
	if !fresh.HitTime().IsZero() {
		t.Error("recycled target should have no hit time")
	}
}

func TestInactiveTargetsNeverRenderable(t *testing.T) {
	pool, surface, _ := newTestPool(10)

	pool.Preload(4)
	if len(surface.visible) != 0 {
		t.Fatalf("preloaded targets are renderable: %d visible", len(surface.visible))
	}

	a := pool.Acquire(mgl64.Vec3{}, 0.5)
	b := pool.Acquire(mgl64.Vec3{}, 0.5)
	if len(surface.visible) != 2 {
		t.Fatalf("visible = %d, want 2", len(surface.visible))
	}

	pool.Release(a)
	if surface.visible[a] {
		t.Error("released target still renderable")
	}
	if !surface.visible[b] {
		t.Error("active target dropped from the render surface")
	}
}
