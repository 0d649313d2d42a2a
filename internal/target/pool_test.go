package target

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestPoolWarmStart(t *testing.T) {
	pool, _, _ := newTestPool(20)

	pool.Preload(10)
	if got, want := pool.AvailableCount(), 10; got != want {
		t.Fatalf("available after preload = %d, want %d", got, want)
	}
	if got := pool.ActiveCount(); got != 0 {
		t.Fatalf("active after preload = %d, want 0", got)
	}

	for i := 0; i < 10; i++ {
		pool.Acquire(mgl64.Vec3{float64(i), 1, -6}, 0.5)
	}
	if got := pool.ActiveCount(); got != 10 {
		t.Fatalf("active after draining preload = %d, want 10", got)
	}
	if got := pool.AvailableCount(); got != 0 {
		t.Fatalf("available after draining preload = %d, want 0", got)
	}

	// The pool is empty now; the next acquire must construct.
	extra := pool.Acquire(mgl64.Vec3{0, 1, -6}, 0.5)
	if extra == nil || !extra.IsActive() {
		t.Fatal("acquire on an empty pool must still produce an active target")
	}
	if got := pool.ActiveCount(); got != 11 {
		t.Fatalf("active after overflow acquire = %d, want 11", got)
	}
}

func TestPoolPreloadRespectsCapacity(t *testing.T) {
	pool, _, _ := newTestPool(5)

	pool.Preload(100)
	if got := pool.AvailableCount(); got != 5 {
		t.Errorf("available after oversized preload = %d, want 5", got)
	}
}

func TestPoolDoubleReleaseIsNoOp(t *testing.T) {
	pool, _, _ := newTestPool(10)

	tgt := pool.Acquire(mgl64.Vec3{}, 0.5)
	pool.Release(tgt)
	availAfterFirst := pool.AvailableCount()

	pool.Release(tgt)
	if got := pool.AvailableCount(); got != availAfterFirst {
		t.Errorf("double release changed available: %d -> %d", availAfterFirst, got)
	}
	if got := pool.ActiveCount(); got != 0 {
		t.Errorf("double release left active = %d, want 0", got)
	}

	// Releasing a target the pool has never seen is equally harmless.
	pool.Release(&Target{})
	if got := pool.AvailableCount(); got != availAfterFirst {
		t.Errorf("foreign release changed available: %d -> %d", availAfterFirst, got)
	}
}

func TestPoolDisposesBeyondCapacity(t *testing.T) {
	pool, surface, _ := newTestPool(5)

	targets := make([]*Target, 0, 8)
	for i := 0; i < 8; i++ {
		targets = append(targets, pool.Acquire(mgl64.Vec3{}, 0.5))
	}

	for _, tgt := range targets {
		pool.Release(tgt)
	}
	if got := pool.AvailableCount(); got != 5 {
		t.Errorf("available after releasing 8 into capacity 5 = %d, want 5", got)
	}

	disposed := 0
	for _, tgt := range targets {
		if tgt.disposed {
			disposed++
		}
	}
	if disposed != 3 {
		t.Errorf("disposed = %d, want 3", disposed)
	}
	if len(surface.visible) != 0 {
		t.Errorf("%d targets still renderable after release", len(surface.visible))
	}
}

func TestPoolShrinkDisposesOverflow(t *testing.T) {
	pool, _, _ := newTestPool(20)

	pool.Preload(12)
	pool.SetMaxPoolSize(5)
	if got := pool.AvailableCount(); got != 5 {
		t.Errorf("available after shrink = %d, want 5", got)
	}
	if got := pool.MaxPoolSize(); got != 5 {
		t.Errorf("max pool size = %d, want 5", got)
	}
}

func TestPoolCapacityClamped(t *testing.T) {
	pool, _, _ := newTestPool(1000)
	if got := pool.MaxPoolSize(); got != maxPoolCapacity {
		t.Errorf("oversized pool bound = %d, want %d", got, maxPoolCapacity)
	}

	pool.SetMaxPoolSize(0)
	if got := pool.MaxPoolSize(); got != minPoolCapacity {
		t.Errorf("undersized pool bound = %d, want %d", got, minPoolCapacity)
	}
}

// TestPoolConservation drives a random acquire/release sequence and checks
// that every live target sits in exactly one of the two collections.
func TestPoolConservation(t *testing.T) {
	pool, _, _ := newTestPool(10)
	rng := rand.New(rand.NewSource(42))

	for step := 0; step < 500; step++ {
		if rng.Intn(2) == 0 || pool.ActiveCount() == 0 {
			pool.Acquire(mgl64.Vec3{}, 0.5)
		} else {
			idx := rng.Intn(pool.ActiveCount())
			pool.Release(pool.Active()[idx])
		}

		seen := make(map[*Target]int)
		for _, tgt := range pool.active {
			seen[tgt]++
		}
		for _, tgt := range pool.available {
			seen[tgt]++
		}
		for tgt, n := range seen {
			if n != 1 {
				t.Fatalf("step %d: target %d appears in %d collections", step, tgt.ID(), n)
			}
		}
		if pool.AvailableCount() > pool.MaxPoolSize() {
			t.Fatalf("step %d: available %d exceeds bound %d",
				step, pool.AvailableCount(), pool.MaxPoolSize())
		}
	}
}
