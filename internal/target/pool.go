package target

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/sshooter/internal/clock"
)

// Pool capacity clamp range.
const (
	minPoolCapacity = 5
	maxPoolCapacity = 50
)

// Pool recycles Target instances so steady-state play allocates nothing.
// Every non-disposed target lives in exactly one of the two collections:
// available (inactive, ready to reuse) or active (in play, ordered by
// spawn). The director owns the active set's meaning; the pool owns the
// instances.
type Pool struct {
	clk     clock.Clock
	surface RenderSurface

	available []*Target
	active    []*Target
	maxSize   int
}

// NewPool creates a pool bounded to maxSize recyclable targets. The
// surface is told about every activation, deactivation and disposal.
func NewPool(clk clock.Clock, surface RenderSurface, maxSize int) *Pool {
	return &Pool{
		clk:     clk,
		surface: surface,
		maxSize: clampInt(maxSize, minPoolCapacity, maxPoolCapacity),
	}
}

// Acquire returns an active target at the requested placement. It reuses
// an available instance when one exists and constructs otherwise, so it
// never fails.
func (p *Pool) Acquire(pos mgl64.Vec3, size float64) *Target {
	var t *Target
	if n := len(p.available); n > 0 {
		t = p.available[n-1]
		p.available = p.available[:n-1]
	} else {
		t = &Target{}
	}
	t.reset(pos, size, p.clk.Now())
	p.active = append(p.active, t)
	p.surface.Add(t)
	return t
}

// Release returns a target to the pool. Targets not currently in the
// active set are ignored, which makes double-release harmless. When the
// available side is already full the target is disposed instead of
// recycled.
func (p *Pool) Release(t *Target) {
	idx := -1
	for i, a := range p.active {
		if a == t {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	// Splice preserves spawn order so tail culling stays deterministic.
	p.active = append(p.active[:idx], p.active[idx+1:]...)
	t.deactivate()
	p.surface.Remove(t)

	if len(p.available) < p.maxSize {
		p.available = append(p.available, t)
		return
	}
	t.dispose()
}

// Preload constructs inactive targets until the pool holds at least n
// instances overall, without exceeding the capacity bound. Preloaded
// targets are not renderable until acquired.
func (p *Pool) Preload(n int) {
	for len(p.available)+len(p.active) < n && len(p.available) < p.maxSize {
		p.available = append(p.available, &Target{})
	}
}

// SetMaxPoolSize rebounds the available side. Shrinking disposes the
// overflow immediately.
func (p *Pool) SetMaxPoolSize(n int) {
	p.maxSize = clampInt(n, minPoolCapacity, maxPoolCapacity)
	for len(p.available) > p.maxSize {
		last := len(p.available) - 1
		p.available[last].dispose()
		p.available = p.available[:last]
	}
}

// MaxPoolSize returns the current capacity bound.
func (p *Pool) MaxPoolSize() int { return p.maxSize }

// ActiveCount returns how many targets are in play.
func (p *Pool) ActiveCount() int { return len(p.active) }

// AvailableCount returns how many targets are ready to reuse.
func (p *Pool) AvailableCount() int { return len(p.available) }

// Active returns the in-play targets in spawn order. Callers must not
// mutate the slice or the targets.
func (p *Pool) Active() []*Target { return p.active }
