package render

import (
	"math"
	"math/rand"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// sparkPool is a sync.Pool for reusing spark objects to reduce allocations.
var sparkPool = sync.Pool{
	New: func() any {
		return &spark{}
	},
}

// Spark motion constants.
const (
	sparkGravity = 9.0
	sparkDrag    = 0.9

	// sparkBurstCount is how many sparks a hit tries to emit before the
	// particle budget is applied.
	sparkBurstCount = 18
)

// spark is a short-lived 3D particle thrown off a hit target.
type spark struct {
	pos         mgl64.Vec3
	vel         mgl64.Vec3
	lifetime    float64 // Seconds remaining
	maxLifetime float64 // Initial lifetime (for fade calculation)
}

// newSpark fetches a spark from the pool.
func newSpark(pos, vel mgl64.Vec3, lifetime float64) *spark {
	sp := sparkPool.Get().(*spark)
	sp.pos = pos
	sp.vel = vel
	sp.lifetime = lifetime
	sp.maxLifetime = lifetime
	return sp
}

// release returns the spark to the pool for reuse.
func (sp *spark) release() {
	sparkPool.Put(sp)
}

// update moves the spark and reports whether it expired. Sparks die when
// their lifetime runs out or when they reach the floor.
func (sp *spark) update(dt float64) bool {
	sp.lifetime -= dt
	if sp.lifetime <= 0 {
		return true
	}

	dragFactor := math.Pow(sparkDrag, dt*60) // Normalize drag to ~60fps
	sp.vel = sp.vel.Mul(dragFactor)
	sp.vel[1] -= sparkGravity * dt

	sp.pos = sp.pos.Add(sp.vel.Mul(dt))
	return sp.pos.Y() < 0
}

// spawnSparks emits a burst at the impact point, clipped to the particle
// budget of the current quality tier.
func (s *Scene) spawnSparks(at mgl64.Vec3) {
	budget := s.settings.MaxParticles - len(s.sparks)
	count := sparkBurstCount
	if count > budget {
		count = budget
	}

	for i := 0; i < count; i++ {
		// Uniform direction on the sphere with a small upward kick.
		theta := rand.Float64() * 2 * math.Pi
		phi := math.Acos(1 - 2*rand.Float64())
		dir := mgl64.Vec3{
			math.Sin(phi) * math.Cos(theta),
			math.Cos(phi),
			math.Sin(phi) * math.Sin(theta),
		}

		speed := 2.0 + rand.Float64()*3.0
		vel := dir.Mul(speed)
		vel[1] += 1.5

		lifetime := 0.3 + rand.Float64()*0.4
		s.sparks = append(s.sparks, newSpark(at, vel, lifetime))
	}
}
