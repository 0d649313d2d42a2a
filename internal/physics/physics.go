// Package physics provides the ray casting and intersection math used for
// hit testing and miss-point feedback.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// epsilon below which an intersection distance counts as "at the origin"
// and is rejected, so rays never hit the surface they start on.
const epsilon = 1e-9

// Ray is a half-line from Origin along the unit direction Dir.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// NewRay returns a ray with dir normalized. A zero dir yields a ray that
// intersects nothing.
func NewRay(origin, dir mgl64.Vec3) Ray {
	if l := dir.Len(); l > epsilon {
		dir = dir.Mul(1 / l)
	}
	return Ray{Origin: origin, Dir: dir}
}

// At returns the point t units along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// RaySphere returns the smallest positive distance at which the ray enters
// the sphere. ok is false when the ray misses or the sphere is behind the
// origin.
func RaySphere(r Ray, center mgl64.Vec3, radius float64) (t float64, ok bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t = -b - sq
	if t < epsilon {
		// Origin inside the sphere; use the exit point.
		t = -b + sq
	}
	if t < epsilon {
		return 0, false
	}
	return t, true
}

// RayPlaneY intersects the ray with the horizontal plane y=height.
// ok is false for parallel rays and hits behind the origin.
func RayPlaneY(r Ray, height float64) (t float64, ok bool) {
	if math.Abs(r.Dir.Y()) < epsilon {
		return 0, false
	}
	t = (height - r.Origin.Y()) / r.Dir.Y()
	if t < epsilon {
		return 0, false
	}
	return t, true
}

// Room is the static practice range: a floor at y=0 and four walls of the
// given height at +/-HalfExtent on X and Z. There is no ceiling, so rays
// aimed upward can leave the room without hitting anything.
type Room struct {
	HalfExtent float64
	Height     float64
}

// Intersect returns the nearest point where the ray strikes the floor or a
// wall, for shot-feedback purposes. ok is false when the ray exits above
// the walls.
func (room Room) Intersect(r Ray) (p mgl64.Vec3, ok bool) {
	best := math.Inf(1)

	if t, hit := RayPlaneY(r, 0); hit {
		q := r.At(t)
		if math.Abs(q.X()) <= room.HalfExtent && math.Abs(q.Z()) <= room.HalfExtent {
			best = t
		}
	}

	// Walls perpendicular to X, then Z.
	for _, sign := range [2]float64{-1, 1} {
		if t, hit := rayPlaneX(r, sign*room.HalfExtent); hit && t < best {
			q := r.At(t)
			if q.Y() >= 0 && q.Y() <= room.Height && math.Abs(q.Z()) <= room.HalfExtent {
				best = t
			}
		}
		if t, hit := rayPlaneZ(r, sign*room.HalfExtent); hit && t < best {
			q := r.At(t)
			if q.Y() >= 0 && q.Y() <= room.Height && math.Abs(q.X()) <= room.HalfExtent {
				best = t
			}
		}
	}

	if math.IsInf(best, 1) {
		return mgl64.Vec3{}, false
	}
	return r.At(best), true
}

func rayPlaneX(r Ray, x float64) (t float64, ok bool) {
	if math.Abs(r.Dir.X()) < epsilon {
		return 0, false
	}
	t = (x - r.Origin.X()) / r.Dir.X()
	if t < epsilon {
		return 0, false
	}
	return t, true
}

func rayPlaneZ(r Ray, z float64) (t float64, ok bool) {
	if math.Abs(r.Dir.Z()) < epsilon {
		return 0, false
	}
	t = (z - r.Origin.Z()) / r.Dir.Z()
	if t < epsilon {
		return 0, false
	}
	return t, true
}
