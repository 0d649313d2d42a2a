// Package render projects the 3D practice room onto the terminal canvas.
// The camera sits at a fixed eye position and only rotates; all drawing is
// wireframe on the half-block canvas.
package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/sshooter/internal/physics"
)

// nearPlane is the minimum view-space depth. Geometry closer than this is
// clipped before projection to avoid dividing by tiny depths.
const nearPlane = 0.05

// Camera is a first-person viewpoint with yaw and pitch. Yaw 0, pitch 0
// looks down negative Z; positive yaw turns right, positive pitch looks up.
type Camera struct {
	eye      mgl64.Vec3
	yaw      float64
	pitch    float64
	maxPitch float64

	// Half-extents of the view frustum at depth 1.
	halfW float64
	halfH float64
}

// NewCamera creates a camera at eye. fov is the vertical field of view in
// radians; aspect is the logical canvas width over height.
func NewCamera(eye mgl64.Vec3, fov, aspect, maxPitch float64) *Camera {
	halfH := math.Tan(fov / 2)
	return &Camera{
		eye:      eye,
		maxPitch: maxPitch,
		halfW:    halfH * aspect,
		halfH:    halfH,
	}
}

// Rotate adjusts yaw and pitch. Pitch is clamped so the view cannot flip
// over the vertical; yaw wraps freely.
func (c *Camera) Rotate(dyaw, dpitch float64) {
	c.yaw += dyaw
	if c.yaw > math.Pi {
		c.yaw -= 2 * math.Pi
	} else if c.yaw < -math.Pi {
		c.yaw += 2 * math.Pi
	}

	c.pitch += dpitch
	if c.pitch > c.maxPitch {
		c.pitch = c.maxPitch
	} else if c.pitch < -c.maxPitch {
		c.pitch = -c.maxPitch
	}
}

// Yaw returns the current yaw in radians.
func (c *Camera) Yaw() float64 {
	return c.yaw
}

// Pitch returns the current pitch in radians.
func (c *Camera) Pitch() float64 {
	return c.pitch
}

// WorldPosition returns the eye position.
func (c *Camera) WorldPosition() mgl64.Vec3 {
	return c.eye
}

// WorldDirection returns the normalized view direction.
func (c *Camera) WorldDirection() mgl64.Vec3 {
	return c.Forward()
}

// Forward returns the unit view direction.
func (c *Camera) Forward() mgl64.Vec3 {
	cp := math.Cos(c.pitch)
	return mgl64.Vec3{
		math.Sin(c.yaw) * cp,
		math.Sin(c.pitch),
		-math.Cos(c.yaw) * cp,
	}
}

// Right returns the unit vector pointing right of the view direction.
// It stays horizontal regardless of pitch.
func (c *Camera) Right() mgl64.Vec3 {
	return mgl64.Vec3{math.Cos(c.yaw), 0, math.Sin(c.yaw)}
}

// Up returns the unit vector completing the view basis.
func (c *Camera) Up() mgl64.Vec3 {
	return c.Right().Cross(c.Forward())
}

// RayThrough returns a world-space ray from the eye through the given
// normalized device coordinates, where (0,0) is the view center, x grows
// right and y grows up, and ±1 touches the frustum edge.
func (c *Camera) RayThrough(ndcX, ndcY float64) physics.Ray {
	dir := c.Forward().
		Add(c.Right().Mul(ndcX * c.halfW)).
		Add(c.Up().Mul(ndcY * c.halfH))
	return physics.NewRay(c.eye, dir)
}

// Project maps a world point to normalized device coordinates and its
// view-space depth. ok is false when the point is behind the near plane.
func (c *Camera) Project(p mgl64.Vec3) (ndcX, ndcY, depth float64, ok bool) {
	v := p.Sub(c.eye)
	depth = v.Dot(c.Forward())
	if depth < nearPlane {
		return 0, 0, depth, false
	}
	ndcX = v.Dot(c.Right()) / (depth * c.halfW)
	ndcY = v.Dot(c.Up()) / (depth * c.halfH)
	return ndcX, ndcY, depth, true
}

// ViewDepth returns the view-space depth of a world point without
// projecting it. Used for near-plane clipping of line segments.
func (c *Camera) ViewDepth(p mgl64.Vec3) float64 {
	return p.Sub(c.eye).Dot(c.Forward())
}
