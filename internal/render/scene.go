package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/sshooter/internal/draw"
	"github.com/tomz197/sshooter/internal/quality"
	"github.com/tomz197/sshooter/internal/target"
)

// floorGridStep is the spacing of floor grid lines in world units. The
// grid is the main depth cue in a wireframe room, so it stays on at
// every quality tier.
const floorGridStep = 4.0

// Durations for transient impact markers, in seconds.
const (
	hitMarkDuration  = 0.25
	missMarkDuration = 0.15
)

// impactMark is a short-lived marker at a shot's point of impact.
type impactMark struct {
	point mgl64.Vec3
	age   float64
	max   float64
	hit   bool
}

// Scene rasterizes the practice room, targets, and effects onto a canvas.
// It is the render surface targets get attached to: the pool adds a
// target when it activates and removes it on release, so the scene never
// sees an inactive target unless it checks for itself.
type Scene struct {
	camera *Camera
	canvas *draw.Canvas

	roomExtent float64
	roomHeight float64

	targets  []*target.Target
	sparks   []*spark
	marks    []impactMark
	settings quality.Settings
}

// NewScene creates a scene for a room of the given half-extent and wall
// height, starting at medium quality until a controller says otherwise.
func NewScene(camera *Camera, canvas *draw.Canvas, roomExtent, roomHeight float64) *Scene {
	return &Scene{
		camera:     camera,
		canvas:     canvas,
		roomExtent: roomExtent,
		roomHeight: roomHeight,
		settings:   quality.SettingsFor(quality.TierMedium),
	}
}

// Add attaches a target to the scene.
func (s *Scene) Add(t *target.Target) {
	s.targets = append(s.targets, t)
}

// Remove detaches a target from the scene.
func (s *Scene) Remove(t *target.Target) {
	for i, cur := range s.targets {
		if cur == t {
			s.targets = append(s.targets[:i], s.targets[i+1:]...)
			return
		}
	}
}

// TargetCount returns the number of attached targets.
func (s *Scene) TargetCount() int {
	return len(s.targets)
}

// QualityChanged applies new quality settings: render scale follows the
// pixel ratio and the spark list is trimmed to the new particle budget.
func (s *Scene) QualityChanged(settings quality.Settings) {
	s.settings = settings
	s.canvas.SetRenderScale(settings.PixelRatio)
	for len(s.sparks) > settings.MaxParticles {
		last := len(s.sparks) - 1
		s.sparks[last].release()
		s.sparks = s.sparks[:last]
	}
}

// Settings returns the quality settings currently in effect.
func (s *Scene) Settings() quality.Settings {
	return s.settings
}

// MarkHit registers an impact marker and a spark burst at a hit point.
func (s *Scene) MarkHit(point mgl64.Vec3) {
	s.marks = append(s.marks, impactMark{point: point, max: hitMarkDuration, hit: true})
	s.spawnSparks(point)
}

// MarkMiss registers a brief marker where a missed shot landed.
func (s *Scene) MarkMiss(point mgl64.Vec3) {
	s.marks = append(s.marks, impactMark{point: point, max: missMarkDuration})
}

// Update advances sparks and impact markers by dt seconds.
func (s *Scene) Update(dt float64) {
	alive := s.sparks[:0]
	for _, sp := range s.sparks {
		if sp.update(dt) {
			sp.release()
			continue
		}
		alive = append(alive, sp)
	}
	s.sparks = alive

	marks := s.marks[:0]
	for _, m := range s.marks {
		m.age += dt
		if m.age < m.max {
			marks = append(marks, m)
		}
	}
	s.marks = marks
}

// Draw rasterizes the frame onto the canvas. The caller is responsible
// for flushing the canvas to the terminal.
func (s *Scene) Draw() {
	s.canvas.Clear()

	s.drawRoom()
	for _, t := range s.targets {
		if !t.IsActive() {
			continue
		}
		s.drawTarget(t)
	}
	for _, sp := range s.sparks {
		s.drawSpark(sp)
	}
	for _, m := range s.marks {
		s.drawMark(m)
	}

	if s.settings.Antialias {
		s.canvas.Smooth()
	}

	s.drawCrosshair()
}

// drawRoom draws the floor grid and wall edges.
func (s *Scene) drawRoom() {
	e := s.roomExtent
	h := s.roomHeight

	for x := -e; x <= e; x += floorGridStep {
		s.drawSegment(mgl64.Vec3{x, 0, -e}, mgl64.Vec3{x, 0, e})
	}
	for z := -e; z <= e; z += floorGridStep {
		s.drawSegment(mgl64.Vec3{-e, 0, z}, mgl64.Vec3{e, 0, z})
	}

	corners := [4]mgl64.Vec3{
		{-e, 0, -e}, {e, 0, -e}, {e, 0, e}, {-e, 0, e},
	}
	for i, c := range corners {
		top := mgl64.Vec3{c.X(), h, c.Z()}
		s.drawSegment(c, top)
		next := corners[(i+1)%4]
		s.drawSegment(top, mgl64.Vec3{next.X(), h, next.Z()})
	}
}

// drawTarget draws a target as a camera-facing bullseye. Ring count
// follows the quality tier's target detail.
func (s *Scene) drawTarget(t *target.Target) {
	center := t.Position()
	r := t.Size()

	_, _, depth, ok := s.camera.Project(center)
	if !ok {
		return
	}

	// Too distant or tiny to draw as rings: single dot.
	if r/depth < 0.01 {
		s.plotPoint(center)
		return
	}

	right := s.camera.Right()
	up := s.camera.Up()
	segs := 10 + 6*s.settings.TargetDetail

	s.drawWorldCircle(center, r, right, up, segs, false)
	switch s.settings.TargetDetail {
	case 2:
		s.drawWorldCircle(center, r*0.55, right, up, segs, false)
	case 3:
		s.drawWorldCircle(center, r*0.66, right, up, segs, false)
		s.drawWorldCircle(center, r*0.33, right, up, segs, false)
		s.drawWorldCircle(center, r*0.12, right, up, 8, true)
	}

	if s.settings.Shadows && center.Y() > 0 {
		shadow := mgl64.Vec3{center.X(), 0.02, center.Z()}
		s.drawWorldCircle(shadow, r*0.8, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 1}, s.settings.ShadowDetail, false)
	}
}

func (s *Scene) drawSpark(sp *spark) {
	// Fade: skip sparks in the last fifth of their lifetime.
	if sp.lifetime/sp.maxLifetime < 0.2 {
		return
	}
	s.plotPoint(sp.pos)
}

func (s *Scene) drawMark(m impactMark) {
	if m.hit {
		// Expanding ring.
		r := 0.1 + 0.5*(m.age/m.max)
		s.drawWorldCircle(m.point, r, s.camera.Right(), s.camera.Up(), 14, false)
		return
	}

	// Small x where the shot landed.
	x, y, ok := s.toCanvas(m.point)
	if !ok {
		return
	}
	const arm = 1.5
	s.clippedLine(x-arm, y-arm, x+arm, y+arm)
	s.clippedLine(x-arm, y+arm, x+arm, y-arm)
}

// drawCrosshair draws four ticks around the view center with a gap in
// the middle so the aim point stays visible.
func (s *Scene) drawCrosshair() {
	cx := s.canvas.LogicalWidth() / 2
	cy := s.canvas.LogicalHeight() / 2
	const gap, arm = 2.0, 5.0

	s.canvas.DrawLine(draw.Point{X: cx - arm, Y: cy}, draw.Point{X: cx - gap, Y: cy})
	s.canvas.DrawLine(draw.Point{X: cx + gap, Y: cy}, draw.Point{X: cx + arm, Y: cy})
	s.canvas.DrawLine(draw.Point{X: cx, Y: cy - arm}, draw.Point{X: cx, Y: cy - gap})
	s.canvas.DrawLine(draw.Point{X: cx, Y: cy + gap}, draw.Point{X: cx, Y: cy + arm})
}

// drawWorldCircle draws a circle of radius r around center, in the plane
// spanned by u and v. With fill set and the whole circle in front of the
// camera it is drawn as a filled polygon.
func (s *Scene) drawWorldCircle(center mgl64.Vec3, r float64, u, v mgl64.Vec3, segs int, fill bool) {
	if segs < 3 {
		segs = 3
	}

	if fill {
		pts := s.canvas.BorrowPoints(segs)
		visible := true
		for i := 0; i < segs; i++ {
			a := 2 * math.Pi * float64(i) / float64(segs)
			p := center.Add(u.Mul(r * math.Cos(a))).Add(v.Mul(r * math.Sin(a)))
			x, y, ok := s.toCanvas(p)
			if !ok {
				visible = false
				break
			}
			pts[i] = draw.Point{X: x, Y: y}
		}
		if visible {
			s.canvas.DrawPolygon(pts, true)
			return
		}
		// Partially clipped: fall through to segment drawing.
	}

	prev := center.Add(u.Mul(r))
	for i := 1; i <= segs; i++ {
		a := 2 * math.Pi * float64(i) / float64(segs)
		p := center.Add(u.Mul(r * math.Cos(a))).Add(v.Mul(r * math.Sin(a)))
		s.drawSegment(prev, p)
		prev = p
	}
}

// drawSegment clips a world-space segment against the near plane and the
// canvas bounds, then draws it.
func (s *Scene) drawSegment(a, b mgl64.Vec3) {
	za := s.camera.ViewDepth(a)
	zb := s.camera.ViewDepth(b)
	if za < nearPlane && zb < nearPlane {
		return
	}
	if za < nearPlane {
		t := (nearPlane - za) / (zb - za)
		a = a.Add(b.Sub(a).Mul(t))
	} else if zb < nearPlane {
		t := (nearPlane - zb) / (za - zb)
		b = b.Add(a.Sub(b).Mul(t))
	}

	x1, y1, ok1 := s.toCanvas(a)
	x2, y2, ok2 := s.toCanvas(b)
	if !ok1 || !ok2 {
		return
	}
	s.clippedLine(x1, y1, x2, y2)
}

// plotPoint draws a world point as a single pixel if it is in view.
func (s *Scene) plotPoint(p mgl64.Vec3) {
	x, y, ok := s.toCanvas(p)
	if !ok {
		return
	}
	if x < 0 || x >= s.canvas.LogicalWidth() || y < 0 || y >= s.canvas.LogicalHeight() {
		return
	}
	s.canvas.SetFloat(x, y)
}

// toCanvas projects a world point to logical canvas coordinates. The
// canvas y axis grows downward, so ndc y is flipped.
func (s *Scene) toCanvas(p mgl64.Vec3) (x, y float64, ok bool) {
	ndcX, ndcY, _, ok := s.camera.Project(p)
	if !ok {
		return 0, 0, false
	}
	w := s.canvas.LogicalWidth()
	h := s.canvas.LogicalHeight()
	return (ndcX + 1) / 2 * w, (1 - ndcY) / 2 * h, true
}

// clippedLine clips a logical-space segment to the canvas rectangle
// before rasterizing. Segments projected from geometry near the eye can
// span thousands of off-canvas pixels otherwise.
func (s *Scene) clippedLine(x1, y1, x2, y2 float64) {
	w := s.canvas.LogicalWidth()
	h := s.canvas.LogicalHeight()

	// Liang-Barsky against [0,w] x [0,h].
	dx := x2 - x1
	dy := y2 - y1
	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}

	if !clip(-dx, x1) || !clip(dx, w-x1) || !clip(-dy, y1) || !clip(dy, h-y1) {
		return
	}

	s.canvas.DrawLine(
		draw.Point{X: x1 + t0*dx, Y: y1 + t0*dy},
		draw.Point{X: x1 + t1*dx, Y: y1 + t1*dy},
	)
}

var (
	_ target.RenderSurface = (*Scene)(nil)
	_ quality.Subscriber   = (*Scene)(nil)
)
