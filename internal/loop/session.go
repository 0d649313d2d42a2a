// Package loop runs the per-connection practice session: the input,
// update, draw cycle behind every client. Each session owns a full
// simulation; nothing here is shared between players.
package loop

import (
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tomz197/sshooter/internal/clock"
	cfgfile "github.com/tomz197/sshooter/internal/config"
	"github.com/tomz197/sshooter/internal/draw"
	"github.com/tomz197/sshooter/internal/input"
	"github.com/tomz197/sshooter/internal/loop/config"
	"github.com/tomz197/sshooter/internal/physics"
	"github.com/tomz197/sshooter/internal/quality"
	"github.com/tomz197/sshooter/internal/render"
	"github.com/tomz197/sshooter/internal/target"
)

// Viewport describes the canvas area in terminal cells, including its
// centering offset within the full terminal.
type Viewport struct {
	Width     int
	Height    int
	OffsetCol int
	OffsetRow int
}

// SessionOptions configures a practice session.
type SessionOptions struct {
	Clock        clock.Clock          // Defaults to the system clock
	Tuning       cfgfile.Tuning       // Gameplay tuning, usually DefaultTuning
	Capabilities quality.Capabilities // Seed for the quality controller
	Rand         *rand.Rand           // Spawn randomness; defaults to time-seeded
}

// Session is one player's practice range: camera, scene, target
// population and quality control, driven from a single goroutine.
type Session struct {
	clk      clock.Clock
	camera   *render.Camera
	scene    *render.Scene
	pool     *target.Pool
	director *target.Director
	quality  *quality.Controller
	score    target.ScoreSink

	prevFire      bool
	prevWheelUp   bool
	prevWheelDown bool
}

// NewSession builds a session rendering into canvas and reporting shot
// results to sink.
func NewSession(canvas *draw.Canvas, sink target.ScoreSink, opts SessionOptions) *Session {
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	tun := opts.Tuning

	eye := mgl64.Vec3{0, config.EyeHeight, 0}
	aspect := float64(config.ViewWidth) / float64(config.ViewHeight)
	camera := render.NewCamera(eye, config.FieldOfView, aspect, config.MaxPitch)
	scene := render.NewScene(camera, canvas, config.RoomHalfExtent, config.RoomHeight)

	pool := target.NewPool(clk, scene, 2*tun.Targets.Max)

	params := target.DefaultSpawnParams()
	params.Radius = tun.Spawn.Radius
	params.Depth = tun.Spawn.Depth
	params.SpreadX = tun.Spawn.SpreadX
	params.SpreadY = tun.Spawn.SpreadY
	params.DepthJitter = tun.Spawn.DepthJitter
	params.ViewBias = tun.Spawn.ViewBias
	policy := target.NewSpawnPolicy(camera, rng, params)

	room := physics.Room{HalfExtent: config.RoomHalfExtent, Height: config.RoomHeight}
	director := target.NewDirector(clk, pool, policy, camera, room, tun.Targets.Max, tun.Targets.Size)

	caps := opts.Capabilities
	if tun.Performance.TargetFPS > 0 {
		caps.TargetFPS = tun.Performance.TargetFPS
	}
	if tun.Performance.MinFPS > 0 {
		caps.MinFPS = tun.Performance.MinFPS
	}
	if caps.TargetFPS <= 0 {
		caps.TargetFPS = float64(config.ClientTargetFPS)
	}
	if caps.MinFPS <= 0 {
		caps.MinFPS = caps.TargetFPS / 2
	}

	qc := quality.NewController(clk, caps)
	// Subscription delivers the current settings immediately, which
	// sizes the pool and target population for the starting tier.
	qc.Subscribe(scene)
	qc.Subscribe(director)

	return &Session{
		clk:      clk,
		camera:   camera,
		scene:    scene,
		pool:     pool,
		director: director,
		quality:  qc,
		score:    sink,
	}
}

// Begin starts target spawning. Idempotent.
func (s *Session) Begin() {
	s.director.StartSpawning()
}

// End stops spawning and clears the range. The session can Begin again.
func (s *Session) End() {
	s.director.StopSpawning()
}

// Update advances one frame: aims the camera, applies adjustments, fires
// pending shots, tops up targets and ages effects. dt is the real frame
// time and also feeds the quality controller's FPS window.
func (s *Session) Update(dt time.Duration, in input.Input, view Viewport) {
	s.quality.Sample(dt)

	s.updateLook(dt, in, view)
	s.applyAdjustments(in)
	s.handleFire(in, view)

	s.director.Update()
	s.scene.Update(dt.Seconds())
}

// Draw rasterizes the current frame onto the canvas.
func (s *Session) Draw() {
	s.scene.Draw()
}

// updateLook rotates the camera from held keys, plus a gentle drift
// toward the pointer when it sits near the screen edge.
func (s *Session) updateLook(dt time.Duration, in input.Input, view Viewport) {
	look := config.LookSpeed * dt.Seconds()
	if in.Left {
		s.camera.Rotate(-look, 0)
	}
	if in.Right {
		s.camera.Rotate(look, 0)
	}
	if in.Up {
		s.camera.Rotate(0, look)
	}
	if in.Down {
		s.camera.Rotate(0, -look)
	}

	if !in.PointerActive {
		return
	}
	ndcX, ndcY := pointerNDC(in, view)
	rate := config.MouseLookGain * dt.Seconds() * float64(config.ClientTargetFPS)
	s.camera.Rotate(edgePush(ndcX)*rate, edgePush(ndcY)*rate)
}

// edgePush maps a pointer coordinate to a drift amount: zero inside the
// central zone, ramping to ±1 at the screen border.
func edgePush(ndc float64) float64 {
	const zone = config.EdgeLookZone
	switch {
	case ndc > zone:
		return (ndc - zone) / (1 - zone)
	case ndc < -zone:
		return (ndc + zone) / (1 - zone)
	default:
		return 0
	}
}

// applyAdjustments handles quality tier keys and wheel target sizing.
func (s *Session) applyAdjustments(in input.Input) {
	switch in.Number {
	case 1:
		s.quality.SetTier(quality.TierLow)
	case 2:
		s.quality.SetTier(quality.TierMedium)
	case 3:
		s.quality.SetTier(quality.TierHigh)
	case 4:
		s.quality.SetAuto()
	}

	if in.WheelUp && !s.prevWheelUp {
		s.director.SetTargetSize(s.director.TargetSize() + config.TargetSizeStep)
	}
	if in.WheelDown && !s.prevWheelDown {
		s.director.SetTargetSize(s.director.TargetSize() - config.TargetSizeStep)
	}
	s.prevWheelUp = in.WheelUp
	s.prevWheelDown = in.WheelDown
}

// handleFire fires at most one shot per fire edge. Clicks aim at the
// pointer; the fire key shoots through the crosshair center.
func (s *Session) handleFire(in input.Input, view Viewport) {
	fire := in.Fire || in.Click
	defer func() { s.prevFire = fire }()
	if !fire || s.prevFire {
		return
	}
	if view.Width <= 0 || view.Height <= 0 {
		return
	}

	px := float64(view.Width) / 2
	py := float64(view.Height) / 2
	if in.Click && in.PointerActive {
		px, py = pointerCell(in, view)
	}

	result := s.director.CheckHit(px, py, view.Width, view.Height)
	if result.Hit {
		s.score.OnHit(result.Reaction)
		s.scene.MarkHit(result.Point)
	} else {
		s.score.OnMiss()
		s.scene.MarkMiss(result.Point)
	}
}

// pointerCell converts the 1-based terminal pointer position to canvas
// cell coordinates, sampling at the cell center.
func pointerCell(in input.Input, view Viewport) (px, py float64) {
	px = float64(in.PointerCol-1-view.OffsetCol) + 0.5
	py = float64(in.PointerRow-1-view.OffsetRow) + 0.5
	return px, py
}

// pointerNDC converts the pointer position to normalized device
// coordinates clamped to the viewport.
func pointerNDC(in input.Input, view Viewport) (ndcX, ndcY float64) {
	px, py := pointerCell(in, view)
	ndcX = 2*px/float64(view.Width) - 1
	ndcY = 1 - 2*py/float64(view.Height)
	return clampUnit(ndcX), clampUnit(ndcY)
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// Quality exposes the session's quality controller for HUD display and
// tier keys handled elsewhere.
func (s *Session) Quality() *quality.Controller {
	return s.quality
}

// Director exposes the target director for HUD display.
func (s *Session) Director() *target.Director {
	return s.director
}

// ActiveTargets returns how many targets are currently live.
func (s *Session) ActiveTargets() int {
	return s.pool.ActiveCount()
}
