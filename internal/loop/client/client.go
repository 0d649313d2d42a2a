package client

import (
	"bufio"
	"io"
	"time"

	cfgfile "github.com/tomz197/sshooter/internal/config"
	"github.com/tomz197/sshooter/internal/draw"
	"github.com/tomz197/sshooter/internal/input"
	"github.com/tomz197/sshooter/internal/loop"
	"github.com/tomz197/sshooter/internal/loop/config"
	"github.com/tomz197/sshooter/internal/loop/server"
	"github.com/tomz197/sshooter/internal/quality"
)

// Client handles rendering and input for a single connection. The whole
// practice range is simulated here; the hub only receives score reports.
type Client struct {
	hub          server.GameHub
	handle       *server.ClientHandle
	state        *ClientState
	session      *loop.Session
	tracker      *loop.Tracker
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	reader       *bufio.Reader
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc

	// Hub-derived HUD data, refreshed at most once per second
	players    int
	board      *server.LeaderboardSnapshot
	lastSync   time.Time
	lastReport server.ScoreReport
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Capabilities quality.Capabilities
	Tuning       cfgfile.Tuning
}

// NewClient creates a new client connected to the given hub.
func NewClient(hub server.GameHub, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	tun := opts.Tuning
	if tun.Targets.Max == 0 {
		tun = cfgfile.DefaultTuning()
	}
	username := opts.Username
	if username == "" {
		username = "anonymous"
	}
	if len(username) > config.MaxUsernameLength {
		username = username[:config.MaxUsernameLength]
	}

	handle := hub.RegisterClient(username)
	state := NewClientState()
	state.termSizeFunc = termSizeFunc

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewCanvas(renderWidth, renderHeight, config.ViewWidth, config.ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)
	chunkWriter := draw.NewChunkWriter(w, offsetCol, offsetRow)

	tracker := loop.NewTracker()
	session := loop.NewSession(canvas, tracker, loop.SessionOptions{
		Tuning:       tun,
		Capabilities: opts.Capabilities,
	})

	return &Client{
		hub:          hub,
		handle:       handle,
		state:        state,
		session:      session,
		tracker:      tracker,
		canvas:       canvas,
		chunkWriter:  chunkWriter,
		reader:       r,
		writer:       w,
		lastInput:    time.Now(),
		inputStream:  input.StartStream(r),
		username:     username,
		termSizeFunc: termSizeFunc,
		board:        hub.Leaderboard(),
	}
}

// Run starts the client loop. Blocks until the client disconnects or the
// server shuts down.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.EnableMouseReporting(c.writer)
	defer draw.DisableMouseReporting(c.writer)
	draw.ClearScreen(c.writer)

	lastTime := time.Now()

	var runErr error
	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		// Process input
		c.processInput()

		// Check for hub events
		c.processHubEvents()

		// Handle screen resize
		c.updateScreen()

		// Handle game state
		switch c.state.GameState {
		case GameStateStart:
			c.updateStartState()
		case GameStatePlaying:
			c.updatePlayingState()
		case GameStateShutdown:
			c.updateShutdownState()
		}

		// Refresh hub counts and push score changes
		c.syncHub(frameStart)

		// Draw frame
		if err := c.drawFrame(); err != nil {
			runErr = err
			break
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	// Unregister even when the connection died mid-frame; a leaked handle
	// would hold up hub shutdown and skew the player count.
	c.submitScore()
	c.hub.UnregisterClient(c.handle.ID)

	draw.ClearScreen(c.writer)
	return runErr
}

// processInput reads input and tracks inactivity. Clicks and wheel turns
// count as activity so mouse-only players are not disconnected.
func (c *Client) processInput() {
	c.state.Input = input.ReadInput(c.inputStream)

	active := len(c.state.Input.Pressed) > 0 ||
		c.state.Input.Click || c.state.Input.WheelUp || c.state.Input.WheelDown
	if active {
		c.lastInput = time.Now()
		c.state.isInactive = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.state.Running = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if c.state.Input.Quit {
		c.state.Running = false
	}
}

// processHubEvents handles events from the hub.
func (c *Client) processHubEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Hub closed the channel
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventServerShutdown:
				if c.state.GameState == GameStatePlaying {
					c.session.End()
				}
				c.state.GameState = GameStateShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual cells
// outside the new canvas area.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and
// computes the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = termWidth
	renderHeight = termHeight
	if renderWidth > config.MaxTermWidth {
		renderWidth = config.MaxTermWidth
	}
	if renderHeight > config.MaxTermHeight {
		renderHeight = config.MaxTermHeight
	}
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// viewport returns the current canvas area in terminal cells.
func (c *Client) viewport() loop.Viewport {
	return loop.Viewport{
		Width:     c.canvas.TerminalWidth(),
		Height:    c.canvas.TerminalHeight(),
		OffsetCol: c.canvas.OffsetCol(),
		OffsetRow: c.canvas.OffsetRow(),
	}
}

// updateStartState handles the title screen. The room stays visible
// behind the menu, so the simulation keeps ticking with no input.
func (c *Client) updateStartState() {
	if c.state.Input.Fire || c.state.Input.Enter || c.state.Input.Click {
		c.startPractice()
		return
	}
	c.session.Update(c.state.delta, input.Input{}, c.viewport())
}

// updatePlayingState advances the practice run one frame.
func (c *Client) updatePlayingState() {
	if c.state.Input.Escape {
		input.ResetKeyInput(c.inputStream)
		c.session.End()
		c.state.GameState = GameStateStart
		return
	}
	c.session.Update(c.state.delta, c.state.Input, c.viewport())
}

// startPractice begins a fresh run. The zeroed totals go to the hub right
// away so its per-run baseline resets before new shots arrive.
func (c *Client) startPractice() {
	input.ResetKeyInput(c.inputStream)
	c.tracker.Reset()
	c.submitScore()
	c.session.Begin()
	c.state.GameState = GameStatePlaying
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}

// syncHub refreshes hub-derived HUD data and submits score changes, at
// most once per second.
func (c *Client) syncHub(now time.Time) {
	if now.Sub(c.lastSync) < time.Second {
		return
	}
	c.lastSync = now

	c.players = c.hub.Stats().Players
	c.board = c.hub.Leaderboard()

	c.submitScore()
}

// submitScore pushes the tracker totals to the hub when they changed.
func (c *Client) submitScore() {
	report := server.ScoreReport{
		Score:        c.tracker.Score(),
		Hits:         c.tracker.Hits(),
		Shots:        c.tracker.Shots(),
		BestStreak:   c.tracker.BestStreak(),
		BestReaction: c.tracker.BestReaction(),
	}
	if report == c.lastReport {
		return
	}
	c.hub.SubmitScore(c.handle.ID, report)
	c.lastReport = report
}
