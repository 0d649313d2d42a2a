package client

import (
	"time"

	"github.com/tomz197/sshooter/internal/draw"
	"github.com/tomz197/sshooter/internal/input"
)

// GameState represents the current phase for a client.
type GameState int

const (
	GameStateStart    GameState = iota // Title screen
	GameStatePlaying                   // Active practice run
	GameStateShutdown                  // Server is shutting down
)

// ClientState holds per-connection UI state (phase, input, timers).
// Each client has their own instance, managed by the Client.
type ClientState struct {
	Input         input.Input
	GameState     GameState // This client's phase
	prevGameState GameState // Last drawn phase, for transition clears
	Running       bool      // Client loop running
	delta         time.Duration
	shutdownTimer float64 // Countdown before auto-disconnect on shutdown
	isInactive    bool    // Whether the client is in inactive warning state
	wasInactive   bool
	termSizeFunc  draw.TermSizeFunc
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		GameState: GameStateStart,
		Running:   true,
	}
}
