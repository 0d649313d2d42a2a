package server

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomz197/sshooter/internal/loop/config"
)

// GameHub is the interface clients use to communicate with the shared hub.
// Decouples the Client from the concrete Hub implementation, enabling
// testing and alternative hub implementations.
type GameHub interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID int)
	SubmitScore(clientID int, report ScoreReport)
	Leaderboard() *LeaderboardSnapshot
	Stats() StatsSnapshot
}

// Hub tracks connected players and aggregates their results. Each client
// simulates its own range and periodically submits score reports, so the
// hub keeps no world state and needs no tick loop.
type Hub struct {
	mu           sync.RWMutex
	clients      map[int]*ClientHandle
	nextClientID int

	sessionsServed int64
	shotsFired     int64
	targetsHit     int64

	board    []LeaderboardEntry
	snapshot atomic.Pointer[LeaderboardSnapshot]
}

// Compile-time check that Hub implements GameHub.
var _ GameHub = (*Hub)(nil)

// ClientHandle represents a client's connection to the hub.
type ClientHandle struct {
	ID          int
	Username    string           // Display name for this client
	EventsCh    chan ClientEvent // Events sent to client (shutdown, etc.)
	ConnectedAt time.Time

	lastReport ScoreReport // Baseline for global counter deltas
}

// ClientEvent represents an event sent from hub to client.
type ClientEvent struct {
	Type ClientEventType
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
)

// ScoreReport carries one practice run's running totals. Reports are
// cumulative within a run; any total regressing below the previous
// report marks a fresh run and resets the client's baseline.
type ScoreReport struct {
	Score        int
	Hits         int
	Shots        int
	BestStreak   int
	BestReaction time.Duration
}

// LeaderboardEntry is one row of the best-score table.
type LeaderboardEntry struct {
	Username       string    `json:"username"`
	Score          int       `json:"score"`
	Accuracy       float64   `json:"accuracy"`         // Hits over shots, in [0,1]
	BestReactionMs int64     `json:"best_reaction_ms"` // Zero when no hits landed
	SetAt          time.Time `json:"set_at"`
}

// LeaderboardSnapshot is an immutable ranked view of the best scores.
type LeaderboardSnapshot struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// StatsSnapshot aggregates hub counters for the live stats feed.
type StatsSnapshot struct {
	Players        int                `json:"players"`
	SessionsServed int64              `json:"sessions_served"`
	ShotsFired     int64              `json:"shots_fired"`
	TargetsHit     int64              `json:"targets_hit"`
	Leaderboard    []LeaderboardEntry `json:"leaderboard"`
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	h := &Hub{
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
	}
	h.snapshot.Store(&LeaderboardSnapshot{Entries: []LeaderboardEntry{}})
	return h
}

// RegisterClient registers a new client with the given username and
// returns its handle.
func (h *Hub) RegisterClient(username string) *ClientHandle {
	h.mu.Lock()
	defer h.mu.Unlock()

	handle := &ClientHandle{
		ID:          h.nextClientID,
		Username:    username,
		EventsCh:    make(chan ClientEvent, 16),
		ConnectedAt: time.Now(),
	}
	h.nextClientID++
	h.clients[handle.ID] = handle
	h.sessionsServed++
	return handle
}

// UnregisterClient removes a client from the hub. Safe to call for an
// already removed ID.
func (h *Hub) UnregisterClient(clientID int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if handle, ok := h.clients[clientID]; ok {
		close(handle.EventsCh)
		delete(h.clients, clientID)
	}
}

// SubmitScore records a client's current totals, folds the delta into the
// global counters and reranks the leaderboard.
func (h *Hub) SubmitScore(clientID int, report ScoreReport) {
	h.mu.Lock()
	defer h.mu.Unlock()

	handle, ok := h.clients[clientID]
	if !ok {
		return
	}
	if report.Shots < handle.lastReport.Shots ||
		report.Hits < handle.lastReport.Hits ||
		report.Score < handle.lastReport.Score {
		handle.lastReport = ScoreReport{}
	}
	h.shotsFired += int64(report.Shots - handle.lastReport.Shots)
	h.targetsHit += int64(report.Hits - handle.lastReport.Hits)
	handle.lastReport = report

	h.updateBoardLocked(handle.Username, report)
	h.publishLocked()
}

// updateBoardLocked keeps at most one entry per username, replacing it
// only when the new score beats it. Must be called with the lock held.
func (h *Hub) updateBoardLocked(username string, report ScoreReport) {
	if report.Score <= 0 {
		return
	}

	entry := LeaderboardEntry{
		Username: username,
		Score:    report.Score,
		SetAt:    time.Now(),
	}
	if report.Shots > 0 {
		entry.Accuracy = float64(report.Hits) / float64(report.Shots)
	}
	if report.BestReaction > 0 {
		entry.BestReactionMs = report.BestReaction.Milliseconds()
	}

	replaced := false
	for i, e := range h.board {
		if e.Username == username {
			if entry.Score <= e.Score {
				return
			}
			h.board[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		h.board = append(h.board, entry)
	}

	sort.SliceStable(h.board, func(i, j int) bool {
		return h.board[i].Score > h.board[j].Score
	})
	if len(h.board) > config.LeaderboardSize {
		h.board = h.board[:config.LeaderboardSize]
	}
}

// publishLocked stores a fresh immutable snapshot of the board. Must be
// called with the lock held.
func (h *Hub) publishLocked() {
	entries := make([]LeaderboardEntry, len(h.board))
	copy(entries, h.board)
	h.snapshot.Store(&LeaderboardSnapshot{Entries: entries})
}

// Leaderboard returns the current ranked snapshot. The returned value is
// immutable and safe to share between goroutines.
func (h *Hub) Leaderboard() *LeaderboardSnapshot {
	return h.snapshot.Load()
}

// Stats reports the hub counters together with the leaderboard.
func (h *Hub) Stats() StatsSnapshot {
	h.mu.RLock()
	players := len(h.clients)
	sessions := h.sessionsServed
	shots := h.shotsFired
	hits := h.targetsHit
	h.mu.RUnlock()

	return StatsSnapshot{
		Players:        players,
		SessionsServed: sessions,
		ShotsFired:     shots,
		TargetsHit:     hits,
		Leaderboard:    h.Leaderboard().Entries,
	}
}

// Shutdown notifies all connected clients and waits for them to
// disconnect, up to the given timeout.
func (h *Hub) Shutdown(timeout time.Duration) {
	h.mu.RLock()
	for _, handle := range h.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	h.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			h.mu.RLock()
			remaining := len(h.clients)
			h.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}
