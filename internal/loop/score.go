package loop

import (
	"time"

	"github.com/tomz197/sshooter/internal/loop/config"
	"github.com/tomz197/sshooter/internal/target"
)

// Tracker accumulates one session's shooting statistics. It is the score
// sink hit results are reported into.
type Tracker struct {
	score        int
	hits         int
	shots        int
	streak       int
	bestStreak   int
	lastReaction time.Duration
	bestReaction time.Duration
}

// NewTracker creates an empty score tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// OnHit records a hit with the reaction time from target spawn to shot.
// Fast reactions earn a bonus on top of the base hit score.
func (t *Tracker) OnHit(reaction time.Duration) {
	t.shots++
	t.hits++
	t.streak++
	if t.streak > t.bestStreak {
		t.bestStreak = t.streak
	}

	t.lastReaction = reaction
	if t.bestReaction == 0 || reaction < t.bestReaction {
		t.bestReaction = reaction
	}

	t.score += config.ScoreHit
	if reaction.Seconds() < config.FastReactionSeconds {
		t.score += config.ScoreFastBonus
	}
}

// OnMiss records a shot that hit nothing. Misses break the streak.
func (t *Tracker) OnMiss() {
	t.shots++
	t.streak = 0
}

// Reset clears all totals for a fresh run.
func (t *Tracker) Reset() {
	*t = Tracker{}
}

// Score returns the accumulated score.
func (t *Tracker) Score() int { return t.score }

// Hits returns the number of targets hit.
func (t *Tracker) Hits() int { return t.hits }

// Shots returns the number of shots fired.
func (t *Tracker) Shots() int { return t.shots }

// Streak returns the current unbroken hit count.
func (t *Tracker) Streak() int { return t.streak }

// BestStreak returns the longest hit streak this session.
func (t *Tracker) BestStreak() int { return t.bestStreak }

// LastReaction returns the reaction time of the most recent hit.
func (t *Tracker) LastReaction() time.Duration { return t.lastReaction }

// BestReaction returns the fastest reaction time this session, or zero
// if nothing was hit yet.
func (t *Tracker) BestReaction() time.Duration { return t.bestReaction }

// Accuracy returns hits over shots in [0,1], or zero before the first shot.
func (t *Tracker) Accuracy() float64 {
	if t.shots == 0 {
		return 0
	}
	return float64(t.hits) / float64(t.shots)
}

var _ target.ScoreSink = (*Tracker)(nil)
