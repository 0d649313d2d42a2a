package loop

import (
	"testing"
	"time"

	"github.com/tomz197/sshooter/internal/loop/config"
)

func TestTrackerScoresHitsAndBonuses(t *testing.T) {
	tr := NewTracker()

	tr.OnHit(200 * time.Millisecond) // Fast: base plus bonus
	if got, want := tr.Score(), config.ScoreHit+config.ScoreFastBonus; got != want {
		t.Fatalf("fast hit score = %d, want %d", got, want)
	}

	tr.OnHit(900 * time.Millisecond) // Slow: base only
	if got, want := tr.Score(), 2*config.ScoreHit+config.ScoreFastBonus; got != want {
		t.Fatalf("score after slow hit = %d, want %d", got, want)
	}

	if tr.Hits() != 2 || tr.Shots() != 2 {
		t.Fatalf("hits/shots = %d/%d, want 2/2", tr.Hits(), tr.Shots())
	}
}

func TestTrackerStreaks(t *testing.T) {
	tr := NewTracker()

	tr.OnHit(500 * time.Millisecond)
	tr.OnHit(500 * time.Millisecond)
	tr.OnHit(500 * time.Millisecond)
	if tr.Streak() != 3 || tr.BestStreak() != 3 {
		t.Fatalf("streak = %d best = %d, want 3/3", tr.Streak(), tr.BestStreak())
	}

	tr.OnMiss()
	if tr.Streak() != 0 {
		t.Fatalf("streak after miss = %d, want 0", tr.Streak())
	}
	if tr.BestStreak() != 3 {
		t.Fatalf("best streak after miss = %d, want 3", tr.BestStreak())
	}

	tr.OnHit(500 * time.Millisecond)
	if tr.Streak() != 1 || tr.BestStreak() != 3 {
		t.Fatalf("streak = %d best = %d after recovery, want 1/3", tr.Streak(), tr.BestStreak())
	}
}

func TestTrackerReactionTimes(t *testing.T) {
	tr := NewTracker()

	tr.OnHit(400 * time.Millisecond)
	tr.OnHit(250 * time.Millisecond)
	tr.OnHit(600 * time.Millisecond)

	if tr.LastReaction() != 600*time.Millisecond {
		t.Fatalf("last reaction = %v, want 600ms", tr.LastReaction())
	}
	if tr.BestReaction() != 250*time.Millisecond {
		t.Fatalf("best reaction = %v, want 250ms", tr.BestReaction())
	}
}

func TestTrackerAccuracy(t *testing.T) {
	tr := NewTracker()
	if tr.Accuracy() != 0 {
		t.Fatalf("accuracy with no shots = %v, want 0", tr.Accuracy())
	}

	tr.OnHit(500 * time.Millisecond)
	tr.OnMiss()
	tr.OnMiss()
	tr.OnHit(500 * time.Millisecond)

	if got := tr.Accuracy(); got != 0.5 {
		t.Fatalf("accuracy = %v, want 0.5", got)
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()
	tr.OnHit(200 * time.Millisecond)
	tr.OnMiss()

	tr.Reset()

	if tr.Score() != 0 || tr.Shots() != 0 || tr.Hits() != 0 || tr.BestStreak() != 0 {
		t.Fatalf("tracker not cleared after reset: score=%d shots=%d", tr.Score(), tr.Shots())
	}
	if tr.BestReaction() != 0 {
		t.Fatalf("best reaction after reset = %v, want 0", tr.BestReaction())
	}
}
