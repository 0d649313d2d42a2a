// Package clock provides the time source used by the gameplay core.
// Spawn deadlines, hit timestamps and frame averages all go through a
// Clock so tests can drive them without real waits.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time { return time.Now() }

// Manual is a hand-advanced clock for deterministic tests.
type Manual struct {
	current time.Time
}

// NewManual creates a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{current: start}
}

// Now returns the clock's current time.
func (m *Manual) Now() time.Time { return m.current }

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) { m.current = t }

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) { m.current = m.current.Add(d) }
