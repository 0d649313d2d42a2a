package quality

import (
	"time"

	"github.com/tomz197/sshooter/internal/clock"
)

const (
	// windowSize is how many frame samples the rolling average covers.
	windowSize = 60
	// checkInterval gates tier decisions so they never run every frame.
	checkInterval = time.Second
	// ceilingFactor scales the target FPS into the upgrade threshold. The
	// band between minFPS and this ceiling is the hysteresis zone.
	ceilingFactor = 0.9
)

// Subscriber receives the active settings whenever the tier changes.
type Subscriber interface {
	QualityChanged(Settings)
}

// Controller samples frame duration every update, keeps a rolling FPS
// average, and steps the quality tier up or down at most once per check
// interval. Tier changes fan out to subscribers.
type Controller struct {
	clk clock.Clock

	auto      bool
	tier      Tier
	targetFPS float64
	minFPS    float64

	samples     [windowSize]float64
	sampleIdx   int
	sampleCount int
	lastCheck   time.Time

	subscribers []Subscriber
}

// NewController creates a controller in auto mode, seeded from the probed
// capabilities.
func NewController(clk clock.Clock, caps Capabilities) *Controller {
	return &Controller{
		clk:       clk,
		auto:      true,
		tier:      caps.Tier,
		targetFPS: caps.TargetFPS,
		minFPS:    caps.MinFPS,
		lastCheck: clk.Now(),
	}
}

// Subscribe registers a subscriber and immediately delivers the current
// settings so new subscribers never run on stale parameters.
func (c *Controller) Subscribe(s Subscriber) {
	c.subscribers = append(c.subscribers, s)
	s.QualityChanged(c.Current())
}

// Sample records one frame's duration and, at most once per check
// interval, re-evaluates the tier against the rolling average.
func (c *Controller) Sample(frameTime time.Duration) {
	if frameTime > 0 {
		c.samples[c.sampleIdx] = 1 / frameTime.Seconds()
		c.sampleIdx = (c.sampleIdx + 1) % windowSize
		if c.sampleCount < windowSize {
			c.sampleCount++
		}
	}

	now := c.clk.Now()
	if now.Sub(c.lastCheck) < checkInterval {
		return
	}
	c.lastCheck = now

	if !c.auto || c.sampleCount == 0 {
		return
	}

	avg := c.Average()
	switch {
	case avg < c.minFPS && c.tier > TierLow:
		c.setTier(c.tier - 1)
	case avg > c.targetFPS*ceilingFactor && c.tier < TierHigh:
		c.setTier(c.tier + 1)
	}
}

// Average returns the rolling FPS average over the filled window.
func (c *Controller) Average() float64 {
	if c.sampleCount == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < c.sampleCount; i++ {
		sum += c.samples[i]
	}
	return sum / float64(c.sampleCount)
}

// SetTier pins the controller to a fixed tier, leaving auto mode.
func (c *Controller) SetTier(tier Tier) {
	if tier < TierLow {
		tier = TierLow
	}
	if tier > TierHigh {
		tier = TierHigh
	}
	c.auto = false
	if tier != c.tier {
		c.setTier(tier)
	}
}

// SetAuto re-enables automatic tier selection from the next check on.
func (c *Controller) SetAuto() {
	c.auto = true
}

// Auto reports whether the controller is picking tiers itself.
func (c *Controller) Auto() bool { return c.auto }

// Tier returns the active tier.
func (c *Controller) Tier() Tier { return c.tier }

// Current returns the active settings record.
func (c *Controller) Current() Settings {
	return SettingsFor(c.tier)
}

func (c *Controller) setTier(tier Tier) {
	c.tier = tier
	s := c.Current()
	for _, sub := range c.subscribers {
		sub.QualityChanged(s)
	}
}
