package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the gameplay parameters an operator may override at startup
// via a YAML file. Values not present in the file keep their defaults.
type Tuning struct {
	Spawn struct {
		Radius      float64 `yaml:"radius"`       // X/Z extent of the spawn volume
		Depth       float64 `yaml:"depth"`        // Frontal plane distance for view-biased placement
		SpreadX     float64 `yaml:"spread_x"`     // Horizontal jitter around the look-at point
		SpreadY     float64 `yaml:"spread_y"`     // Vertical jitter around the look-at point
		DepthJitter float64 `yaml:"depth_jitter"` // Jitter along the view depth
		ViewBias    float64 `yaml:"view_bias"`    // Fraction of spawns placed near the aim point
	} `yaml:"spawn"`
	Targets struct {
		Max  int     `yaml:"max"`  // Active targets the director maintains
		Size float64 `yaml:"size"` // Target radius in world units
	} `yaml:"targets"`
	Performance struct {
		TargetFPS float64 `yaml:"target_fps"` // Comfortable frame rate ceiling
		MinFPS    float64 `yaml:"min_fps"`    // Floor below which quality degrades
	} `yaml:"performance"`
}

// DefaultTuning returns the built-in gameplay tuning.
func DefaultTuning() Tuning {
	var t Tuning
	t.Spawn.Radius = 10.0
	t.Spawn.Depth = 8.0
	t.Spawn.SpreadX = 3.0
	t.Spawn.SpreadY = 1.5
	t.Spawn.DepthJitter = 2.0
	t.Spawn.ViewBias = 0.7
	t.Targets.Max = 5
	t.Targets.Size = 0.5
	t.Performance.TargetFPS = 60
	t.Performance.MinFPS = 30
	return t
}

// LoadTuning reads a YAML tuning file and overlays it on the defaults.
// Fields absent from the file keep their default values.
func LoadTuning(filePath string) (Tuning, error) {
	t := DefaultTuning()
	data, err := os.ReadFile(filePath)
	if err != nil {
		return t, fmt.Errorf("failed to read tuning file %s: %w", filePath, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to parse tuning YAML: %w", err)
	}
	if err := validateTuning(&t); err != nil {
		return t, fmt.Errorf("invalid tuning in %s: %w", filePath, err)
	}
	return t, nil
}

func validateTuning(t *Tuning) error {
	if t.Spawn.Radius <= 0 {
		return fmt.Errorf("spawn.radius must be positive, got %v", t.Spawn.Radius)
	}
	if t.Spawn.Depth <= 0 {
		return fmt.Errorf("spawn.depth must be positive, got %v", t.Spawn.Depth)
	}
	if t.Spawn.ViewBias < 0 || t.Spawn.ViewBias > 1 {
		return fmt.Errorf("spawn.view_bias must be in [0,1], got %v", t.Spawn.ViewBias)
	}
	if t.Targets.Max <= 0 {
		return fmt.Errorf("targets.max must be positive, got %d", t.Targets.Max)
	}
	if t.Targets.Size <= 0 {
		return fmt.Errorf("targets.size must be positive, got %v", t.Targets.Size)
	}
	if t.Performance.MinFPS <= 0 || t.Performance.TargetFPS <= 0 {
		return fmt.Errorf("performance FPS values must be positive")
	}
	if t.Performance.MinFPS >= t.Performance.TargetFPS {
		return fmt.Errorf("performance.min_fps (%v) must be below performance.target_fps (%v)",
			t.Performance.MinFPS, t.Performance.TargetFPS)
	}
	return nil
}
