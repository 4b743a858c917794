// Package config loads the tunables of an editing session from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Optimizer tunes the path-fitting search.
type Optimizer struct {
	StepSize   float64       `yaml:"step_size"`
	PhaseScale float64       `yaml:"phase_scale"`
	Tick       time.Duration `yaml:"tick"`
	Seed       uint64        `yaml:"seed"`
}

// Config holds every session tunable. Distances are in mechanism units,
// the angular rate in radians per millisecond of elapsed time.
type Config struct {
	AngularRate     float64       `yaml:"angular_rate"`
	ClickThreshold  float64       `yaml:"click_threshold"`
	DragThreshold   float64       `yaml:"drag_threshold"`
	HitMarkerRadius float64       `yaml:"hit_marker_radius"`
	TraceSamples    int           `yaml:"trace_samples"`
	Mode            string        `yaml:"mode"`
	ShareVersion    int           `yaml:"share_version"`
	EvalTimeout     time.Duration `yaml:"eval_timeout"`
	Optimizer       Optimizer     `yaml:"optimizer"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		AngularRate:     0.001,
		ClickThreshold:  0.05,
		DragThreshold:   0.01,
		HitMarkerRadius: 0.01,
		TraceSamples:    100,
		Mode:            "slider",
		ShareVersion:    0,
		EvalTimeout:     5 * time.Second,
		Optimizer: Optimizer{
			StepSize:   0.01,
			PhaseScale: 10,
			Tick:       time.Millisecond,
			Seed:       1,
		},
	}
}

// Parse reads YAML over the defaults. Keys that are absent keep their
// default values.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a YAML file over the defaults. An empty path yields the
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Validate rejects values no session can run with.
func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if !(v > 0) {
			errs = append(errs, fmt.Errorf("config: %s must be positive, got %v", name, v))
		}
	}
	positive("angular_rate", c.AngularRate)
	positive("click_threshold", c.ClickThreshold)
	positive("drag_threshold", c.DragThreshold)
	positive("hit_marker_radius", c.HitMarkerRadius)
	positive("trace_samples", float64(c.TraceSamples))
	positive("eval_timeout", float64(c.EvalTimeout))
	positive("optimizer.step_size", c.Optimizer.StepSize)
	positive("optimizer.phase_scale", c.Optimizer.PhaseScale)
	positive("optimizer.tick", float64(c.Optimizer.Tick))
	switch c.Mode {
	case "rotary", "hinge", "slider":
	default:
		errs = append(errs, fmt.Errorf("config: mode must be rotary, hinge or slider, got %q", c.Mode))
	}
	return errors.Join(errs...)
}
