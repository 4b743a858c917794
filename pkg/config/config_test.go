package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kr/pretty"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
angular_rate: 0.002
mode: hinge
optimizer:
  step_size: 0.05
  tick: 4ms
`))
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.AngularRate = 0.002
	want.Mode = "hinge"
	want.Optimizer.StepSize = 0.05
	want.Optimizer.Tick = 4 * time.Millisecond
	if diff := pretty.Diff(want, cfg); len(diff) > 0 {
		t.Errorf("config mismatch:\n%s", strings.Join(diff, "\n"))
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"negative rate", "angular_rate: -1", "angular_rate"},
		{"zero samples", "trace_samples: 0", "trace_samples"},
		{"bad mode", "mode: crank", "mode"},
		{"zero tick", "optimizer:\n  tick: 0s", "optimizer.tick"},
		{"not yaml", "angular_rate: [", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TraceSamples != 100 {
		t.Errorf("TraceSamples = %d, want 100", cfg.TraceSamples)
	}

	path := filepath.Join(t.TempDir(), "linkage.yaml")
	if err := os.WriteFile(path, []byte("trace_samples: 250\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TraceSamples != 250 {
		t.Errorf("TraceSamples = %d, want 250", cfg.TraceSamples)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}
