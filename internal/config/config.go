// Package config carries the global diagnostics switch and the optional
// hookguard.toml tuning file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/BurntSushi/toml"
)

// EnvVar is the environment variable consulted at startup; set it to "0",
// "off" or "false" to start with diagnostics disabled.
const EnvVar = "HOOKGUARD"

var disabled atomic.Bool

func init() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvVar))) {
	case "0", "off", "false":
		disabled.Store(true)
	}
}

// Enabled reports whether diagnostics are globally enabled. Callers must
// consult it on every emission and never cache the result, so a toggle
// takes effect on the very next cycle.
func Enabled() bool {
	return !disabled.Load()
}

// SetEnabled flips the global switch.
func SetEnabled(on bool) {
	disabled.Store(!on)
}

// ErrTuningSectionMissing indicates that [tuning] is missing in a
// hookguard.toml file.
var ErrTuningSectionMissing = errors.New("missing [tuning]")

// Tuning holds the per-run knobs the CLI and hosts may override.
type Tuning struct {
	// RecomputeThreshold overrides the default excessive-recompute limit.
	// Zero keeps the built-in default.
	RecomputeThreshold int `toml:"recompute_threshold"`
	// MaxDiagnostics caps how many diagnostics a run collects.
	MaxDiagnostics int `toml:"max_diagnostics"`
	// Color selects CLI colorization: auto, on or off.
	Color string `toml:"color"`
}

// DefaultTuning returns the built-in knob values.
func DefaultTuning() Tuning {
	return Tuning{MaxDiagnostics: 100, Color: "auto"}
}

type tuningFile struct {
	Tuning Tuning `toml:"tuning"`
}

// LoadTuning parses the [tuning] section of a hookguard.toml file. Knobs
// absent from the file keep their defaults.
func LoadTuning(path string) (Tuning, error) {
	cfg := tuningFile{Tuning: DefaultTuning()}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Tuning{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("tuning") {
		return Tuning{}, fmt.Errorf("%s: %w", path, ErrTuningSectionMissing)
	}
	if cfg.Tuning.RecomputeThreshold < 0 {
		return Tuning{}, fmt.Errorf("%s: [tuning].recompute_threshold must not be negative", path)
	}
	switch cfg.Tuning.Color {
	case "", "auto", "on", "off":
	default:
		return Tuning{}, fmt.Errorf("%s: invalid [tuning].color %q: must be auto, on or off", path, cfg.Tuning.Color)
	}
	return cfg.Tuning, nil
}
