package orbit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Tuning is a JSON overlay for Config. Every field is a pointer so a partial
// file only overrides what it names; omitted fields keep their defaults.
// Duration fields use Go duration strings ("300ms").
type Tuning struct {
	PointsPerMeter      *float64 `json:"points_per_meter,omitempty"`
	DragRadiansPerMeter *float64 `json:"drag_radians_per_meter,omitempty"`
	DecayFactor         *float64 `json:"decay_factor,omitempty"`
	VelocityEpsilon     *float64 `json:"velocity_epsilon,omitempty"`
	SettleDuration      *string  `json:"settle_duration,omitempty"`
	ReferenceTick       *string  `json:"reference_tick,omitempty"`
}

// LoadTuning reads a Tuning overlay from a JSON file. The path must have a
// .json extension and the file must stay under 1MB.
func LoadTuning(path string) (*Tuning, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("tuning file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat tuning file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("tuning file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tuning file: %w", err)
	}

	var t Tuning
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse tuning file: %w", err)
	}
	return &t, nil
}

// Apply overlays the tuning values onto cfg and validates the result.
func (t *Tuning) Apply(cfg Config) (Config, error) {
	if t == nil {
		return cfg, cfg.Validate()
	}
	if t.PointsPerMeter != nil {
		cfg.PointsPerMeter = *t.PointsPerMeter
	}
	if t.DragRadiansPerMeter != nil {
		cfg.DragRadiansPerMeter = *t.DragRadiansPerMeter
	}
	if t.DecayFactor != nil {
		cfg.DecayFactor = *t.DecayFactor
	}
	if t.VelocityEpsilon != nil {
		cfg.VelocityEpsilon = *t.VelocityEpsilon
	}
	if t.SettleDuration != nil {
		d, err := time.ParseDuration(*t.SettleDuration)
		if err != nil {
			return cfg, fmt.Errorf("invalid settle_duration: %w", err)
		}
		cfg.SettleDuration = d
	}
	if t.ReferenceTick != nil {
		d, err := time.ParseDuration(*t.ReferenceTick)
		if err != nil {
			return cfg, fmt.Errorf("invalid reference_tick: %w", err)
		}
		cfg.ReferenceTick = d
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("tuned config invalid: %w", err)
	}
	return cfg, nil
}
