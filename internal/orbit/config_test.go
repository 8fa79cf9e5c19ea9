package orbit

import (
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfigValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero points per meter", func(c *Config) { c.PointsPerMeter = 0 }},
		{"negative multiplier", func(c *Config) { c.DragRadiansPerMeter = -1 }},
		{"decay factor zero", func(c *Config) { c.DecayFactor = 0 }},
		{"decay factor one", func(c *Config) { c.DecayFactor = 1 }},
		{"decay factor above one", func(c *Config) { c.DecayFactor = 1.5 }},
		{"zero epsilon", func(c *Config) { c.VelocityEpsilon = 0 }},
		{"zero settle duration", func(c *Config) { c.SettleDuration = 0 }},
		{"negative reference tick", func(c *Config) { c.ReferenceTick = -time.Millisecond }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
