package orbit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeTuningFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing tuning file: %v", err)
	}
	return path
}

func TestLoadTuning_PartialOverlay(t *testing.T) {
	path := writeTuningFile(t, `{
		"decay_factor": 0.85,
		"settle_duration": "450ms"
	}`)

	tuning, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning failed: %v", err)
	}

	cfg, err := tuning.Apply(DefaultConfig())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := DefaultConfig()
	want.DecayFactor = 0.85
	want.SettleDuration = 450 * time.Millisecond

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("tuned config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTuning_EmptyFileKeepsDefaults(t *testing.T) {
	path := writeTuningFile(t, `{}`)

	tuning, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("LoadTuning failed: %v", err)
	}
	cfg, err := tuning.Apply(DefaultConfig())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("empty overlay changed config (-want +got):\n%s", diff)
	}
}

func TestLoadTuning_RejectsNonJSONExtension(t *testing.T) {
	if _, err := LoadTuning("tuning.yaml"); err == nil {
		t.Error("expected extension error, got nil")
	}
}

func TestLoadTuning_RejectsMalformedJSON(t *testing.T) {
	path := writeTuningFile(t, `{"decay_factor": `)
	if _, err := LoadTuning(path); err == nil {
		t.Error("expected parse error, got nil")
	}
}

func TestTuningApply_InvalidResult(t *testing.T) {
	bad := 1.5
	tuning := &Tuning{DecayFactor: &bad}
	if _, err := tuning.Apply(DefaultConfig()); err == nil {
		t.Error("expected validation error for decay_factor=1.5")
	}
}

func TestTuningApply_BadDuration(t *testing.T) {
	bad := "not-a-duration"
	tuning := &Tuning{ReferenceTick: &bad}
	if _, err := tuning.Apply(DefaultConfig()); err == nil {
		t.Error("expected duration parse error")
	}
}

func TestTuningApply_NilReceiver(t *testing.T) {
	var tuning *Tuning
	cfg, err := tuning.Apply(DefaultConfig())
	if err != nil {
		t.Fatalf("nil tuning should validate defaults: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("nil tuning changed config (-want +got):\n%s", diff)
	}
}
