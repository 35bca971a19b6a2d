package config

import "testing"

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Aircraft != "cessna172" {
		t.Errorf("Aircraft = %v, want cessna172", cfg.Aircraft)
	}
	if cfg.InstantStart {
		t.Error("InstantStart should default to false")
	}
	if cfg.EpochUnix != float64(defaultEpoch.Unix()) {
		t.Errorf("EpochUnix = %v, want %v", cfg.EpochUnix, defaultEpoch.Unix())
	}
}

func TestParseOverridesAircraftAndEpoch(t *testing.T) {
	cfg, err := Parse([]string{"--aircraft", "ki61", "--epoch", "2025-06-21T20:00:00Z", "--instant-start"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Aircraft != "ki61" {
		t.Errorf("Aircraft = %v, want ki61", cfg.Aircraft)
	}
	if !cfg.InstantStart {
		t.Error("expected InstantStart true")
	}
	wantUnix := float64(1750536000)
	if cfg.EpochUnix != wantUnix {
		t.Errorf("EpochUnix = %v, want %v", cfg.EpochUnix, wantUnix)
	}
}

func TestParseRejectsMalformedEpoch(t *testing.T) {
	if _, err := Parse([]string{"--epoch", "not-a-date"}); err == nil {
		t.Error("expected error for malformed epoch")
	}
}

func TestParseRejectsUnknownFlag(t *testing.T) {
	if _, err := Parse([]string{"--nonexistent-flag"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}
