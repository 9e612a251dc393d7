package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/avikern/thrum/audio"
)

func TestLoadMissingPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.World.Width != DefaultWidth || cfg.Audio.SampleRate != DefaultSampleRate {
		t.Error("empty path did not yield defaults")
	}
}

func TestLoadNonexistentFileFails(t *testing.T) {
	if _, err := Load("/nonexistent/thrum.yaml"); err == nil {
		t.Error("missing file did not error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thrum.yaml")

	cfg := DefaultConfig()
	cfg.World.Width = 320
	cfg.Knobs.Void = 0.7
	cfg.Audio.Scale = "minor"
	cfg.Audio.Root = 52

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.World.Width != 320 {
		t.Errorf("width = %f after round trip", loaded.World.Width)
	}
	if loaded.Knobs.Void != 0.7 {
		t.Errorf("void knob = %f after round trip", loaded.Knobs.Void)
	}
	if loaded.Music().Scale != audio.ScaleMinor || loaded.Music().Root != 52 {
		t.Errorf("music settings lost: %+v", loaded.Music())
	}
}

func TestPartialYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	os.WriteFile(path, []byte("knobs:\n  gravity: 0.9\n"), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Knobs.Gravity != 0.9 {
		t.Errorf("gravity = %f, want file value 0.9", cfg.Knobs.Gravity)
	}
	if cfg.Knobs.Tempo != 1.0 {
		t.Errorf("tempo = %f, want untouched default 1.0", cfg.Knobs.Tempo)
	}
	if cfg.World.Height != DefaultHeight {
		t.Error("missing world section clobbered defaults")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("THRUM_AUDIO_ENABLED", "false")
	t.Setenv("THRUM_MASTER_VOLUME", "45")
	t.Setenv("THRUM_SAMPLE_RATE", "48000")
	t.Setenv("THRUM_SCALE", "whole-tone")
	t.Setenv("THRUM_ROOT", "48")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Audio.Enabled {
		t.Error("THRUM_AUDIO_ENABLED=false ignored")
	}
	if cfg.Audio.MasterVolume != 0.45 {
		t.Errorf("master volume = %f, want 0.45", cfg.Audio.MasterVolume)
	}
	if cfg.Audio.SampleRate != 48000 {
		t.Errorf("sample rate = %d, want 48000", cfg.Audio.SampleRate)
	}
	if cfg.Music().Scale != audio.ScaleWholeTone || cfg.Music().Root != 48 {
		t.Errorf("music env overrides lost: %+v", cfg.Music())
	}
}

func TestEnvGarbageIgnored(t *testing.T) {
	t.Setenv("THRUM_MASTER_VOLUME", "loud")
	t.Setenv("THRUM_ROOT", "999")

	cfg, _ := Load("")
	if cfg.Audio.MasterVolume != DefaultMasterVol {
		t.Error("unparseable volume override applied")
	}
	if cfg.Music().Root == 999 {
		t.Error("out-of-range root applied")
	}
}

func TestBoundsDefendAgainstZeroDimensions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.World.Width = 0
	cfg.World.Depth = -5

	b := cfg.Bounds()
	if b.Max.X != DefaultWidth || b.Max.Z != DefaultDepth {
		t.Errorf("degenerate dimensions not repaired: %+v", b.Max)
	}
}

func TestPresets(t *testing.T) {
	if _, ok := Preset("nonsense"); ok {
		t.Error("unknown preset resolved")
	}

	names := PresetNames()
	if len(names) == 0 {
		t.Fatal("no presets registered")
	}
	for _, name := range names {
		cfg, ok := Preset(name)
		if !ok {
			t.Fatalf("listed preset %q did not resolve", name)
		}
		// Every preset must remain a playable configuration
		if cfg.Audio.SampleRate <= 0 {
			t.Errorf("preset %q broke the sample rate", name)
		}
		if cfg.Knobs.Tempo <= 0 {
			t.Errorf("preset %q zeroed tempo", name)
		}
	}

	maw, _ := Preset("maw")
	if maw.Knobs.Void <= DefaultConfig().Knobs.Void {
		t.Error("maw preset did not raise the void knob")
	}
}
