package config

import "sort"

// presets are named knob moods layered over the defaults
var presets = map[string]func(*Config){
	// Slow drift, heavy viscosity, long reverb tail
	"lagoon": func(c *Config) {
		c.Knobs.Tempo = 0.6
		c.Knobs.Gravity = 0.05
		c.Knobs.Freeze = 0.5
		c.Knobs.Wind = 0.05
		c.Knobs.MergeProb = 0.3
		c.Audio.ReverbMix = 0.45
		c.Audio.DelayMix = 0.1
		c.Audio.Scale = "pent-minor"
	},
	// Hard weather: wind, gravity, shattering contacts
	"squall": func(c *Config) {
		c.Knobs.Tempo = 1.4
		c.Knobs.Gravity = 0.7
		c.Knobs.Wind = 0.9
		c.Knobs.Fragmentation = 0.6
		c.Knobs.MergeProb = 0.05
		c.Audio.EQHighDB = 3
		c.Audio.Scale = "minor"
	},
	// Singularity-dominated, everything spirals in
	"maw": func(c *Config) {
		c.Knobs.Void = 0.85
		c.Knobs.Gravity = 0.0
		c.Knobs.Doppler = 0.9
		c.Knobs.ReverseProb = 0.4
		c.Audio.ReverbMix = 0.35
		c.Audio.EQLowDB = 4
		c.Audio.Scale = "whole-tone"
	},
	// Flocking swarm over a magnetized field
	"murmuration": func(c *Config) {
		c.Knobs.Wave = 0.8
		c.Knobs.Magneto = 0.75
		c.Knobs.Budding = 0.3
		c.Knobs.Gravity = 0.0
		c.Audio.DelayMix = 0.3
		c.Audio.Scale = "pent-major"
	},
}

// Preset returns a named configuration, or false for an unknown name
func Preset(name string) (*Config, bool) {
	apply, ok := presets[name]
	if !ok {
		return nil, false
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg, true
}

// PresetNames lists the available presets, sorted
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
