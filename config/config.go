package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/avikern/thrum/audio"
	"github.com/avikern/thrum/sim"
	"github.com/avikern/thrum/vmath"
)

const (
	DefaultWidth      = 160.0
	DefaultHeight     = 100.0
	DefaultDepth      = 60.0
	DefaultSampleRate = 44100
	DefaultMasterVol  = 0.8
)

// WorldConfig sizes the simulation volume
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Depth  float64 `yaml:"depth"`
}

// AudioConfig covers the output chain and the harmonic grid
type AudioConfig struct {
	Enabled      bool    `yaml:"enabled"`
	SampleRate   int     `yaml:"sample_rate"`
	MasterVolume float64 `yaml:"master_volume"`
	ReverbMix    float64 `yaml:"reverb_mix"`
	DelayMix     float64 `yaml:"delay_mix"`
	DelayTimeLMs int     `yaml:"delay_time_l_ms"`
	DelayTimeRMs int     `yaml:"delay_time_r_ms"`
	EQLowDB      float64 `yaml:"eq_low_db"`
	EQMidDB      float64 `yaml:"eq_mid_db"`
	EQHighDB     float64 `yaml:"eq_high_db"`
	Scale        string  `yaml:"scale"`
	Root         int     `yaml:"root"`
}

// Config is the full YAML-backed settings tree
type Config struct {
	World WorldConfig `yaml:"world"`
	Audio AudioConfig `yaml:"audio"`
	Knobs sim.Params  `yaml:"knobs"`
}

// DefaultConfig returns the tuned defaults
func DefaultConfig() *Config {
	music := audio.DefaultMusic()
	graph := audio.DefaultGraphSettings()
	return &Config{
		World: WorldConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Depth:  DefaultDepth,
		},
		Audio: AudioConfig{
			Enabled:      true,
			SampleRate:   DefaultSampleRate,
			MasterVolume: DefaultMasterVol,
			ReverbMix:    graph.ReverbMix,
			DelayMix:     graph.DelayMix,
			DelayTimeLMs: int(graph.DelayTimeL / time.Millisecond),
			DelayTimeRMs: int(graph.DelayTimeR / time.Millisecond),
			Scale:        music.Scale.String(),
			Root:         music.Root,
		},
		Knobs: sim.DefaultParams(),
	}
}

// Load reads a YAML file over the defaults, then applies THRUM_* env
// overrides
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// Save writes the config as YAML
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overlays THRUM_* environment variables onto the config
func (c *Config) ApplyEnv() {
	if enabled := os.Getenv("THRUM_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			c.Audio.Enabled = val
		}
	}

	// Master volume as 0-100
	if volume := os.Getenv("THRUM_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			c.Audio.MasterVolume = vmath.Clamp01(float64(val) / 100.0)
		}
	}

	if sampleRate := os.Getenv("THRUM_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			c.Audio.SampleRate = val
		}
	}

	if scale := os.Getenv("THRUM_SCALE"); scale != "" {
		c.Audio.Scale = scale
	}

	if root := os.Getenv("THRUM_ROOT"); root != "" {
		if val, err := strconv.Atoi(root); err == nil && val >= 0 && val < 128 {
			c.Audio.Root = val
		}
	}
}

// Bounds builds the world volume, origin-anchored with +Y down
func (c *Config) Bounds() sim.Bounds {
	w, h, d := c.World.Width, c.World.Height, c.World.Depth
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	if d <= 0 {
		d = DefaultDepth
	}
	return sim.Bounds{Max: vmath.Vec3{X: w, Y: h, Z: d}}
}

// GraphSettings maps the audio section onto the effects chain
func (c *Config) GraphSettings() audio.GraphSettings {
	g := audio.DefaultGraphSettings()
	if c.Audio.SampleRate > 0 {
		g.SampleRate = c.Audio.SampleRate
	}
	g.MasterVolume = vmath.Clamp01(c.Audio.MasterVolume)
	g.ReverbMix = vmath.Clamp01(c.Audio.ReverbMix)
	g.DelayMix = vmath.Clamp01(c.Audio.DelayMix)
	if c.Audio.DelayTimeLMs > 0 {
		g.DelayTimeL = time.Duration(c.Audio.DelayTimeLMs) * time.Millisecond
	}
	if c.Audio.DelayTimeRMs > 0 {
		g.DelayTimeR = time.Duration(c.Audio.DelayTimeRMs) * time.Millisecond
	}
	g.EQLowDB = c.Audio.EQLowDB
	g.EQMidDB = c.Audio.EQMidDB
	g.EQHighDB = c.Audio.EQHighDB
	return g
}

// Music maps the audio section onto the harmonic grid
func (c *Config) Music() audio.MusicSettings {
	m := audio.MusicSettings{
		Root:  c.Audio.Root,
		Scale: audio.ParseScale(c.Audio.Scale),
	}
	if m.Root <= 0 || m.Root >= 128 {
		m.Root = audio.DefaultMusic().Root
	}
	return m
}
