package audio

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

var (
	ErrAlreadyRunning = errors.New("audio engine already running")
	ErrNotRunning     = errors.New("audio engine not running")
)

const speakerBuffer = 40 * time.Millisecond

// Engine owns the speaker, the persistent graph and the voice engine. A
// failed backend init degrades to silent mode: the simulation keeps running
// and triggers are accepted and discarded.
type Engine struct {
	graph  *Graph
	voices *VoiceEngine
	log    *zap.Logger

	running    atomic.Bool
	muted      atomic.Bool
	silentMode atomic.Bool
	suspended  atomic.Bool

	preMuteMaster float64
}

// NewEngine builds the graph and voice engine; no audio starts until Start
func NewEngine(cfg GraphSettings, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	g := NewGraph(cfg)
	return &Engine{
		graph:         g,
		voices:        NewVoiceEngine(g, log),
		log:           log,
		preMuteMaster: cfg.MasterVolume,
	}
}

// Start opens the audio device and begins streaming the graph. Device
// failure is not an error: the engine enters silent mode.
func (e *Engine) Start() error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	rate := e.graph.SampleRate()
	if err := speaker.Init(rate, rate.N(speakerBuffer)); err != nil {
		e.silentMode.Store(true)
		e.log.Warn("audio backend unavailable, running silent", zap.Error(err))
		return nil
	}

	speaker.Play(e.graph)
	e.log.Info("audio engine started",
		zap.Int("sample_rate", int(rate)),
		zap.Int("max_voices", MaxVoices))
	return nil
}

// Stop mutes the chain and detaches the graph. In-flight voices are
// abandoned with the graph; the speaker device stays initialized because
// beep owns it process-wide.
func (e *Engine) Stop() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}
	if e.silentMode.Load() {
		return
	}
	speaker.Clear()
}

// Suspend halts the hardware stream; voices freeze in place
func (e *Engine) Suspend() error {
	if !e.running.Load() {
		return ErrNotRunning
	}
	if e.silentMode.Load() || !e.suspended.CompareAndSwap(false, true) {
		return nil
	}
	return speaker.Suspend()
}

// Resume restarts the hardware stream after Suspend
func (e *Engine) Resume() error {
	if !e.running.Load() {
		return ErrNotRunning
	}
	if e.silentMode.Load() || !e.suspended.CompareAndSwap(true, false) {
		return nil
	}
	return speaker.Resume()
}

// Trigger forwards to the voice engine unless muted or silent
func (e *Engine) Trigger(p TriggerParams) {
	if !e.running.Load() || e.muted.Load() || e.silentMode.Load() {
		return
	}
	e.voices.Trigger(p)
}

// Graph exposes the effects chain for parameter writes and level reads
func (e *Engine) Graph() *Graph {
	return e.graph
}

// Voices exposes the voice engine for stats
func (e *Engine) Voices() *VoiceEngine {
	return e.voices
}

// ToggleMute flips mute, ramping master through the graph to avoid clicks.
// Returns true if audio is now audible.
func (e *Engine) ToggleMute() bool {
	if e.muted.CompareAndSwap(false, true) {
		e.preMuteMaster = e.graph.master.Target()
		e.graph.SetMaster(0)
		return false
	}
	e.muted.Store(false)
	e.graph.SetMaster(e.preMuteMaster)
	return true
}

// IsMuted returns current mute state
func (e *Engine) IsMuted() bool {
	return e.muted.Load()
}

// IsSilent reports backend-unavailable degradation
func (e *Engine) IsSilent() bool {
	return e.silentMode.Load()
}

// IsRunning returns true if started (even in silent mode)
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// SampleRate returns the render rate
func (e *Engine) SampleRate() beep.SampleRate {
	return e.graph.SampleRate()
}
