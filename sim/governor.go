package sim

import (
	"go.uber.org/zap"

	"github.com/avikern/thrum/vmath"
)

// GovState is the performance governor state
type GovState int

const (
	GovNominal GovState = iota
	GovDegrading
	GovShedding
	GovRecovering
)

func (s GovState) String() string {
	switch s {
	case GovNominal:
		return "nominal"
	case GovDegrading:
		return "degrading"
	case GovShedding:
		return "shedding"
	case GovRecovering:
		return "recovering"
	}
	return "unknown"
}

// Governor thresholds. armDelay lets transient stutters pass before any
// entity is shed; recoverHold demands sustained recovery before returning
// to nominal.
const (
	govLowFPS      = 24.0
	govMidFPS      = 45.0
	govArmDelay    = 1.2 // seconds in Degrading before Shedding arms
	govRecoverHold = 0.8 // seconds above mid before Nominal
	govFPSAlpha    = 0.2 // EMA weight of the newest sample

	ShedMinFrac = 0.01
	ShedMaxFrac = 0.06
	ShedMinAge  = 2.0 // entities younger than this are never shed
	FloorMin    = 6
)

// Governor tracks measured frame rate and drives load shedding with
// hysteresis. It is owned by the Sim and touched only from the tick.
type Governor struct {
	state        GovState
	fps          float64
	degradeSince float64
	recoverSince float64
	log          *zap.Logger
}

func NewGovernor(log *zap.Logger) *Governor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Governor{state: GovNominal, log: log}
}

// Observe feeds one frame delta into the governor. Throttled/hidden frames
// (delta spikes) reset the hysteresis timers instead of being treated as
// real degraded samples.
func (g *Governor) Observe(dt, now float64) {
	if dt <= 0 {
		return
	}
	if dt > ThrottleDelta {
		g.resetTimers(now)
		return
	}

	sample := 1.0 / dt
	if g.fps == 0 {
		g.fps = sample
	} else {
		g.fps += (sample - g.fps) * govFPSAlpha
	}

	prev := g.state
	switch g.state {
	case GovNominal:
		if g.fps < govLowFPS {
			g.state = GovDegrading
			g.degradeSince = now
		}

	case GovDegrading:
		if g.fps > govMidFPS {
			g.state = GovRecovering
			g.recoverSince = now
		} else if now-g.degradeSince >= govArmDelay {
			g.state = GovShedding
		}

	case GovShedding:
		if g.fps > govMidFPS {
			g.state = GovRecovering
			g.recoverSince = now
		}

	case GovRecovering:
		if g.fps < govLowFPS {
			g.state = GovDegrading
			g.degradeSince = now
		} else if g.fps <= govMidFPS {
			// Dipped below the hold band: restart the hold timer
			g.recoverSince = now
		} else if now-g.recoverSince >= govRecoverHold {
			g.state = GovNominal
		}
	}

	if g.state != prev {
		g.log.Debug("governor transition",
			zap.String("from", prev.String()),
			zap.String("to", g.state.String()),
			zap.Float64("fps", g.fps))
	}
}

func (g *Governor) resetTimers(now float64) {
	g.degradeSince = now
	g.recoverSince = now
}

// State returns the current governor state
func (g *Governor) State() GovState {
	return g.state
}

// FPS returns the smoothed frame rate estimate
func (g *Governor) FPS() float64 {
	return g.fps
}

// Shedding reports whether entities may be removed this frame
func (g *Governor) Shedding() bool {
	return g.state == GovShedding
}

// SuppressBudding reports whether entity splitting is disallowed to avoid
// worsening load
func (g *Governor) SuppressBudding() bool {
	return g.state == GovDegrading || g.state == GovShedding
}

// ShedQuota returns how many entities to remove this frame: a small
// fraction of the live population scaled by how far fps sits below the low
// threshold, never below the floor.
func (g *Governor) ShedQuota(live, floor int) int {
	if g.state != GovShedding || live <= floor {
		return 0
	}

	deficit := vmath.Clamp01((govLowFPS - g.fps) / govLowFPS)
	frac := vmath.Lerp(ShedMinFrac, ShedMaxFrac, deficit)
	n := int(float64(live) * frac)
	if n < 1 {
		n = 1
	}
	if live-n < floor {
		n = live - floor
	}
	return n
}

// Reset zeroes all counters and returns to Nominal. Used by the external
// reset operation.
func (g *Governor) Reset() {
	g.state = GovNominal
	g.fps = 0
	g.degradeSince = 0
	g.recoverSince = 0
}
