package host

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/avikern/thrum/audio"
	"github.com/avikern/thrum/bridge"
	"github.com/avikern/thrum/sim"
)

const tickInterval = 16 * time.Millisecond

// App is the thin terminal host: it owns the screen, drives the simulation
// tick, forwards impacts to the bridge and renders the volume. All
// simulation state stays inside sim; the host only holds presentation and
// input state.
type App struct {
	screen tcell.Screen
	sim    *sim.Sim
	bridge *bridge.EventBridge
	engine *audio.Engine
	log    *zap.Logger

	params sim.Params
	knobs  []knob
	sel    int // selected knob index

	width, height int

	// Pointer state for drag-paint and grab-and-throw
	pointer pointerState

	lastTick time.Time
	fps      float64

	quit bool
}

// New wires the host around an initialized screen
func New(screen tcell.Screen, s *sim.Sim, br *bridge.EventBridge, eng *audio.Engine, params sim.Params, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{
		screen: screen,
		sim:    s,
		bridge: br,
		engine: eng,
		log:    log,
		params: params,
		knobs:  knobTable(),
	}
	a.width, a.height = screen.Size()
	return a
}

// Run drives the event/tick loop until quit
func (a *App) Run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	a.lastTick = time.Now()
	for !a.quit {
		select {
		case ev := <-events:
			a.handleEvent(ev)
		case <-ticker.C:
			a.tick()
			a.draw()
		}
	}
}

// tick advances the simulation one frame and dispatches its audio events
func (a *App) tick() {
	now := time.Now()
	dt := now.Sub(a.lastTick).Seconds()
	a.lastTick = now

	if dt > 0 {
		a.fps += 0.1 * (1.0/dt - a.fps)
	}

	impacts := a.sim.Step(a.params, dt)
	a.bridge.Dispatch(impacts, a.params, a.sim.Now())
}

// RunHeadless steps a fixed number of frames without a screen, for
// profiling and soak runs
func RunHeadless(s *sim.Sim, br *bridge.EventBridge, params sim.Params, ticks int, spawn int) {
	for i := 0; i < spawn; i++ {
		s.Spawn(randomSpawnPos(s.Bounds()))
	}
	dt := tickInterval.Seconds()
	for i := 0; i < ticks; i++ {
		impacts := s.Step(params, dt)
		br.Dispatch(impacts, params, s.Now())
	}
}
