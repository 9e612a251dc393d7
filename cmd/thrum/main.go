package main

import (
	"fmt"
	"math/rand"
	"os"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/avikern/thrum/audio"
	"github.com/avikern/thrum/bridge"
	"github.com/avikern/thrum/config"
	"github.com/avikern/thrum/host"
	"github.com/avikern/thrum/sim"
	"github.com/avikern/thrum/vmath"
)

var (
	flagConfig   string
	flagPreset   string
	flagMute     bool
	flagDebug    bool
	flagProfile  bool
	flagHeadless bool
	flagTicks    int
	flagSpawn    int
)

var rootCmd = &cobra.Command{
	Use:   "thrum",
	Short: "Deformable bodies in a force field, played as an instrument",
	Long: `thrum simulates a population of soft bodies drifting through tunable
force fields in a bounded volume. Their collisions trigger synthesized
voices through a persistent effects chain; the terminal is both the
display and the controller.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "YAML config file")
	rootCmd.Flags().StringVarP(&flagPreset, "preset", "p", "", "named preset: "+joinPresets())
	rootCmd.Flags().BoolVar(&flagMute, "mute", false, "start with audio muted")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "debug-level logging")
	rootCmd.Flags().BoolVar(&flagProfile, "profile", false, "write a CPU profile")
	rootCmd.Flags().BoolVar(&flagHeadless, "headless", false, "run without a terminal UI")
	rootCmd.Flags().IntVar(&flagTicks, "ticks", 3600, "frames to run in headless mode")
	rootCmd.Flags().IntVar(&flagSpawn, "spawn", 12, "entities spawned at startup")
}

func joinPresets() string {
	out := ""
	for i, name := range config.PresetNames() {
		if i > 0 {
			out += ", "
		}
		out += name
	}
	return out
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if flagProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(flagDebug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	s := sim.New(cfg.Bounds(), log.Named("sim"))
	mapper := bridge.NewSpatialMapper(s.Bounds())
	bank := bridge.NewMemoryBank(16)

	var eng *audio.Engine
	if cfg.Audio.Enabled {
		eng = audio.NewEngine(cfg.GraphSettings(), log.Named("audio"))
		if err := eng.Start(); err != nil {
			return fmt.Errorf("audio: %w", err)
		}
		defer eng.Stop()
		if flagMute && !eng.IsMuted() {
			eng.ToggleMute()
		}
	}

	var out bridge.Triggerer = discardTriggers{}
	if eng != nil {
		out = eng
	}
	br := bridge.NewEventBridge(out, mapper, bank, log.Named("bridge"))
	br.SetMusic(cfg.Music())

	if flagHeadless {
		return runHeadless(s, br, cfg, log)
	}
	return runUI(s, br, eng, cfg, log)
}

func loadConfig() (*config.Config, error) {
	if flagPreset != "" {
		cfg, ok := config.Preset(flagPreset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q (have: %s)", flagPreset, joinPresets())
		}
		cfg.ApplyEnv()
		return cfg, nil
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func runHeadless(s *sim.Sim, br *bridge.EventBridge, cfg *config.Config, log *zap.Logger) error {
	log.Info("headless run", zap.Int("ticks", flagTicks), zap.Int("spawn", flagSpawn))
	host.RunHeadless(s, br, cfg.Knobs, flagTicks, flagSpawn)

	triggered, suppressed := br.Stats()
	fmt.Printf("ran %d ticks: %d bodies alive, %d voices triggered, %d suppressed, governor %s\n",
		flagTicks, s.Pool().Len(), triggered, suppressed, s.Governor().State())
	return nil
}

func runUI(s *sim.Sim, br *bridge.EventBridge, eng *audio.Engine, cfg *config.Config, log *zap.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	screen.EnableMouse()
	defer screen.Fini()

	// A crash must never leave the terminal in raw mode
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "thrum crashed: %v\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()

	size := s.Bounds().Size()
	for i := 0; i < flagSpawn; i++ {
		s.Spawn(vmath.Vec3{
			X: s.Bounds().Min.X + size.X*(0.15+0.7*rand.Float64()),
			Y: s.Bounds().Min.Y + size.Y*(0.15+0.7*rand.Float64()),
			Z: s.Bounds().Min.Z + size.Z*(0.15+0.7*rand.Float64()),
		})
	}

	app := host.New(screen, s, br, eng, cfg.Knobs, log.Named("host"))
	log.Info("starting UI loop", zap.Int("spawn", flagSpawn))
	app.Run()
	return nil
}

// newLogger writes structured logs to a rotating file; stdout belongs to
// the terminal UI
func newLogger(debugLevel bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if debugLevel {
		level = zapcore.DebugLevel
	}

	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   "logs/thrum.log",
		MaxSize:    10, // MB
		MaxBackups: 3,
	})
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		sink,
		level,
	)
	return zap.New(core), nil
}

// discardTriggers stands in for the voice engine when audio is disabled
type discardTriggers struct{}

func (discardTriggers) Trigger(audio.TriggerParams) {}
