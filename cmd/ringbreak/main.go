// cmd/ringbreak/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EngoEngine/engo"
	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-ringbreak/pkg/audio"
	"github.com/opd-ai/go-ringbreak/pkg/config"
	"github.com/opd-ai/go-ringbreak/pkg/engine"
	"github.com/opd-ai/go-ringbreak/pkg/event"
	"github.com/opd-ai/go-ringbreak/pkg/logging"
	"github.com/opd-ai/go-ringbreak/pkg/render"
	engorender "github.com/opd-ai/go-ringbreak/pkg/render/engo"
	"github.com/opd-ai/go-ringbreak/pkg/render/raster"
)

const windowTitle = "Ringbreak"

// options collects the command line settings that are not part of the
// simulation configuration.
type options struct {
	configPath string
	backend    string
	runFor     time.Duration
	ticks      int
	audio      bool
	audioSet   bool
	pngPath    string
	logPath    string
}

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	backend := flag.String("renderer", "", "Renderer: 'headless', 'terminal' or 'engo'")
	seconds := flag.Float64("seconds", 0, "Stop after this many seconds (0 runs until every ring is broken)")
	ticks := flag.Int("ticks", 0, "Headless only: run this many ticks as fast as possible")
	enableAudio := flag.Bool("audio", false, "Play a note whenever a ring breaks")
	pngPath := flag.String("png", "", "Write the final frame to this PNG file")
	logPath := flag.String("log", "", "Append logs to this file instead of stderr")
	flag.Parse()

	logger := logging.NewLoggerWithWriter(os.Stderr)
	ctx := logging.WithRunID(context.Background(), "")

	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		logger.Error(ctx, "Failed to load environment configuration", err)
		os.Exit(1)
	}

	opts := options{
		configPath: firstNonEmpty(*configPath, envConfig.ConfigPath, "ringbreak.json"),
		backend:    *backend,
		runFor:     envConfig.RunFor,
		ticks:      *ticks,
		audio:      *enableAudio,
		pngPath:    firstNonEmpty(*pngPath, envConfig.ExportPath),
		logPath:    *logPath,
	}
	if *seconds > 0 {
		opts.runFor = time.Duration(*seconds * float64(time.Second))
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "audio" {
			opts.audioSet = true
		}
	})

	// Create default configuration file if requested
	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), opts.configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", opts.configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", opts.configPath,
		)
		return
	}

	cfg, err := loadConfig(ctx, logger, opts)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", opts.configPath,
		)
		os.Exit(1)
	}

	if err := run(ctx, logger, cfg, opts); err != nil {
		logger.Error(ctx, "Simulation failed", err,
			"renderer", cfg.Render.Backend,
		)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file, falling back to the defaults
// when it does not exist, then applies environment and flag overrides.
func loadConfig(ctx context.Context, logger *logging.Logger, opts options) (*config.SimulationConfig, error) {
	var cfg *config.SimulationConfig

	if _, err := os.Stat(opts.configPath); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", opts.configPath,
		)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		return nil, err
	}
	if opts.backend != "" {
		cfg.Render.Backend = opts.backend
	}
	if opts.audioSet {
		cfg.Audio.Enabled = opts.audio
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, logger *logging.Logger, cfg *config.SimulationConfig, opts options) error {
	simLogger, closeLog, err := simulationLogger(logger, cfg.Render.Backend, opts.logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim, err := engine.NewSimulation(cfg,
		engine.WithLogger(simLogger),
		engine.WithRunID(logging.RunID(ctx)),
	)
	if err != nil {
		return err
	}

	sequencer, err := setupAudio(sim.Context(), simLogger, cfg, sim.EventBus)
	if err != nil {
		return err
	}
	if sequencer != nil {
		defer func() {
			if err := sequencer.Close(); err != nil {
				simLogger.Warn(sim.Context(), "Failed to close audio", "error", err.Error())
			}
		}()
	}

	renderOpts := render.Options{
		MaxVisibleRadius: cfg.Render.MaxVisibleRadius,
		ShowHUD:          cfg.Render.ShowScore,
	}

	switch cfg.Render.Backend {
	case "terminal":
		err = runTerminal(ctx, sim, renderOpts, opts)
	case "engo":
		err = runWindow(ctx, sim, renderOpts)
	default:
		err = runHeadless(ctx, sim, renderOpts, opts, simLogger)
	}
	if err != nil {
		return err
	}

	if opts.pngPath != "" {
		if err := exportPNG(sim, renderOpts, opts.pngPath); err != nil {
			return err
		}
		logger.Info(ctx, "Wrote final frame", "path", opts.pngPath)
	}

	winner := "none"
	if leader, ok := sim.Scoreboard.Leader(); ok {
		winner = leader.Label
	}
	logger.Info(ctx, "Run finished",
		"ticks", sim.CurrentTick,
		"rings_broken", sim.Scoreboard.Total(),
		"rings_left", sim.RemainingRings(),
		"leader", winner,
	)
	return nil
}

// simulationLogger picks where the simulation logs. The terminal renderer
// owns the screen, so without a log file its logs are dropped.
func simulationLogger(logger *logging.Logger, backend, path string) (*logging.Logger, func(), error) {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return logging.NewLoggerWithWriter(f), func() { f.Close() }, nil
	}
	if backend == "terminal" {
		return logging.NewLoggerWithWriter(io.Discard), func() {}, nil
	}
	return logger, func() {}, nil
}

// setupAudio attaches a note sequencer to the bus when audio is enabled.
// A machine without a sound device keeps running silently; an unreadable
// MIDI file is an error.
func setupAudio(ctx context.Context, logger *logging.Logger, cfg *config.SimulationConfig, bus *event.Bus) (*audio.Sequencer, error) {
	if !cfg.Audio.Enabled {
		return nil, nil
	}

	notes, err := audio.LoadNotes(cfg.Audio)
	if err != nil {
		return nil, err
	}
	if cfg.Audio.MidiFile != "" {
		logger.Info(ctx, "Loaded note sequence", "midi_file", cfg.Audio.MidiFile, "notes", len(notes))
	}

	var player audio.Player
	speaker, err := audio.NewSpeakerPlayer(cfg.Audio.SampleRate, cfg.Audio.Volume)
	if err != nil {
		logger.Warn(ctx, "Audio unavailable, continuing without sound", "error", err.Error())
		player = audio.NullPlayer{}
	} else {
		player = speaker
	}
	return audio.NewSequencer(cfg.Audio, bus, player,
		audio.WithNotes(notes),
		audio.WithSequencerLogger(ctx, logger),
	), nil
}

func runHeadless(ctx context.Context, sim *engine.Simulation, renderOpts render.Options, opts options, logger *logging.Logger) error {
	renderer := render.NewNullRenderer(logger)

	if opts.ticks > 0 {
		runner := engine.NewRunner(sim)
		runner.Begin()
		_, err := runner.RunTicks(opts.ticks)
		runner.End()
		if err != nil {
			return err
		}
		return render.Draw(renderer, sim.State(), renderOpts)
	}

	runner := engine.NewRunner(sim,
		engine.WithFrameFunc(render.FrameFunc(renderer, renderOpts)),
		engine.WithDuration(opts.runFor),
	)
	return runner.Run(ctx)
}

func runTerminal(ctx context.Context, sim *engine.Simulation, renderOpts render.Options, opts options) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}

	bg, err := config.ParseHexColor(sim.Config.Render.Background)
	if err != nil {
		screen.Fini()
		return err
	}
	renderer := render.NewTerminalRenderer(screen, sim.Config.Frame.Width, sim.Config.Frame.Height, bg)
	defer renderer.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	commands := renderer.Commands(ctx)
	draw := render.FrameFunc(renderer, renderOpts)

	// Commands are applied on the runner's goroutine, between frames.
	var runner *engine.Runner
	onFrame := func(state engine.State) error {
		for {
			select {
			case cmd, ok := <-commands:
				if !ok {
					return engine.ErrQuit
				}
				switch cmd {
				case render.CommandQuit:
					return engine.ErrQuit
				case render.CommandPause:
					runner.SetPaused(!runner.Paused())
				}
			default:
				return draw(state)
			}
		}
	}
	runner = engine.NewRunner(sim,
		engine.WithFrameFunc(onFrame),
		engine.WithDuration(opts.runFor),
	)

	if err := runner.Run(ctx); err != nil {
		return err
	}
	if sim.Finished() && opts.runFor == 0 {
		waitForQuit(ctx, commands)
	}
	return nil
}

// waitForQuit keeps the final frame on screen until the user leaves.
func waitForQuit(ctx context.Context, commands <-chan render.Command) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-commands:
			if !ok || cmd == render.CommandQuit {
				return
			}
		}
	}
}

func runWindow(ctx context.Context, sim *engine.Simulation, renderOpts render.Options) error {
	bg, err := config.ParseHexColor(sim.Config.Render.Background)
	if err != nil {
		return err
	}

	width, height := int(sim.Config.Frame.Width), int(sim.Config.Frame.Height)
	renderer := engorender.NewEngoRenderer(width, height, bg, sim.Config.Render.LineWidth)
	runner := engine.NewRunner(sim)
	scene := engorender.NewRingScene(sim, runner, renderer, windowTitle, renderOpts)

	go func() {
		<-ctx.Done()
		engo.Exit()
	}()

	engo.Run(engo.RunOptions{
		Title:  windowTitle,
		Width:  width,
		Height: height,
		VSync:  true,
	}, scene)

	if err := scene.Err(); err != nil && !errors.Is(err, engine.ErrQuit) {
		return err
	}
	return nil
}

// exportPNG rasterizes the simulation's current state to path.
func exportPNG(sim *engine.Simulation, renderOpts render.Options, path string) error {
	bg, err := config.ParseHexColor(sim.Config.Render.Background)
	if err != nil {
		return err
	}
	canvas := raster.NewCanvas(int(sim.Config.Frame.Width), int(sim.Config.Frame.Height), bg, sim.Config.Render.LineWidth)
	if err := render.Draw(canvas, sim.State(), renderOpts); err != nil {
		return err
	}
	return canvas.WritePNG(path)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
