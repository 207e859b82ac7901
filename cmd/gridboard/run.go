package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/Gaurav-Gosain/gridboard/internal/api"
	"github.com/Gaurav-Gosain/gridboard/internal/app"
	"github.com/Gaurav-Gosain/gridboard/internal/config"
	"github.com/Gaurav-Gosain/gridboard/internal/content"
	"github.com/Gaurav-Gosain/gridboard/internal/server"
	"github.com/Gaurav-Gosain/gridboard/internal/store"
	"github.com/Gaurav-Gosain/gridboard/internal/telemetry"
	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

func overrides() config.Overrides {
	o := config.Overrides{
		NoAnimations:  noAnimations,
		ThemeName:     themeName,
		ASCIIOnly:     asciiOnly,
		Columns:       columns,
		Compact:       compactMode,
		DisableDrag:   noDrag,
		DisableResize: noResize,
		Backend:       backend,
		Board:         boardName,
		RedisAddr:     redisAddr,
	}
	if ephemeral {
		o.Backend = "memory"
	}
	return o
}

// loadConfig reads the user config and folds in the command line flags.
func loadConfig(logger *log.Logger) *config.UserConfig {
	cfg, err := config.LoadUserConfig()
	if err != nil {
		logger.Warn("failed to load config, using defaults", "err", err)
		cfg = config.DefaultConfig()
	}
	config.ApplyOverrides(overrides(), cfg)
	if err := cfg.Validate(); err != nil {
		logger.Warn("flags produce an invalid config, using defaults", "err", err)
		cfg = config.DefaultConfig()
		config.ApplyOverrides(config.Overrides{NoAnimations: noAnimations}, cfg)
	}
	return cfg
}

// newLogger writes to w at info level, or debug level with --debug.
func newLogger(w io.Writer, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          prefix,
	})
	if debugMode {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// tuiLogger keeps the terminal clean: without --debug nothing is logged,
// with it the log goes to a file under the XDG state dir.
func tuiLogger() (*log.Logger, func(), error) {
	if !debugMode {
		return log.New(io.Discard), func() {}, nil
	}
	path, err := xdg.StateFile("gridboard/gridboard.log")
	if err != nil {
		return nil, nil, fmt.Errorf("could not determine log path: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	fmt.Printf("Debug log: %s\n", path)
	return newLogger(f, "gridboard"), func() { _ = f.Close() }, nil
}

// startTelemetry installs OTLP hooks when OTEL_EXPORTER_OTLP_ENDPOINT is set.
func startTelemetry(ctx context.Context, logger *log.Logger) func() {
	hooks, err := telemetry.NewOTLPHooks(ctx)
	if err != nil {
		logger.Warn("telemetry disabled", "err", err)
		return func() {}
	}
	if hooks == nil {
		return func() {}
	}
	hooks.Install()
	logger.Info("exporting traces", "endpoint", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hooks.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", "err", err)
		}
		telemetry.Reset()
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runLocal(parent context.Context) error {
	logger, closeLog, err := tuiLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signalContext(parent)
	defer cancel()

	cfg := loadConfig(logger)
	defer startTelemetry(ctx, logger)()

	st, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	configPath, _ := config.GetConfigPath()
	logger.Debug("starting", "config", configPath, "board", cfg.Storage.Board, "backend", cfg.Storage.Backend)

	board := app.NewBoard(app.Options{
		Config:     cfg,
		Store:      st,
		BoardName:  cfg.Storage.Board,
		Logger:     logger,
		ConfigPath: configPath,
	})
	defer board.Close()

	p := tea.NewProgram(
		board,
		tea.WithFPS(config.NormalFPS),
		tea.WithoutSignalHandler(),
		tea.WithFilter(app.FilterMouseMotion),
	)

	go func() {
		<-ctx.Done()
		p.Send(tea.QuitMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

func runSSHServer(parent context.Context, host, port, keyPath, defaultBoard string) error {
	logger := newLogger(os.Stderr, "gridboard")
	ctx, cancel := signalContext(parent)
	defer cancel()

	cfg := loadConfig(logger)
	defer startTelemetry(ctx, logger)()

	st, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	if defaultBoard != "" {
		logger.Info("every connection opens one board", "board", defaultBoard)
	}
	if err := server.StartSSHServer(ctx, &server.SSHServerConfig{
		Host:    host,
		Port:    port,
		KeyPath: keyPath,
		Board:   defaultBoard,
		Store:   st,
		Config:  cfg,
		Logger:  logger,
	}); err != nil {
		return fmt.Errorf("SSH server error: %w", err)
	}
	return nil
}

func runAPIServer(parent context.Context, addr string) error {
	logger := newLogger(os.Stderr, "gridboard")
	ctx, cancel := signalContext(parent)
	defer cancel()

	cfg := loadConfig(logger)
	defer startTelemetry(ctx, logger)()

	st, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	srv := api.New(api.Options{
		Store:       st,
		Policy:      cfg.Policy(),
		Constraints: content.Lookup,
		Logger:      logger,
	})
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("API server error: %w", err)
	}
	return nil
}
