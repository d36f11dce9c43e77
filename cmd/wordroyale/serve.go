package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/wordroyale/wordroyale/cmd/wordroyale/shared"
	"github.com/wordroyale/wordroyale/internal/randutil"
	"github.com/wordroyale/wordroyale/internal/server"
	"github.com/wordroyale/wordroyale/internal/words"
)

// ServeCmd contains core server configuration
type ServeCmd struct {
	Addr   string `kong:"help='Listen address (overrides config file)'"`
	Config string `kong:"default='wordroyale.hcl',help='Path to HCL config file'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
	Seed   *int64 `kong:"help='Deterministic RNG seed for the server (optional)'"`
}

func (c *ServeCmd) Run() error {
	// Environment overrides are picked up before the config file is read
	_ = godotenv.Load()

	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, closeLog, err := c.setupLogger(cfg)
	if err != nil {
		return err
	}
	if closeLog != nil {
		defer func() {
			if err := closeLog(); err != nil {
				fmt.Printf("failed to close log file: %v\n", err)
			}
		}()
	}

	// Setup RNG and seed
	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
		logger.Info("Using random seed", "seed", seed)
	}
	rng := randutil.New(seed)

	catalog, err := words.NewCatalog()
	if err != nil {
		return fmt.Errorf("failed to load word lists: %w", err)
	}

	params, err := cfg.GameParameters()
	if err != nil {
		return fmt.Errorf("invalid game settings: %w", err)
	}

	registry := server.NewRegistry(params, cfg.PointSchedule(), catalog, rng, quartz.NewReal(), logger)

	addr := c.Addr
	if addr == "" {
		addr = cfg.GetServerAddress()
	}
	s := server.NewServer(addr, registry, logger)

	logger.Info("Starting WordRoyale server",
		"address", addr,
		"max_guesses", params.MaxGuesses,
		"guess_time_limit", params.GuessTimeLimit,
		"answer_list", params.AnswerList)

	// Setup graceful shutdown
	ctx := shared.SetupSignalHandlerWithLogger(logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(s.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		return s.Stop()
	})
	return g.Wait()
}

func (c *ServeCmd) setupLogger(cfg *server.ServerConfig) (*log.Logger, func() error, error) {
	level := log.InfoLevel
	if cfg.Server.LogLevel != "" {
		parsed, err := log.ParseLevel(cfg.Server.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Server.LogLevel, err)
		}
		level = parsed
	}
	if c.Debug {
		level = log.DebugLevel
	}

	if cfg.Server.LogFile != "" {
		return shared.SetupFileLogger(cfg.Server.LogFile, level)
	}

	logger := shared.SetupLogger(c.Debug)
	logger.SetLevel(level)
	return logger, nil, nil
}
