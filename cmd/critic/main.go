// Command critic is a terminal editor that critiques a novel draft against
// a folder of reference fiction.
//
// Usage:
//
//	GEMINI_API_KEY=... critic --draft ./draft --ref ./reference [flags]
//
// Every flag can also be set in ~/.critic/config.yaml or as a CRITIC_*
// environment variable (CRITIC_DRAFT_DIR, CRITIC_BUDGET, ...). Run
// critic --help for the flag list and /help inside the program for the
// slash commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fwojciec/critic"
	bt "github.com/fwojciec/critic/bubbletea"
	"github.com/fwojciec/critic/fs"
	criticjson "github.com/fwojciec/critic/json"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "critic: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	cfg, err := loadConfig(args, home, os.Getenv)
	if err != nil {
		return err
	}

	logger, logFile, err := openLog(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	systemPrompt, err := loadSystemPrompt(cfg.SystemPrompt)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := criticjson.NewStore(cfg.Session)
	session, err := store.Load()
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.Session).Msg("session not loaded, starting empty")
	}
	logger.Info().
		Str("session", cfg.Session).
		Int("messages", len(session.Messages)).
		Str("model", cfg.Model).
		Msg("critic started")

	handlers := newHandlers(logger, store, systemPrompt)
	m := bt.New(handlers, &session, cfg.Settings(), critic.DefaultTheme())
	final, err := bt.Run(ctx, m)
	// A turn can outlive the program when ctx ends it; it still holds the
	// session.
	final.Shutdown()
	if err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	if err := store.Save(session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	logger.Info().Int("messages", len(session.Messages)).Msg("session saved on exit")
	return nil
}

// newHandlers wires the orchestrator, extractor and store into the UI.
func newHandlers(logger zerolog.Logger, store *criticjson.Store, systemPrompt string) bt.Handlers {
	sampler := fs.NewSampler(fs.WithSkipHandler(func(path string, err error) {
		logger.Debug().Err(err).Str("path", path).Msg("file skipped")
	}))
	conn := critic.CachedConnector(connect)

	orch := critic.NewOrchestrator(conn, sampler,
		critic.WithStore(store),
		critic.WithSystemPrompt(systemPrompt),
		critic.WithLogger(logger),
	)
	extractor := critic.NewExtractor(conn, sampler, logger)

	return bt.Handlers{
		Turn: func(ctx context.Context, s *critic.Session, settings critic.Settings, prompt string, onEvent func(critic.Event)) error {
			_, err := orch.Turn(ctx, s, settings, prompt, critic.WithEventHandler(onEvent))
			return err
		},
		ExtractStyle: extractor.Extract,
		Export:       criticjson.Export,
		Save:         store.Save,
	}
}
