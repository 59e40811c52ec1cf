package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/kalambet/frank/internal/config"
	"github.com/kalambet/frank/internal/discovery"
	"github.com/kalambet/frank/internal/engine"
	"github.com/kalambet/frank/internal/expert"
	"github.com/kalambet/frank/internal/finder"
	"github.com/kalambet/frank/internal/intent"
	"github.com/kalambet/frank/internal/roster"
	"github.com/kalambet/frank/internal/scoring"
	"github.com/kalambet/frank/internal/storage"
)

// app is the wired service shared by "serve" and "mcp".
type app struct {
	roster *roster.Store
	finder *finder.Service
	conn   *storage.Conn // nil when storage.driver is none
	engine *engine.Breaker
}

func setupLogging(level string) {
	logLevel := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	seed, err := loadSeed(cfg.Roster.SeedFile)
	if err != nil {
		return nil, err
	}

	a := &app{conn: openConn(cfg.Storage)}
	var opts []roster.Option
	if a.conn != nil {
		opts = append(opts, roster.WithPersister(a.conn))
	}
	a.roster, err = roster.New(seed, opts...)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("building roster: %w", err)
	}
	if a.conn != nil {
		n, err := a.roster.Restore(ctx)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("restoring experts: %w", err)
		}
		slog.Info("restored persisted experts", "count", n, "driver", cfg.Storage.Driver)
	}

	a.engine, err = engine.Detect(engine.DetectConfig{
		Backend:       cfg.LLM.Backend,
		BaseURL:       cfg.LLM.BaseURL,
		APIKey:        cfg.LLM.APIKey,
		OllamaBaseURL: cfg.Ollama.BaseURL,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("detecting text-generation backend: %w", err)
	}
	if err := engine.EnsureReady(ctx, a.engine, cfg.LLM.Model, os.Stderr); err != nil {
		if !errors.Is(err, engine.ErrNotRunning) {
			a.close()
			return nil, err
		}
		slog.Warn("text-generation backend unavailable; AI search uses keyword fallbacks",
			"backend", cfg.LLM.Backend, "api_key_set", cfg.LLM.APIKey != "")
	}

	a.finder = finder.New(
		a.roster,
		scoring.NewScorer(a.engine, cfg.LLM.Model, cfg.LLM.Timeout),
		intent.NewAnalyzer(a.engine, cfg.LLM.Model, 0),
		discovery.NewGenerator(a.engine, cfg.LLM.Model),
	)
	return a, nil
}

func loadSeed(path string) ([]expert.Expert, error) {
	if path == "" {
		return expert.Seed()
	}
	seed, err := expert.LoadSeed(path)
	if err != nil {
		return nil, fmt.Errorf("loading seed file: %w", err)
	}
	return seed, nil
}

func openConn(cfg config.StorageConfig) *storage.Conn {
	switch cfg.Driver {
	case config.DriverNone:
		return nil
	case config.DriverPostgres:
		return storage.NewConn(storage.DriverPostgres, cfg.DSN)
	default:
		if cfg.DSN != "" {
			return storage.NewConn(storage.DriverSQLite, cfg.DSN)
		}
		return storage.NewDirConn(cfg.DataDir)
	}
}

func (a *app) close() {
	if a.conn == nil {
		return
	}
	if err := a.conn.Close(); err != nil {
		slog.Warn("closing storage", "error", err)
	}
}
