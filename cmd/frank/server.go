package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/frank/internal/api"
	"github.com/kalambet/frank/internal/config"
	"github.com/kalambet/frank/internal/finder"
	"github.com/kalambet/frank/internal/monitor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the expert finder HTTP service (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show frank service status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the expert finder as an MCP server on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "frank version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Log.Level)
	if cfg.API.Token == "" {
		slog.Warn("FRANK_API_TOKEN is not set; API requests are not authenticated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printStep("Loading roster")
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	sessions := finder.NewSessions(
		finder.WithIdleTimeout(cfg.Server.SessionIdle),
		finder.WithMaxSessions(cfg.Server.MaxSessions),
	)
	go sessions.Run(ctx, time.Minute)

	deps := api.Deps{
		Roster:    a.roster,
		Finder:    a.finder,
		Sessions:  sessions,
		Token:     cfg.API.Token,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
	}
	if a.conn != nil {
		mon := monitor.New(a.conn, cfg.Storage.MonitorInterval)
		go mon.Run(ctx)
		deps.Monitor = mon
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewHandler(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		printSuccess("frank listening on %s (%d experts)", addr, a.roster.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMCP() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// stdout carries the MCP protocol; logs stay on stderr.
	setupLogging(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Roster:  a.roster,
		Finder:  a.finder,
		Version: version,
	})
	slog.Info("MCP server started (stdio transport)", "experts", a.roster.Len())
	if err := server.NewStdioServer(mcpSrv).Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	client, err := newAPIClient()
	if err != nil {
		return err
	}
	client.httpClient.Timeout = 2 * time.Second

	health, err := fetchHealth(ctx, client)
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		printStatus("Server", "running on port %d", cfg.Server.Port)
		printStatus("Experts", "%d", health.Experts)
		if health.Storage != nil {
			printStatus("Storage", "%s (%d checks, %d failures, up %s)",
				health.Storage.LastStatus, health.Storage.TotalChecks, health.Storage.Failures, health.Storage.Uptime)
			if health.Storage.LastError != "" {
				printStatus("Storage error", "%s", health.Storage.LastError)
			}
		}
	}

	printStatus("Backend", "%s at %s", cfg.LLM.Backend, backendURL(cfg))
	printStatus("Model", "%s", cfg.LLM.Model)
	printStatus("Storage driver", "%s", cfg.Storage.Driver)
	if cfg.Storage.Driver == config.DriverSQLite && cfg.Storage.DSN == "" {
		printStatus("Data dir", "%s", cfg.Storage.DataDir)
	}
	printStatus("Config file", "%s", config.Path())
	return nil
}

// fetchHealth reads GET /health, which is not wrapped in the envelope.
func fetchHealth(ctx context.Context, c *apiClient) (api.HealthResponse, error) {
	var health api.HealthResponse
	resp, err := c.get(ctx, "/health")
	if err != nil {
		return health, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return health, fmt.Errorf("server returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return health, fmt.Errorf("decoding health: %w", err)
	}
	return health, nil
}

func backendURL(cfg config.Config) string {
	if cfg.LLM.Backend == "ollama" {
		return cfg.Ollama.BaseURL
	}
	return cfg.LLM.BaseURL
}
