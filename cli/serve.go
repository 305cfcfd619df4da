// Package cli implements the anther command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/petal-labs/anther/builtin"
	"github.com/petal-labs/anther/config"
	antherotel "github.com/petal-labs/anther/otel"
	"github.com/petal-labs/anther/review"
	"github.com/petal-labs/anther/server"
	"github.com/petal-labs/anther/tool"
)

// Version is set by main from the build version.
var Version = "dev"

// NewServeCmd creates the "serve" subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the tool HTTP server",
		RunE:  runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (overrides config)")
	cmd.Flags().String("config", "", "Path to anther.yaml")
	cmd.Flags().String("workspace", "", "Workspace directory for file tools (overrides config)")
	cmd.Flags().Bool("no-history", false, "Disable invocation history persistence")
	cmd.Flags().Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", 60*time.Second, "HTTP write timeout")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	explicitConfigPath, _ := cmd.Flags().GetString("config")
	readTimeout, _ := cmd.Flags().GetDuration("read-timeout")
	writeTimeout, _ := cmd.Flags().GetDuration("write-timeout")

	cfg, err := config.Load(explicitConfigPath)
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if ws, _ := cmd.Flags().GetString("workspace"); ws != "" {
		cfg.Tools.Workspace = ws
	}
	if noHistory, _ := cmd.Flags().GetBool("no-history"); noHistory {
		cfg.History.Disabled = true
	}

	logger := slog.Default()

	observer, otelShutdown, err := antherotel.Setup(cmd.Context(), antherotel.SetupConfig{
		Endpoint:    cfg.Otel.Endpoint,
		ServiceName: "anther",
		Version:     Version,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = otelShutdown(shutdownCtx)
	}()
	tool.SetObserver(observer)
	defer tool.SetObserver(nil)

	checker, err := buildChecker(cfg.Review)
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}

	registry := tool.NewRegistry()
	if _, err := builtin.RegisterAll(registry, builtin.Options{
		Workspace:      cfg.Tools.Workspace,
		WeatherAPIKey:  cfg.Tools.WeatherAPIKey,
		WeatherBaseURL: cfg.Tools.WeatherBaseURL,
		QuoteBaseURL:   cfg.Tools.QuoteBaseURL,
		Checker:        checker,
		ServerName:     "anther",
		Version:        Version,
		Started:        time.Now().UTC(),
	}); err != nil {
		// Registration conflicts are startup-fatal.
		return fmt.Errorf("registering built-in tools: %w", err)
	}

	var history server.History
	if cfg.History.Disabled {
		logger.Info("invocation history persistence disabled, keeping records in memory")
		history = server.NewMemoryHistory(0)
	} else {
		sqliteHistory, err := server.NewSQLiteHistory(server.SQLiteHistoryConfig{
			DSN:    cfg.History.DSN,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("opening invocation history: %w", err)
		}
		defer func() {
			_ = sqliteHistory.Close()
		}()
		history = sqliteHistory
	}

	dispatcher, err := tool.NewDispatcher(tool.DispatcherConfig{
		Registry: registry,
		Logger:   logger,
		Recorder: history,
	})
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	healthScheduler, err := tool.NewHealthScheduler(tool.HealthSchedulerConfig{
		Registry:         registry,
		CronExpr:         cfg.Health.Cron,
		FailureThreshold: cfg.Health.Threshold,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("creating health scheduler: %w", err)
	}
	if err := healthScheduler.Start(cmd.Context()); err != nil {
		return fmt.Errorf("starting health scheduler: %w", err)
	}
	defer func() {
		_ = healthScheduler.Stop(context.Background())
	}()

	srv := server.New(server.Config{
		Dispatcher: dispatcher,
		Scheduler:  healthScheduler,
		History:    history,
		CORSOrigin: cfg.Server.CORSOrigin,
		MaxBody:    cfg.Server.MaxBodyBytes,
		Logger:     logger,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "anther listening on %s\n", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(cmd.OutOrStdout(), "Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return exitError(exitRuntime, "shutdown error: %v", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitError(exitRuntime, "server error: %v", err)
		}
		return nil
	}
}

func buildChecker(cfg config.ReviewConfig) (*review.Checker, error) {
	custom := make([]review.Rule, 0, len(cfg.Rules))
	for _, decl := range cfg.Rules {
		rule, err := review.NewCustomRule(decl.ID, decl.Pattern, decl.Message)
		if err != nil {
			return nil, err
		}
		custom = append(custom, rule)
	}
	return review.NewChecker(cfg.LineLimit, custom...), nil
}
