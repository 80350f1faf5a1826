package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/devsocial/devsocial/internal/ai"
	"github.com/devsocial/devsocial/internal/auth"
	"github.com/devsocial/devsocial/internal/config"
	"github.com/devsocial/devsocial/internal/engagement"
	"github.com/devsocial/devsocial/internal/events"
	"github.com/devsocial/devsocial/internal/feed"
	httpapp "github.com/devsocial/devsocial/internal/http"
	"github.com/devsocial/devsocial/internal/media"
	"github.com/devsocial/devsocial/internal/metrics"
	"github.com/devsocial/devsocial/internal/rate"
	"github.com/devsocial/devsocial/internal/store/sqlite"
)

const (
	Version = httpapp.APIVersion
	appName = "devsocial"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "devsocial",
		Short: "Social network backend for developers",
		Long: `DevSocial serves the developer social network API: accounts, posts with
code snippets, likes, comments, follows, notifications, search and AI helpers.

Running without a subcommand starts the server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configPath, logLevel)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the API server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configPath, logLevel)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reconcile",
		Short: "Recompute denormalized counters in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd.Context(), configPath, logLevel)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	cmd.AddCommand(seedCmd())
	cmd.AddCommand(clientCmds()...)

	return cmd
}

func loadConfig(configPath, logLevel string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func runServer(configPath, logLevel string) error {
	cfg, logger, err := loadConfig(configPath, logLevel)
	if err != nil {
		return err
	}

	st, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	var publisher events.Publisher = events.Nop{}
	if cfg.NATSURL != "" {
		p, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("connect nats: %w", err)
		}
		publisher = p
		logger.Info("publishing engagement events", "nats", cfg.NATSURL)
	}
	defer publisher.Close()

	m := metrics.New()

	var completer ai.Completer
	if cfg.LLM.APIKey != "" {
		completer = ai.NewOpenAICompleter(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	} else {
		logger.Warn("no LLM api key configured; AI helpers will fall back or fail")
	}

	uploads, err := media.NewStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	server := httpapp.NewServer(httpapp.Deps{
		Store: st,
		Auth:  auth.NewService(st, cfg.TokenTTL),
		Engagement: engagement.NewService(st,
			engagement.WithPublisher(publisher),
			engagement.WithMetrics(m),
			engagement.WithLogger(logger),
		),
		Feed:    feed.NewService(st),
		AI:      ai.NewService(completer, m, logger),
		Media:   uploads,
		Limiter: rate.NewMemory(),
		Metrics: m,
		Logger:  logger,
	}, cfg)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("devsocial listening", "addr", cfg.Addr, "version", Version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-stop:
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func runReconcile(ctx context.Context, configPath, logLevel string) error {
	cfg, logger, err := loadConfig(configPath, logLevel)
	if err != nil {
		return err
	}
	st, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	report, err := engagement.NewService(st, engagement.WithLogger(logger)).Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	fmt.Printf("✓ Reconciled %d users and %d posts\n", report.Users, report.Posts)
	return nil
}
