// Package main is the CLI entry point for the convention planner service.
//
// Start the server:
//
//	planner serve --config planner.yaml
//
// Issue a token for a user:
//
//	planner token --config planner.yaml --user-id u1 --name Alice
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/assistant"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/assistant/providers"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/auth"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/config"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/gateway"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/hub"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/observability"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/store"
	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "planner",
		Short: "Convention planner service",
	}
	rootCmd.PersistentFlags().String("config", "planner.yaml", "path to configuration file")
	rootCmd.AddCommand(newServeCmd(), newTokenCmd(), newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the planner server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := cfg.NewLogger()

			st, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			registry := prometheus.NewRegistry()
			metrics := observability.NewMetrics(registry)

			broadcastHub := hub.New(
				hub.WithLogger(logger),
				hub.WithMetrics(metrics),
			)

			authService := auth.NewService(auth.Config{
				JWTSecret:   cfg.Auth.JWTSecret,
				TokenExpiry: cfg.Auth.TokenExpiry,
				APIKeys:     apiKeys(cfg),
			})

			loop, err := buildLoop(cfg, st, broadcastHub, logger, metrics)
			if err != nil {
				return err
			}

			server := gateway.NewServer(cfg, logger, st, broadcastHub, authService, loop, metrics, registry)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			userID, _ := cmd.Flags().GetString("user-id")
			name, _ := cmd.Flags().GetString("name")
			if userID == "" {
				return fmt.Errorf("--user-id is required")
			}

			authService := auth.NewService(auth.Config{
				JWTSecret:   cfg.Auth.JWTSecret,
				TokenExpiry: cfg.Auth.TokenExpiry,
			})
			token, err := authService.GenerateJWT(&models.User{ID: userID, Name: name})
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().String("user-id", "", "subject user id")
	cmd.Flags().String("name", "", "display name")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("planner %s (%s)\n", version, commit)
		},
	}
}

func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	if cfg.Database.Path == "" {
		logger.Info("using in-memory store")
		return store.NewMemoryStore(), nil
	}
	logger.Info("opening sqlite store", "path", cfg.Database.Path)
	return store.NewSQLiteStore(cfg.Database.Path)
}

func apiKeys(cfg *config.Config) []auth.APIKeyConfig {
	keys := make([]auth.APIKeyConfig, len(cfg.Auth.APIKeys))
	for i, k := range cfg.Auth.APIKeys {
		keys[i] = auth.APIKeyConfig{Key: k.Key, UserID: k.UserID, Name: k.Name}
	}
	return keys
}

func buildLoop(cfg *config.Config, st store.Store, broadcastHub *hub.Hub, logger *slog.Logger, metrics *observability.Metrics) (*assistant.Loop, error) {
	if cfg.LLM.APIKey == "" {
		logger.Warn("no LLM API key configured, chat route disabled")
		return nil, nil
	}
	provider, err := providers.New(cfg.LLM)
	if err != nil {
		return nil, err
	}

	registry := assistant.NewRegistry(logger, metrics)
	toolset := assistant.NewToolset(st, broadcastHub, logger)
	if err := toolset.RegisterAll(registry); err != nil {
		return nil, err
	}

	loopConfig := assistant.LoopConfig{
		Model:        cfg.LLM.Model,
		Persona:      cfg.LLM.Persona,
		MaxToolCalls: cfg.LLM.MaxToolCalls,
		MaxWallTime:  cfg.LLM.MaxWallTime,
	}
	return assistant.NewLoop(provider, registry, loopConfig, logger, metrics), nil
}
