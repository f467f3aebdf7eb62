package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hmans/coursegraph/internal/auth"
	"github.com/hmans/coursegraph/internal/config"
	"github.com/hmans/coursegraph/internal/events"
	"github.com/hmans/coursegraph/internal/graph"
	"github.com/hmans/coursegraph/internal/logger"
	"github.com/hmans/coursegraph/internal/store"
	"github.com/hmans/coursegraph/internal/ui"
)

var (
	cfg        *config.Config
	log        zerolog.Logger
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "coursegraph",
	Short: "A GraphQL API for users and the courses they teach",
	Long: `coursegraph serves a GraphQL API over a document store of users and courses.

Storage is in memory by default; set store.driver in coursegraph.toml (or
COURSEGRAPH_STORE) to "mongo" or "sqlite" to persist data.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init writes the config file, so it must not require a valid one
		if cmd.Name() == "init" {
			return nil
		}

		if err := config.LoadDotEnv(); err != nil {
			return fmt.Errorf("loading .env: %w", err)
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		log = logger.Configure(logger.Config{
			Level:  cfg.Log.Level,
			Pretty: cfg.Log.Pretty,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default "+config.ConfigFile+")")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.RenderError(err.Error()))
		os.Exit(1)
	}
}

// backend holds the store and event publisher a command works against.
type backend struct {
	store  store.Store
	events events.Publisher
}

// openBackend connects to the configured store and event broker.
func openBackend(ctx context.Context) (*backend, error) {
	s, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}

	pub, err := events.Open(cfg.Events.AMQPURL, cfg.Events.Queue)
	if err != nil {
		s.Close(ctx)
		return nil, fmt.Errorf("connecting to event broker: %w", err)
	}

	log.Debug().Str("store", cfg.Store.Driver).Bool("events", cfg.Events.AMQPURL != "").Msg("backend ready")
	return &backend{store: s, events: pub}, nil
}

func (b *backend) resolver() *graph.Resolver {
	return &graph.Resolver{Store: b.store, Events: b.events, Log: log}
}

func (b *backend) Close(ctx context.Context) {
	if err := b.events.Close(); err != nil {
		log.Warn().Err(err).Msg("closing event publisher")
	}
	if err := b.store.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("closing store")
	}
}

// tokenService returns the token issuer/validator, or nil when no secret is configured.
func tokenService() *auth.Service {
	if cfg.Auth.Secret == "" {
		return nil
	}
	return auth.NewService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL())
}
