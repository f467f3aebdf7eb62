package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hmans/coursegraph/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the web server",
	Long: `Start an HTTP server that serves the GraphQL API.

The server exposes:
  - GraphQL endpoint at /graphql (POST, or GET with a query parameter)
  - GraphQL Playground at /graphql (GET)
  - Health check at /health
  - A small client page at /

Examples:
  # Start server on the configured port (default 4000)
  coursegraph serve

  # Start server on a custom port
  coursegraph serve --port 3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	// Set up signal handling with context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer b.Close(context.Background())

	tokens := tokenService()
	if tokens == nil {
		log.Warn().Msg("no auth secret configured; bearer tokens will be rejected")
	}

	srv := server.New(server.Options{
		Config:   cfg,
		Resolver: b.resolver(),
		Tokens:   tokens,
		Log:      log,
	})

	fmt.Printf("Starting server at http://localhost:%d/\n", cfg.Server.Port)
	if cfg.Server.Playground {
		fmt.Printf("GraphQL Playground: http://localhost:%d%s\n", cfg.Server.Port, cfg.Server.GraphQLPath)
	}
	return srv.Run(ctx)
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
