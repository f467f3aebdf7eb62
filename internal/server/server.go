// Package server exposes the GraphQL API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/lru"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hmans/coursegraph/internal/auth"
	"github.com/hmans/coursegraph/internal/config"
	"github.com/hmans/coursegraph/internal/graph"
	"github.com/hmans/coursegraph/internal/web"
)

// shutdownTimeout bounds how long in-flight requests get after a stop signal.
const shutdownTimeout = 5 * time.Second

// Options holds the collaborators of a Server.
type Options struct {
	Config   *config.Config
	Resolver *graph.Resolver
	// Tokens validates bearer tokens. Nil rejects every request that carries one.
	Tokens *auth.Service
	Log    zerolog.Logger
}

// Server is the HTTP gateway in front of the GraphQL engine.
type Server struct {
	cfg    *config.Config
	tokens *auth.Service
	log    zerolog.Logger
	engine *gin.Engine
	http   *http.Server
}

// New builds the router and the underlying http.Server.
func New(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	s := &Server{
		cfg:    opts.Config,
		tokens: opts.Tokens,
		log:    opts.Log,
	}

	if opts.Config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.engine = s.routes(graph.NewExecutableSchema(graph.Config{
		Resolvers: opts.Resolver,
		Log:       opts.Log,
	}))

	srvCfg := opts.Config.Server
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", srvCfg.Port),
		Handler:      s.engine,
		ReadTimeout:  srvCfg.ReadTimeout(),
		WriteTimeout: srvCfg.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		s.log.Info().
			Str("addr", s.http.Addr).
			Str("graphql", s.cfg.Server.GraphQLPath).
			Str("store", s.cfg.Store.Driver).
			Bool("require_admin", s.cfg.Auth.RequireAdmin).
			Msg("starting server")
		serverErr <- s.http.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.log.Info().Msg("server stopped")
		return nil
	}
}

func (s *Server) routes(es graphql.ExecutableSchema) *gin.Engine {
	srvCfg := s.cfg.Server

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(s.log))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))
	engine.Use(cors())
	engine.Use(s.authenticate())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gql := newGraphQLHandler(es, srvCfg)
	play := playground.Handler("coursegraph", srvCfg.GraphQLPath)

	api := engine.Group(srvCfg.GraphQLPath, s.requireAdmin())
	api.POST("", gin.WrapH(gql))
	api.OPTIONS("", gin.WrapH(gql))
	api.GET("", func(c *gin.Context) {
		// Plain browser visits get the playground; GET queries go to the API.
		if srvCfg.Playground && c.Query("query") == "" {
			play.ServeHTTP(c.Writer, c.Request)
			return
		}
		gql.ServeHTTP(c.Writer, c.Request)
	})

	engine.NoRoute(gin.WrapH(web.Handler(srvCfg.GraphQLPath)))
	return engine
}

// newGraphQLHandler configures gqlgen's HTTP handler for es.
func newGraphQLHandler(es graphql.ExecutableSchema, cfg config.ServerConfig) *handler.Server {
	srv := handler.New(es)

	srv.AddTransport(transport.Options{})
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})

	cacheSize := cfg.QueryCacheSize
	if cacheSize <= 0 {
		cacheSize = 1000
	}
	srv.SetQueryCache(lru.New[*ast.QueryDocument](cacheSize))
	srv.Use(extension.AutomaticPersistedQuery{
		Cache: lru.New[string](100),
	})
	if cfg.Introspection {
		srv.Use(extension.Introspection{})
	}
	if cfg.MaxComplexity > 0 {
		srv.Use(extension.FixedComplexityLimit(cfg.MaxComplexity))
	}

	return srv
}
