package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/hmans/coursegraph/internal/apperrors"
	"github.com/hmans/coursegraph/internal/auth"
	"github.com/hmans/coursegraph/internal/graph"
)

const requestIDHeader = "X-Request-ID"

// requestLogger logs one line per request with its id, status and latency.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// cors allows browser clients on other origins to call the API.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, "+requestIDHeader)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Next()
	}
}

// authenticate attaches the viewer identified by a bearer token to the request
// context. Requests without an Authorization header pass through anonymously;
// a header that does not carry a valid token is rejected.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, err := auth.ExtractBearerToken(header)
		if err != nil {
			abort(c, apperrors.NewUnauthenticatedError("invalid authorization header"))
			return
		}
		if s.tokens == nil {
			abort(c, apperrors.NewUnauthenticatedError("token authentication is not configured"))
			return
		}

		viewer, err := s.tokens.Parse(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "token expired"
			}
			s.log.Debug().Err(err).Msg("rejected bearer token")
			abort(c, apperrors.NewUnauthenticatedError(msg))
			return
		}

		c.Request = c.Request.WithContext(auth.WithViewer(c.Request.Context(), viewer))
		c.Next()
	}
}

// requireAdmin rejects API requests from anyone but an admin when the gate is enabled.
func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.cfg.Auth.RequireAdmin || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		viewer, ok := auth.ViewerFrom(c.Request.Context())
		if !ok {
			abort(c, apperrors.ErrUnauthenticated)
			return
		}
		if !viewer.IsAdmin() {
			abort(c, apperrors.NewForbiddenError("admin role required"))
			return
		}
		c.Next()
	}
}

// abort ends the request with a GraphQL-shaped error body, classified the same way
// resolver errors are.
func abort(c *gin.Context, err error) {
	code := graph.ErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case graph.CodeUnauthenticated:
		status = http.StatusUnauthorized
	case graph.CodeForbidden:
		status = http.StatusForbidden
	case graph.CodeBadUserInput:
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, &graphql.Response{
		Errors: gqlerror.List{{
			Message:    err.Error(),
			Extensions: map[string]any{"code": code},
		}},
	})
}
