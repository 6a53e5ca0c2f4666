// Package server exposes an Explainer over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/docker/explainer/pkg/api"
)

const (
	DefaultTimeout = 30 * time.Second
	MaxTextLength  = 4000
	shutdownGrace  = 5 * time.Second
)

var (
	errEmptyText   = errors.New("text is required")
	errTextTooLong = errors.New("text is too long")
	errBadRequest  = errors.New("invalid request body")
)

// Explainer produces an explanation for a piece of text.
type Explainer interface {
	Explain(ctx context.Context, text string) (string, error)
}

type Server struct {
	e         *echo.Echo
	explainer Explainer
	timeout   time.Duration
}

type Opt func(*Server)

// WithTimeout bounds each upstream model call.
func WithTimeout(d time.Duration) Opt {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(explainer Explainer, opts ...Opt) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.BodyLimit("64K"))

	s := &Server{
		e:         e,
		explainer: explainer,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	group := e.Group("/api")

	// Explain a piece of selected text
	group.POST("/explain", s.explain)

	// Health check endpoint
	group.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, api.PingResponse{Status: "ok"})
	})

	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := http.Server{
		Handler:           s.e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Server shutdown failed", "error", err)
		}
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		slog.Error("Failed to start server", "error", err)
		return err
	}

	return nil
}

func (s *Server) explain(c echo.Context) error {
	var req api.ExplainRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, api.Failure(errBadRequest))
	}

	text := strings.TrimSpace(req.Text)
	switch {
	case text == "":
		return c.JSON(http.StatusBadRequest, api.Failure(errEmptyText))
	case utf8.RuneCountInString(text) > MaxTextLength:
		return c.JSON(http.StatusBadRequest, api.Failure(errTextTooLong))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.timeout)
	defer cancel()

	explanation, err := s.explainer.Explain(ctx, text)
	if err != nil {
		slog.Warn("Explanation failed",
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"error", err)
		return c.JSON(http.StatusBadGateway, api.Failure(err))
	}

	slog.Debug("Explanation served",
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		"length", len(explanation))
	return c.JSON(http.StatusOK, api.Success(explanation))
}
