package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"ai-chat-relay/internal/config"
	"ai-chat-relay/internal/provider"
	"ai-chat-relay/internal/router"
	"ai-chat-relay/internal/translator"
)

const (
	shutdownGracePeriod = 10 * time.Second
	idleTimeout         = 120 * time.Second
)

type Server struct {
	cfg     config.Config
	router  *router.Router
	app     *echo.Echo
	address string
}

// New constructs an HTTP server wired with routing and middleware.
func New(cfg config.Config, rt *router.Router) (*Server, error) {
	if rt == nil {
		return nil, errors.New("router must not be nil")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = jsonErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"request_id", v.RequestID,
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"error", v.Error,
			)
			return nil
		},
	}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'; form-action 'none'",
	}))

	srv := &Server{
		cfg:     cfg,
		router:  rt,
		app:     e,
		address: fmt.Sprintf(":%d", cfg.Server.Port),
	}

	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the routed echo instance.
func (s *Server) Handler() http.Handler {
	return s.app
}

// Run starts the HTTP server and blocks until the context is cancelled.
// WriteTimeout comes from configuration and is zero by default so that
// long streams are not cut off.
func (s *Server) Run(ctx context.Context) error {
	printStartupBanner(s.cfg.Server.Port)
	slog.Info("starting server", "addr", s.address)

	httpServer := &http.Server{
		Addr:         s.address,
		Handler:      s.app,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.app.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := s.app.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		slog.Info("server shutdown complete")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	s.app.GET("/health", s.handleHealth)
	s.app.GET("/api/providers", s.handleProviders)
	s.app.Any("/api/chat", s.handleChat)
	s.app.POST("/api/complete", s.handleComplete)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type providerInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DefaultModel string `json:"defaultModel"`
	FastModel    string `json:"fastModel"`
	Configured   bool   `json:"configured"`
}

func (s *Server) handleProviders(c echo.Context) error {
	configured := s.router.Configured()
	out := make([]providerInfo, 0, len(configured))
	for _, desc := range provider.Catalog() {
		out = append(out, providerInfo{
			ID:           desc.ID,
			Name:         desc.DisplayName,
			DefaultModel: desc.DefaultModel,
			FastModel:    desc.FastModel,
			Configured:   configured[desc.ID],
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"providers": out})
}

// handleChat relays one chat as an SSE stream. Failures before the stream
// opens are answered with a JSON error; later ones travel in-stream.
func (s *Server) handleChat(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return requestError{Status: http.StatusMethodNotAllowed, Message: "Method not allowed"}
	}

	var req translator.ChatRequest
	if err := s.decodeRequestBody(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	stream, route, err := s.router.Open(ctx, req.ToCanonical())
	if err != nil {
		return toHTTPError(err)
	}
	defer stream.Close()

	sink, err := newSSESink(c)
	if err != nil {
		return err
	}

	slog.Debug("relay started",
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		"provider", route.Provider,
		"model", route.Model,
	)
	stream.Relay(ctx, sink)
	return nil
}

// handleComplete runs the same relay but answers with one JSON body.
func (s *Server) handleComplete(c echo.Context) error {
	var req translator.ChatRequest
	if err := s.decodeRequestBody(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	stream, route, err := s.router.Open(ctx, req.ToCanonical())
	if err != nil {
		return toHTTPError(err)
	}
	defer stream.Close()

	var collector translator.Collector
	stream.Relay(ctx, &collector)

	if err := collector.Err(); err != nil {
		return requestError{Status: http.StatusBadGateway, Message: err.Error()}
	}
	return c.JSON(http.StatusOK, collector.Response(route.Provider, route.Model))
}

func (s *Server) decodeRequestBody(c echo.Context, target any) error {
	req := c.Request()
	defer req.Body.Close()

	req.Body = http.MaxBytesReader(c.Response(), req.Body, s.cfg.Server.MaxBodyBytes)

	decoder := json.NewDecoder(req.Body)
	if err := decoder.Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return requestError{Status: http.StatusBadRequest, Message: "request body is required"}
		case errors.As(err, &tooLarge):
			return requestError{Status: http.StatusRequestEntityTooLarge, Message: "request body too large"}
		}
		return requestError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("invalid JSON payload: %v", err),
		}
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return requestError{
			Status:  http.StatusBadRequest,
			Message: "request body must contain a single JSON object",
		}
	}
	return nil
}

func printStartupBanner(port int) {
	host := "127.0.0.1"
	fmt.Println()
	fmt.Println("ai-chat-relay ready")
	fmt.Printf("Listening on http://%s:%d\n", host, port)
	fmt.Println("Endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/providers")
	fmt.Println("  POST /api/chat")
	fmt.Println("  POST /api/complete")
	fmt.Printf("Example:\n  curl -N http://%s:%d/api/chat -H 'Content-Type: application/json' -d '{\"provider\":\"auto\",\"messages\":[{\"role\":\"user\",\"content\":\"hello\"}]}'\n\n", host, port)
}
