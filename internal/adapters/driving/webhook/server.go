// Package webhook receives Google Drive push notifications over HTTP and
// dispatches them to the watcher.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/custodia-labs/drivewatch/internal/core/domain"
	"github.com/custodia-labs/drivewatch/internal/core/ports/driving"
	"github.com/custodia-labs/drivewatch/internal/logger"
)

// Defaults for the listener.
const (
	DefaultListen = ":8080"
	DefaultPath   = "/notifications"

	// MaxBodySize caps request bodies. Drive deliveries carry no body.
	MaxBodySize = "64K"

	shutdownTimeout = 10 * time.Second
)

// Options configures the server.
type Options struct {
	// Listen is the TCP address, e.g. ":8080". Port 0 picks a free port.
	Listen string

	// Path is the notification route.
	Path string
}

// Response is the JSON body returned for each delivery.
type Response struct {
	Status       string `json:"status"`
	Skipped      string `json:"skipped,omitempty"`
	FilesChanged int    `json:"filesChanged"`
	Emitted      int    `json:"emitted"`
	Error        string `json:"error,omitempty"`
}

// Server is the HTTP endpoint Google delivers notifications to.
type Server struct {
	mu       sync.Mutex
	echo     *echo.Echo
	watcher  driving.Watcher
	listen   string
	path     string
	listener net.Listener
}

// NewServer creates a webhook server for the watcher.
func NewServer(watcher driving.Watcher, opts Options) *Server {
	if opts.Listen == "" {
		opts.Listen = DefaultListen
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(MaxBodySize))

	s := &Server{
		echo:    e,
		watcher: watcher,
		listen:  opts.Listen,
		path:    opts.Path,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the endpoints.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
	s.echo.POST(s.path, s.handleNotification)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the bound address once Start is listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start listens and serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listen, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.echo.Listener = listener
	s.mu.Unlock()

	logger.Info("webhook: listening on %s%s", listener.Addr(), s.path)

	errChan := make(chan error, 1)
	go func() {
		if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

// handleNotification turns a delivery into a webhook trigger.
// Processing failures answer 500 so Google redelivers; ignored deliveries
// answer 200.
func (s *Server) handleNotification(c echo.Context) error {
	req := c.Request()
	headers := domain.ParseWebhookHeaders(req.Header.Get)

	logger.Debug("webhook: delivery %s state=%s channel=%s changed=%q",
		headers.MessageNumber, headers.ResourceState, headers.ChannelID, headers.Changed)

	// A dropped connection must not abort a half-processed delivery.
	ctx := context.WithoutCancel(req.Context())

	result, err := s.watcher.Dispatch(ctx, domain.NewWebhookTrigger(headers))
	if err != nil {
		logger.Error("webhook: delivery %s failed: %v", headers.MessageNumber, err)
		return c.JSON(http.StatusInternalServerError, Response{Status: "error", Error: err.Error()})
	}

	resp := Response{Status: "ok"}
	if result != nil {
		resp.Skipped = string(result.Skipped)
		resp.FilesChanged = result.FilesChanged
		resp.Emitted = result.Emitted
		if result.Skipped != driving.SkipNone {
			resp.Status = "ignored"
		}
	}
	return c.JSON(http.StatusOK, resp)
}
