package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rotad/rota/types"
)

const defaultShutdownTimeout = 10 * time.Second

// Server runs an HTTP server with graceful shutdown tied to a context.
type Server struct {
	srv             *http.Server
	logger          types.Logger
	shutdownTimeout time.Duration
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the lifecycle logger.
func WithServerLogger(l types.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// WithShutdownTimeout bounds how long in-flight requests may drain.
func WithShutdownTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, handler http.Handler, opts ...ServerOption) *Server {
	s := &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run starts the server and blocks until ctx is cancelled or the listener
// fails. Cancellation triggers a graceful shutdown bounded by the configured
// timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	if s.logger != nil {
		s.logger.Info("http server listening", "addr", s.srv.Addr)
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if s.logger != nil {
			s.logger.Info("http server shutting down")
		}

		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
