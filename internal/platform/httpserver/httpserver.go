package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// Timeouts bounds each phase of a connection. Zero fields take the defaults.
type Timeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
}

// DefaultTimeouts leave the write deadline above the router's request
// timeout so handlers can still write their timeout response.
var DefaultTimeouts = Timeouts{
	ReadHeader: 5 * time.Second,
	Read:       15 * time.Second,
	Write:      35 * time.Second,
	Idle:       60 * time.Second,
}

// Option configures the server.
type Option func(*http.Server)

// WithTimeouts overrides the connection timeouts.
func WithTimeouts(t Timeouts) Option {
	return func(s *http.Server) {
		if t.ReadHeader > 0 {
			s.ReadHeaderTimeout = t.ReadHeader
		}
		if t.Read > 0 {
			s.ReadTimeout = t.Read
		}
		if t.Write > 0 {
			s.WriteTimeout = t.Write
		}
		if t.Idle > 0 {
			s.IdleTimeout = t.Idle
		}
	}
}

// WithLogger routes net/http's internal errors (TLS handshakes, panics in
// hijacked connections) to slog at warn level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *http.Server) {
		s.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelWarn)
	}
}

// New builds an HTTP server with the default timeouts.
func New(addr string, handler http.Handler, opts ...Option) *http.Server {
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: DefaultTimeouts.ReadHeader,
		ReadTimeout:       DefaultTimeouts.Read,
		WriteTimeout:      DefaultTimeouts.Write,
		IdleTimeout:       DefaultTimeouts.Idle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
