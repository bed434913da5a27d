package server

import (
	"context"
	"net/http"
	"time"

	"github.com/oggyb/sms-gateway/internal/middleware"
	routes "github.com/oggyb/sms-gateway/internal/router"
	"github.com/rs/zerolog"
)

// Server owns the underlying http.Server instance.
type Server struct {
	http *http.Server
}

// New creates a new HTTP server bound to the given address and configured
// with the provided application dependencies and middleware chain. prefix
// is the API mount point (e.g. "/api/v1"), and log drives the request
// logging middleware.
func New(addr, prefix string, deps routes.AppDeps, log zerolog.Logger) *Server {
	mux := http.NewServeMux()
	routes.Register(mux, deps, prefix)

	root := Chain(
		mux,
		middleware.RequestLogger(log),
	)

	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           root,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start runs the HTTP server and blocks until ListenAndServe returns.
func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server, waiting for in-flight
// requests to complete until the given context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
