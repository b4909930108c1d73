// Package httpserver builds the http.Server with the timeouts this service
// runs under. Handlers stream nothing large, so the write timeout stays
// tight; slow-loris protection comes from the header timeout.
package httpserver

import (
	"net/http"
	"time"

	"mandate/internal/platform/config"
)

// ShutdownTimeout bounds graceful drain on SIGTERM.
const ShutdownTimeout = 10 * time.Second

func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
