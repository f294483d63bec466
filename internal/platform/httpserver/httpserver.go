// Package httpserver constructs the server for the operational endpoints.
package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server for the given handler. The header timeout guards
// the health and metrics listener against slow-header connections.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
