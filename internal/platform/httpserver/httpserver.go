package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with timeouts sized for workbook uploads and
// downloads, which can run to tens of megabytes on slow links.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}
}
