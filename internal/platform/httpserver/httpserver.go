// Package httpserver builds the process's http.Server with timeouts sized for
// this service's request profile.
package httpserver

import (
	"net/http"
	"time"
)

// Headroom on top of the ledger append bound before the server abandons a
// response write.
const writeSlack = 3 * time.Second

// New builds the HTTP server. appendTimeout is the ledger's per-append bound;
// the write timeout sits above it so a contended append surfaces a conflict
// response instead of a dropped connection.
func New(addr string, handler http.Handler, appendTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      appendTimeout + writeSlack,
	}
}
