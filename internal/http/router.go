// Package httpapi assembles the HTTP surface. Handlers stay thin and delegate
// to domain services; transport concerns live here.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veracity/internal/platform/middleware"
	trusthandler "veracity/internal/trust/handler"
)

// NewRouter wires all public endpoints. Authentication is an external
// collaborator; by the time a request reaches this router the caller is
// assumed authorized.
func NewRouter(trust *trusthandler.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestMetadata)

	trust.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
