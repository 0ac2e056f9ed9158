package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	SecretKey   []byte
	RequireAuth bool
}

// NewRouter wires every endpoint. Health and metrics stay outside the
// authenticated group.
func NewRouter(h *Handler, opts RouterOptions, logger logging.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(Metrics)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(Authenticator(opts.SecretKey, opts.RequireAuth))

		r.Post("/sync-document", h.SyncDocument)
		r.Delete("/sync-document", h.DeleteDocument)

		r.Post("/signed-urls", h.SignedURLs)
		r.Get("/signed-urls", h.SignedURL)
		r.Post("/media/upload-url", h.UploadURL)

		r.Get("/usage", h.Usage)

		r.Get("/documents", h.ListBase)
		r.Get("/documents/unified", h.ListUnified)
		r.Get("/documents/details/{table}", h.ListDetails)

		r.Post("/devices", h.RegisterDevice)
	})

	return r
}
