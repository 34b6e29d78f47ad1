// Package httpapi serves the comment REST API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Leahcim-1/rd-comment-service/internal/logger"
	"github.com/Leahcim-1/rd-comment-service/internal/metrics"
)

// NewRouter wires the handler routes. When m is non-nil every request is
// counted and /metrics serves its registry.
func NewRouter(h *Handler, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger.HTTP(), m))

	r.Get("/", h.greet)
	r.Get("/healthz", h.health)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.greet)

		r.Route("/comments", func(r chi.Router) {
			r.Get("/", h.listComments)
			r.Post("/", h.createComment)
			r.Get("/{id}", h.getComment)
			r.Put("/{id}", h.updateComment)
			r.Delete("/{id}", h.deleteComment)
		})

		r.Get("/blogs/{blogId}/comments", h.listBlogComments)
	})

	return r
}

func requestLogger(log logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)

			if m != nil {
				m.ObserveRequest(r.Method, route, status, elapsed)
			}
			log.WithFields(map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     status,
				"duration":   elapsed.String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request served")
		})
	}
}
