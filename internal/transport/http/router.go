package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flywheel/internal/platform/metrics"
	"flywheel/pkg/platform/middleware/layers"
	"flywheel/pkg/platform/middleware/metadata"
	"flywheel/pkg/requestcontext"
)

// NewRouter wires all public endpoints. Greeting routes get the request's
// dispatch layers bound; operational routes do not.
func NewRouter(h *Handler, m *metrics.Metrics, metricsHandler http.Handler) chi.Router {
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(observe(m))

	r.Get("/healthz", h.HandleHealth)
	r.Handle("/metrics", metricsHandler)

	r.Group(func(r chi.Router) {
		r.Use(metadata.ClientMetadata)
		r.Use(layers.Middleware(h.service))
		r.Get("/greet/{name}", h.HandleGreet)
		r.Get("/points", h.HandlePoints)
	})
	return r
}

// requestID copies chi's request ID into requestcontext.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func observe(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(route, ww.Status(), time.Since(start))
		})
	}
}
