package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"creditrisk/internal/backend"
	"creditrisk/internal/config"
	"creditrisk/internal/dispatch"
	"creditrisk/internal/prompt"
	"creditrisk/pkg/types"
)

// Version is reported by GET /.
var Version = "dev"

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Ask(ctx context.Context, name string, rec prompt.CreditRecord, onPartial func(text string)) (backend.InferenceResult, error)
	Observe(ctx context.Context, names []string, rec prompt.CreditRecord, obs dispatch.Observer) (dispatch.DispatchResult, error)
	Backends() []config.BackendConfig
	Models() ([]types.Model, error)
	Status() types.StatusResponse
	Health() map[string]bool
	Ready() bool
}

// NewMux builds the HTTP API router.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON and HTML; NDJSON streams are not compressed.
	r.Use(middleware.Compress(5, "application/json", "text/html"))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}

	h := &handlers{svc: svc}
	r.Get("/", h.info)
	r.Get("/health", h.health)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})
	r.Get("/status", h.status)
	r.Get("/backends", h.backends)
	r.Get("/models", h.models)
	r.Get("/ui", h.ui)
	r.Route("/inference", func(r chi.Router) {
		r.Post("/parallel", h.parallel)
		r.Post("/stream", h.stream)
		r.Post("/{backend}", h.single)
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/openapi.json", openapi)
	MountSwagger(r)
	return r
}

func corsOptions() cors.Options {
	methods := corsAllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}
	headers := corsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Content-Type", "X-Log-Level"}
	}
	origins := corsAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}
}
