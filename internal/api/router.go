package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"golang.org/x/time/rate"

	"github.com/projecthelena/clockping/internal/clock"
	"github.com/projecthelena/clockping/internal/config"
	_ "github.com/projecthelena/clockping/internal/docs"
	"github.com/projecthelena/clockping/internal/probe"
	"github.com/projecthelena/clockping/internal/version"
)

// CorrelationHeader carries the request correlation ID in both directions.
const CorrelationHeader = "X-Correlation-ID"

// SecurityHeaders middleware adds essential security headers to all responses.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		next.ServeHTTP(w, r)
	})
}

// Correlation reuses the caller's correlation ID or mints a new one.
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corr := r.Header.Get(CorrelationHeader)
		if corr == "" {
			corr = uuid.NewString()
		}
		w.Header().Set(CorrelationHeader, corr)
		next.ServeHTTP(w, r)
	})
}

// Deps are the collaborators the handlers need. Prober may be nil, in
// which case one is built from cfg.ProbeTimeout.
type Deps struct {
	Config   *config.Config
	Clock    *clock.Clock
	Versions *version.Reader
	Prober   *probe.Prober
}

// NewRouter builds the HTTP router serving the status page and the probes.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Only trust X-Forwarded-For when behind a trusted reverse proxy, otherwise
	// clients could pick their own rate limit bucket.
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}

	r.Use(Correlation)
	r.Use(SecurityHeaders)

	versions := d.Versions
	if versions == nil {
		versions = version.NewReader(cfg.VersionFile)
	}
	prober := d.Prober
	if prober == nil {
		prober = probe.NewProber(cfg.ProbeTimeout)
	}

	// Every readiness call dials out, so it gets its own limiter.
	limit := rate.Limit(cfg.ReadinessRate)
	if cfg.ReadinessRate <= 0 {
		limit = rate.Inf
	}
	readyLimiter := NewIPRateLimiter(limit, cfg.ReadinessBurst)

	liveness := Liveness(d.Clock, versions)
	r.Get("/", liveness)
	r.Get("/liveness", liveness)

	r.With(RateLimitMiddleware(readyLimiter)).Get("/readiness", Readiness(cfg.DBEndpoint, prober))

	r.Get("/api/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/api/docs/doc.json"),
	))

	return r
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
