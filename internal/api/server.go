// Package api provides REST endpoints for port resolution, ordering and
// sailing deduplication.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shipping_schedule/internal/dedup"
	"shipping_schedule/internal/ordering"
	"shipping_schedule/internal/resolver"
	"shipping_schedule/internal/storage"
)

// maxBatch bounds the number of items accepted by the batch endpoints.
const maxBatch = 10000

// Server provides REST API access to the port catalog.
type Server struct {
	res         *resolver.Resolver
	order       *ordering.Engine
	dedup       *dedup.Deduplicator
	report      *storage.ReportDB
	gatherer    prometheus.Gatherer
	origins     []string
	authEnabled bool
	apiKeys     map[string]bool // Simple API key auth (when enabled).
	logger      *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	AuthEnabled    bool
	APIKeys        []string            // List of valid API keys.
	AllowedOrigins []string            // CORS origins; empty or "*" allows any.
	Dedup          *dedup.Deduplicator // Defaults to one over the resolver.
	Report         *storage.ReportDB   // Serves /ports/unresolved when set.
	Gatherer       prometheus.Gatherer // Serves /metrics when set.
	Logger         *slog.Logger
}

// NewServer creates a new API server.
func NewServer(res *resolver.Resolver, cfg Config) *Server {
	keys := make(map[string]bool)
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys[k] = true
		}
	}

	d := cfg.Dedup
	if d == nil {
		d = dedup.New(res)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		res:         res,
		order:       ordering.New(res),
		dedup:       d,
		report:      cfg.Report,
		gatherer:    cfg.Gatherer,
		origins:     cfg.AllowedOrigins,
		authEnabled: cfg.AuthEnabled,
		apiKeys:     keys,
		logger:      logger,
	}
}

// Handler returns the full HTTP handler with middleware, the versioned API
// and the metrics endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Standard middleware.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.corsMiddleware)

	r.Mount("/api/v1", s.Router())
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Router returns the API routes without the outer middleware, for embedding
// in other servers.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	// Health check (no auth required).
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.authEnabled {
			r.Use(s.authMiddleware)
		}

		r.Get("/ports", s.handleListPorts)
		r.Get("/ports/resolve", s.handleResolve)
		r.Get("/ports/unresolved", s.handleUnresolved)
		r.Post("/ports/standardize", s.handleStandardize)
		r.Post("/ports/sort", s.handleSortPorts)

		r.Get("/regions", s.handleListRegions)
		r.Post("/regions/sort", s.handleSortRegions)

		r.Post("/sailings/dedupe", s.handleDedupe)
	})

	return r
}

// corsMiddleware adds CORS headers for browser access.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) string {
	if len(s.origins) == 0 {
		return "*"
	}
	for _, o := range s.origins {
		if o == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}

// authMiddleware validates API key authentication.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check X-API-Key header first.
		apiKey := r.Header.Get("X-API-Key")

		// Fall back to Authorization: Bearer <key>.
		if apiKey == "" {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "API key required")
			return
		}
		if !s.apiKeys[apiKey] {
			writeError(w, http.StatusForbidden, "Invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Helper functions.

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeBody decodes a JSON request body, writing the error response itself
// when decoding fails.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 16<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
