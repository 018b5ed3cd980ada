package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotalog/rotalog-api/internal/auth"
	"github.com/rotalog/rotalog-api/internal/store"
	"github.com/rotalog/rotalog-api/internal/syncx"
	"github.com/rs/zerolog/log"
)

// Server holds dependencies for HTTP handlers
type Server struct {
	Store     store.Store
	Engine    *syncx.Engine
	Cursor    *syncx.CursorService
	Download  *syncx.DownloadService
	RateLimit RateLimitInfo
	limiter   *RateLimiter
}

// NewServer wires the sync services on top of one store.
func NewServer(s store.Store) *Server {
	srv := &Server{
		Store:     s,
		Engine:    syncx.NewEngine(s),
		Cursor:    syncx.NewCursorService(s),
		Download:  syncx.NewDownloadService(s),
		RateLimit: DefaultRateLimit,
	}
	srv.limiter = NewRateLimiter(srv.RateLimit)
	return srv
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode json response")
	}
}

// writeError writes an error response without leaking internals.
func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if cid := GetCorrelationID(r.Context()); cid != "" {
		w.Header().Set("X-Correlation-ID", cid)
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

// Routes creates the HTTP router with all sync endpoints
func (s *Server) Routes(jwtCfg auth.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CorrelationMiddleware)

	// Health check (unauthenticated)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("ok"))
	})

	// Capability discovery (unauthenticated)
	r.Get("/v1/sync/info", s.Info)

	// All sync endpoints require authentication
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(jwtCfg))
		r.Use(s.limiter.Middleware)

		r.Post("/v1/sync/upload", s.UploadBatch)
		r.Get("/v1/sync/download/initial", s.DownloadInitial)
		r.Get("/v1/sync/download/incremental", s.DownloadIncremental)
		r.Get("/v1/sync/last-sync-timestamp", s.LastSyncTimestamp)
	})

	log.Info().Msg("HTTP routes registered")
	return r
}
