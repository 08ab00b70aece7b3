// Package server exposes the scraping client and profile analyzer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tokpulse/pkg/analyzer"
	"tokpulse/pkg/config"
	errs "tokpulse/pkg/errors"
	"tokpulse/pkg/logger"
	"tokpulse/pkg/tiktok"
)

// ScrapingClient is the slice of the scraping facade the server needs
type ScrapingClient interface {
	Init(ctx context.Context) error
	SearchUsers(ctx context.Context, term string) ([]tiktok.UserHit, error)
	GetUser(ctx context.Context, username string) (*tiktok.UserProfile, error)
	GetPosts(ctx context.Context, secUID string, limit int) ([]tiktok.Post, error)
	GetComments(ctx context.Context, postID string, limit int) ([]tiktok.Comment, error)
}

// ProfileAnalyzer is the slice of the analyzer the server needs
type ProfileAnalyzer interface {
	Analyze(username string)
	GetTaggedComments(ctx context.Context, username string) (analyzer.Status, []analyzer.TaggedComment, error)
}

// Server wires the HTTP routes to the scraping client and analyzer
type Server struct {
	client   ScrapingClient
	analyzer ProfileAnalyzer
	cfg      *config.Config
	logger   logger.Logger
	router   chi.Router

	// analyzeDelay is how long after a profile view the background
	// analysis kicks off. Tests shorten it.
	analyzeDelay time.Duration
}

// New creates a Server with its routes mounted
func New(client ScrapingClient, a ProfileAnalyzer, cfg *config.Config, log logger.Logger) *Server {
	s := &Server{
		client:       client,
		analyzer:     a,
		cfg:          cfg,
		logger:       log,
		analyzeDelay: time.Second,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/search/{term}", s.handleSearch)
	r.Get("/user/{username}", s.handleUser)
	r.Get("/comments/{username}", s.handleComments)

	s.router = r
	return s
}

// Handler returns the mounted router
func (s *Server) Handler() http.Handler {
	return s.router
}

// requestLogger logs one line per request with method, path, status, and
// duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.InfoWithFields("request handled", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start),
			"remote":   r.RemoteAddr,
		})
	})
}

// writeJSON writes a JSON response with the given status code
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

// writeError writes a JSON error response, mapping pipeline error types to
// HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Type {
		case errs.ErrorTypeEmptyResponse, errs.ErrorTypeUpstreamRejected, errs.ErrorTypeNetwork:
			status = http.StatusBadGateway
		case errs.ErrorTypeMissingToken, errs.ErrorTypeNotInitialized:
			status = http.StatusServiceUnavailable
		}
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
