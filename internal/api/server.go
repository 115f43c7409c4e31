package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgallion1/recipeocr/internal/config"
	"github.com/dgallion1/recipeocr/internal/ocr"
	"github.com/dgallion1/recipeocr/internal/pathstore"
	"github.com/dgallion1/recipeocr/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RecipeStore lists and deletes recipes already written to the sink.
// *pathstore.Client satisfies it.
type RecipeStore interface {
	ListChildren(ctx context.Context, key string, limit int) ([]pathstore.Node, error)
	DeleteNode(ctx context.Context, key string, recursive bool) error
}

// Server is the HTTP API server for recipeocr.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	store        RecipeStore
	ocrStats     *ocr.Stats
	ocrEngine    string
	log          *slog.Logger
	cfg          config.Config
}

// Options carries the optional collaborators of a Server.
type Options struct {
	Store     RecipeStore
	OCRStats  *ocr.Stats
	OCREngine string
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, opts Options, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		store:        opts.Store,
		ocrStats:     opts.OCRStats,
		ocrEngine:    opts.OCREngine,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/parse", s.handleParse)
		r.Post("/api/format", s.handleFormat)
		r.Get("/api/categories", s.handleCategories)

		r.Post("/api/scan", s.handleScan)
		r.Post("/api/scan/batch", s.handleBatchScan)
		r.Get("/api/scan/{jobID}/status", s.handleScanStatus)
		r.Get("/api/scan/{jobID}/result", s.handleScanResult)

		r.Get("/api/stats/ocr", s.handleOCRStats)

		r.Get("/api/recipes", s.handleListRecipes)
		r.Delete("/api/recipes/{recipeID}", s.handleDeleteRecipe)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
