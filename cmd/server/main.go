package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/recipeocr/internal/api"
	"github.com/dgallion1/recipeocr/internal/config"
	"github.com/dgallion1/recipeocr/internal/ocr"
	"github.com/dgallion1/recipeocr/internal/pathstore"
	"github.com/dgallion1/recipeocr/internal/pipeline"
	"github.com/dgallion1/recipeocr/internal/source"
)

func main() {
	configPath := flag.String("config", os.Getenv("RECIPEOCR_CONFIG"), "optional YAML config file")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFile(*configPath, cfg)
		if err != nil {
			log.Error("invalid configuration file", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OCR.
	stats := ocr.NewStats(time.Hour)
	engine := ocr.Timed{
		Engine: ocr.NewTesseract(ocr.Options{Languages: cfg.OCRLanguages, MaxDimension: cfg.OCRMaxDimension}),
		Stats:  stats,
	}
	sources := source.Options{
		OCR:                  engine,
		Languages:            cfg.OCRLanguages,
		PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
	}

	// Initialize the optional recipe sink.
	var (
		ps    *pathstore.Client
		sink  pipeline.Sink
		store api.RecipeStore
	)
	if cfg.SinkEnabled() {
		ps = pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
		sink, store = ps, ps
	} else {
		log.Info("pathstore sink disabled, recipes are kept in memory only")
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, sources, sink, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, api.Options{Store: store, OCRStats: stats, OCREngine: engine.Name()}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if ps != nil {
			ps.Close()
		}
	}()

	log.Info("starting recipeocr", "port", cfg.Port, "ocr_engine", engine.Name(), "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
