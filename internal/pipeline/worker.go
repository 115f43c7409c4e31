package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/recipeocr/internal/pathstore"
	"github.com/dgallion1/recipeocr/internal/recipe"
	"github.com/dgallion1/recipeocr/internal/source"
)

// Sink receives completed recipes. *pathstore.Client satisfies it.
type Sink interface {
	PutNode(ctx context.Context, key string, req pathstore.NodeRequest) error
	ListChildren(ctx context.Context, key string, limit int) ([]pathstore.Node, error)
}

// RecipeKey is the sink path a user's recipe is stored under.
func RecipeKey(userID, recipeID string) string {
	return fmt.Sprintf("recipes/users/%s/recipes/%s", userID, recipeID)
}

func hashKey(userID, contentHash string) string {
	return fmt.Sprintf("recipes/users/%s/by_hash/%s", userID, contentHash)
}

// Worker processes a single scan job.
type Worker struct {
	sink       Sink
	sources    source.Options
	ocrTimeout time.Duration
	storeSem   chan struct{}
	log        *slog.Logger

	backoff func(attempt int) time.Duration
}

// NewWorker returns a worker. sink may be nil, in which case recipes are
// kept only in the job store.
func NewWorker(sink Sink, sources source.Options, ocrTimeout time.Duration, storeSem chan struct{}, log *slog.Logger) *Worker {
	return &Worker{
		sink:       sink,
		sources:    sources,
		ocrTimeout: ocrTimeout,
		storeSem:   storeSem,
		log:        log,
		backoff:    Backoff,
	}
}

// Process runs the full scan pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "user_id", job.UserID, "filename", job.Filename)
	defer job.releaseFile()

	// Phase 1: Extract
	job.SetStatus(StatusExtracting, "extracting")
	start := time.Now()
	text, err := w.extract(ctx, job)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	job.SetText(text, time.Since(start))
	log.Info("extracted text", "chars", len(text), "duration_ms", time.Since(start).Milliseconds())

	if strings.TrimSpace(text) == "" {
		job.SetResult(recipe.Parse(""))
		job.SetStatus(StatusNoText, NoTextMessage)
		log.Warn("no text found")
		return
	}
	job.ContentHash = ContentHashHex([]byte(text))

	// Phase 2: Parse
	job.SetStatus(StatusParsing, "parsing")
	r := recipe.Parse(text)
	job.SetResult(r)
	log.Info("parsed recipe", "name", r.Name, "ingredients", len(r.Ingredients), "instructions", len(r.Instructions), "category", r.Category)

	if w.sink == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 2.5: Dedup check
	exists, existingID, err := w.checkDuplicate(ctx, job)
	if err != nil {
		log.Warn("dedup check failed, proceeding", "error", err)
	} else if exists {
		log.Info("duplicate recipe, skipping", "existing_recipe_id", existingID)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	// Phase 3: Store
	job.SetStatus(StatusStoring, "storing")
	key := RecipeKey(job.UserID, job.RecipeID)
	err = w.put(ctx, log, key, pathstore.NodeRequest{
		Value: map[string]any{
			"recipe":       r,
			"filename":     job.Filename,
			"content_hash": job.ContentHash,
			"created_at":   job.CreatedAt.Format(time.RFC3339),
		},
		Source: "recipeocr:" + job.ID,
	})
	if err != nil {
		log.Error("store failed", "key", key, "error", err)
		job.AddError(fmt.Sprintf("store %s: %s", key, err))
		job.SetStatus(StatusPartial, "storing")
		return
	}
	job.MarkStored(key)

	// Write hash index for dedup.
	hashErr := w.put(ctx, log, hashKey(job.UserID, job.ContentHash)+"/"+job.RecipeID, pathstore.NodeRequest{
		Value: map[string]any{
			"filename":   job.Filename,
			"created_at": job.CreatedAt.Format(time.RFC3339),
		},
		Source: "recipeocr:" + job.ID,
	})
	if hashErr != nil {
		log.Warn("hash index write failed", "error", hashErr)
	}

	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) extract(ctx context.Context, job *Job) (string, error) {
	if source.IsImage(job.Filename) && w.ocrTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.ocrTimeout)
		defer cancel()
	}
	text, err := source.Extract(ctx, bytes.NewReader(job.FileData()), job.Filename, w.sources)
	if errors.Is(err, context.DeadlineExceeded) {
		return "", fmt.Errorf("ocr timed out after %s: %w", w.ocrTimeout, err)
	}
	return text, err
}

// put writes a node, retrying transient sink failures with backoff.
func (w *Worker) put(ctx context.Context, log *slog.Logger, key string, req pathstore.NodeRequest) error {
	if w.storeSem != nil {
		select {
		case w.storeSem <- struct{}{}:
			defer func() { <-w.storeSem }()
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var lastErr error
	for attempt := range MaxRetries {
		lastErr = w.sink.PutNode(ctx, key, req)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		log.Warn("retryable store error", "key", key, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// checkDuplicate checks if this content hash already exists for the user.
func (w *Worker) checkDuplicate(ctx context.Context, job *Job) (bool, string, error) {
	children, err := w.sink.ListChildren(ctx, hashKey(job.UserID, job.ContentHash), 1)
	if err != nil {
		return false, "", err
	}
	if len(children) > 0 {
		return true, lastSegment(children[0].Key), nil
	}
	return false, "", nil
}

// lastSegment returns the final component of a dotted or slashed key path.
func lastSegment(key string) string {
	if i := strings.LastIndexAny(key, "./"); i >= 0 {
		return key[i+1:]
	}
	return key
}
