package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/recipeocr/internal/recipe"
)

// JobStatus represents the state of a scan job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusParsing    JobStatus = "parsing"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusNoText     JobStatus = "no_text"
	StatusPartial    JobStatus = "partial"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// NoTextMessage is the phase reported when extraction finds nothing to parse.
const NoTextMessage = "no text found, please retry or enter manually"

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusNoText, StatusPartial, StatusDupSkipped:
		return true
	}
	return false
}

// Job tracks the state of a single scan.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	RecipeID string `json:"recipe_id"`
	UserID   string `json:"user_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	rawText  string
	result   *recipe.ParsedRecipe
	errors   []string
}

// Progress tracks what each phase produced.
type Progress struct {
	TextChars    int      `json:"text_chars"`
	ExtractMs    int64    `json:"extract_ms"`
	Ingredients  int      `json:"ingredients"`
	Instructions int      `json:"instructions"`
	Stored       bool     `json:"stored"`
	StoredKey    string   `json:"stored_key,omitempty"`
	Errors       []string `json:"errors"`
}

// NewJob returns a queued job for the given upload.
func NewJob(userID, filename string, data []byte) *Job {
	now := time.Now()
	id := generateULID()
	return &Job{
		ID:        id,
		RecipeID:  id,
		UserID:    userID,
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetText records the extracted text and how long extraction took.
func (j *Job) SetText(text string, took time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rawText = text
	j.Progress.TextChars = len([]rune(text))
	j.Progress.ExtractMs = took.Milliseconds()
	j.UpdatedAt = time.Now()
}

// RawText returns the extracted text, empty until extraction finishes.
func (j *Job) RawText() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.rawText
}

// SetResult stores the parsed recipe.
func (j *Job) SetResult(r recipe.ParsedRecipe) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &r
	j.Progress.Ingredients = len(r.Ingredients)
	j.Progress.Instructions = len(r.Instructions)
	j.UpdatedAt = time.Now()
}

// Result returns a copy of the parsed recipe, if any.
func (j *Job) Result() (recipe.ParsedRecipe, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.result == nil {
		return recipe.ParsedRecipe{}, false
	}
	return *j.result, true
}

// MarkStored records the sink key the recipe was written to.
func (j *Job) MarkStored(key string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Stored = true
	j.Progress.StoredKey = key
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseFile drops the upload once it is no longer needed.
func (j *Job) releaseFile() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string               `json:"job_id"`
	RecipeID string               `json:"recipe_id"`
	UserID   string               `json:"user_id"`
	Status   JobStatus            `json:"status"`
	Phase    string               `json:"phase"`
	Filename string               `json:"filename"`
	Progress Progress             `json:"progress"`
	Recipe   *recipe.ParsedRecipe `json:"recipe,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	progress := j.Progress
	progress.Errors = errs

	snap := JobSnapshot{
		ID:       j.ID,
		RecipeID: j.RecipeID,
		UserID:   j.UserID,
		Status:   j.Status,
		Phase:    j.Phase,
		Filename: j.Filename,
		Progress: progress,
	}
	if j.result != nil {
		r := *j.result
		snap.Recipe = &r
	}
	return snap
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
