package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/recipeocr/internal/config"
	"github.com/dgallion1/recipeocr/internal/ocr"
	"github.com/dgallion1/recipeocr/internal/pathstore"
	"github.com/dgallion1/recipeocr/internal/pipeline"
	"github.com/dgallion1/recipeocr/internal/recipe"
	"github.com/dgallion1/recipeocr/internal/source"
	"github.com/google/go-cmp/cmp"
)

const testKey = "secret"

type fakeStore struct {
	children []pathstore.Node
	deleted  []string
	err      error
}

func (f *fakeStore) ListChildren(ctx context.Context, key string, limit int) ([]pathstore.Node, error) {
	return f.children, f.err
}

func (f *fakeStore) DeleteNode(ctx context.Context, key string, recursive bool) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:             testKey,
		MaxUploadBytes:     1 << 20,
		WorkerCount:        1,
		MaxQueueSize:       10,
		MaxConcurrentStore: 1,
		JobTTL:             time.Hour,
		OCRTimeout:         time.Second,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, source.Options{}, nil, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, opts, log, cfg)
}

func do(t *testing.T, s *Server, method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func multipartBody(t *testing.T, field string, files map[string]string, userID string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if userID != "" {
		mw.WriteField("user_id", userID)
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHealth_NoAuth(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, Options{})
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic abc"},
		{"wrong key", "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader("x"))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestParse_PlainText(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodPost, "/api/parse", "text/plain", strings.NewReader("Grandma's Chili\nServes 8\n1 lb beef"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got map[string]any
	decode(t, rec, &got)
	if got["name"] != "Grandma's Chili" {
		t.Errorf("expected name %q, got %v", "Grandma's Chili", got["name"])
	}
	if got["servings"] != float64(8) {
		t.Errorf("expected servings 8, got %v", got["servings"])
	}
	if _, ok := got["no_text"]; ok {
		t.Error("expected no_text to be omitted for non-blank input")
	}
}

func TestParse_JSONMatchesEngine(t *testing.T) {
	s := newTestServer(t, Options{})
	text := "Iced Tea\nIngredients\n4 tea bags\nInstructions\nSteep the bags"
	body, _ := json.Marshal(map[string]string{"text": text})
	rec := do(t, s, http.MethodPost, "/api/parse", "application/json; charset=utf-8", bytes.NewReader(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got recipe.ParsedRecipe
	decode(t, rec, &got)
	if diff := cmp.Diff(recipe.Parse(text), got); diff != "" {
		t.Errorf("response mismatch (-engine +api):\n%s", diff)
	}
}

func TestParse_BlankInput(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodPost, "/api/parse", "text/plain", strings.NewReader("  \n "))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got map[string]any
	decode(t, rec, &got)
	if got["no_text"] != true {
		t.Errorf("expected no_text true, got %v", got["no_text"])
	}
	if got["category"] != recipe.DefaultCategory {
		t.Errorf("expected default category, got %v", got["category"])
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodPost, "/api/parse", "application/json", strings.NewReader("{"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestFormat(t *testing.T) {
	s := newTestServer(t, Options{})
	body := `{"name":"Soup","ingredients":["1 onion",{"name":"carrots","quantity":2,"unit":"cups"}],"instructions":[{"step":"Simmer"}],"servings":0}`
	rec := do(t, s, http.MethodPost, "/api/format", "application/json", strings.NewReader(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got recipe.ParsedRecipe
	decode(t, rec, &got)
	want := recipe.ParsedRecipe{
		Name:         "Soup",
		Ingredients:  []string{"1 onion", "2 cups carrots"},
		Instructions: []string{"Simmer"},
		Servings:     1,
		Category:     recipe.DefaultCategory,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("format mismatch (-want +got):\n%s", diff)
	}
}

func TestCategories(t *testing.T) {
	s := newTestServer(t, Options{})
	rec := do(t, s, http.MethodGet, "/api/categories", "", nil)
	var got struct {
		Categories []string `json:"categories"`
	}
	decode(t, rec, &got)
	if diff := cmp.Diff(recipe.Categories(), got.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func waitForResult(t *testing.T, s *Server, jobID string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := do(t, s, http.MethodGet, "/api/scan/"+jobID+"/result", "", nil)
		if rec.Code == http.StatusOK {
			var got map[string]any
			decode(t, rec, &got)
			return got
		}
		if rec.Code != http.StatusConflict {
			t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", jobID)
	return nil
}

func TestScan_Flow(t *testing.T) {
	s := newTestServer(t, Options{})
	body, ct := multipartBody(t, "file", map[string]string{"soup.txt": "Tomato Soup\n2 cups tomatoes\nSimmer gently"}, "u1")
	rec := do(t, s, http.MethodPost, "/api/scan", ct, body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted map[string]any
	decode(t, rec, &accepted)
	jobID, _ := accepted["job_id"].(string)
	if jobID == "" {
		t.Fatalf("expected job id, got %v", accepted)
	}

	result := waitForResult(t, s, jobID)
	if result["status"] != string(pipeline.StatusCompleted) {
		t.Errorf("expected completed, got %v", result["status"])
	}
	r, _ := result["recipe"].(map[string]any)
	if r["name"] != "Tomato Soup" {
		t.Errorf("expected recipe name Tomato Soup, got %v", r["name"])
	}

	status := do(t, s, http.MethodGet, "/api/scan/"+jobID+"/status", "", nil)
	if status.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", status.Code)
	}
}

func TestScan_NoText(t *testing.T) {
	s := newTestServer(t, Options{})
	body, ct := multipartBody(t, "file", map[string]string{"blank.txt": "   "}, "u1")
	rec := do(t, s, http.MethodPost, "/api/scan", ct, body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var accepted map[string]any
	decode(t, rec, &accepted)

	result := waitForResult(t, s, accepted["job_id"].(string))
	if result["no_text"] != true || result["message"] != pipeline.NoTextMessage {
		t.Errorf("expected no_text result, got %v", result)
	}
}

func TestScan_Rejects(t *testing.T) {
	s := newTestServer(t, Options{})

	body, ct := multipartBody(t, "file", map[string]string{"data.csv": "a,b"}, "u1")
	if rec := do(t, s, http.MethodPost, "/api/scan", ct, body); rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported type: expected 400, got %d", rec.Code)
	}

	body, ct = multipartBody(t, "file", map[string]string{"card.txt": "x"}, "")
	if rec := do(t, s, http.MethodPost, "/api/scan", ct, body); rec.Code != http.StatusBadRequest {
		t.Errorf("missing user: expected 400, got %d", rec.Code)
	}

	body, ct = multipartBody(t, "other", map[string]string{"card.txt": "x"}, "u1")
	if rec := do(t, s, http.MethodPost, "/api/scan", ct, body); rec.Code != http.StatusBadRequest {
		t.Errorf("missing file: expected 400, got %d", rec.Code)
	}

	if rec := do(t, s, http.MethodGet, "/api/scan/nope/result", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown job: expected 404, got %d", rec.Code)
	}
}

func TestBatchScan(t *testing.T) {
	s := newTestServer(t, Options{})
	body, ct := multipartBody(t, "files", map[string]string{
		"a.txt":    "Pancakes\n2 cups flour",
		"b.md":     "# Waffles\n\n- 1 egg",
		"data.csv": "a,b",
	}, "u1")
	rec := do(t, s, http.MethodPost, "/api/scan/batch", ct, body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Jobs []map[string]any `json:"jobs"`
	}
	decode(t, rec, &got)
	if len(got.Jobs) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got.Jobs))
	}
	errs := 0
	for _, j := range got.Jobs {
		if _, ok := j["error"]; ok {
			errs++
		}
	}
	if errs != 1 {
		t.Errorf("expected 1 rejected file, got %d", errs)
	}
}

func TestOCRStats(t *testing.T) {
	s := newTestServer(t, Options{})
	if rec := do(t, s, http.MethodGet, "/api/stats/ocr", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without stats, got %d", rec.Code)
	}

	stats := ocr.NewStats(time.Hour)
	stats.Record(200*time.Millisecond, false)
	s = newTestServer(t, Options{OCRStats: stats, OCREngine: "tesseract-cli"})
	rec := do(t, s, http.MethodGet, "/api/stats/ocr", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got struct {
		Engine string            `json:"engine"`
		Stats  ocr.StatsSnapshot `json:"stats"`
	}
	decode(t, rec, &got)
	if got.Engine != "tesseract-cli" || got.Stats.Count != 1 {
		t.Errorf("unexpected stats response %+v", got)
	}
}

func TestRecipes(t *testing.T) {
	s := newTestServer(t, Options{})
	if rec := do(t, s, http.MethodGet, "/api/recipes?user_id=u1", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a store, got %d", rec.Code)
	}

	store := &fakeStore{children: []pathstore.Node{{Key: "recipes.users.u1.recipes.01A", Value: map[string]any{"filename": "a.txt"}}}}
	s = newTestServer(t, Options{Store: store})

	rec := do(t, s, http.MethodGet, "/api/recipes?user_id=u1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var listed struct {
		Recipes []map[string]any `json:"recipes"`
	}
	decode(t, rec, &listed)
	if len(listed.Recipes) != 1 {
		t.Errorf("expected 1 recipe, got %d", len(listed.Recipes))
	}

	if rec := do(t, s, http.MethodGet, "/api/recipes", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without user_id, got %d", rec.Code)
	}

	rec = do(t, s, http.MethodDelete, "/api/recipes/01A?user_id=u1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if diff := cmp.Diff([]string{pipeline.RecipeKey("u1", "01A")}, store.deleted); diff != "" {
		t.Errorf("deleted keys mismatch (-want +got):\n%s", diff)
	}

	store.err = errors.New("down")
	if rec := do(t, s, http.MethodDelete, "/api/recipes/01B?user_id=u1", "", nil); rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502 on store failure, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"card.jpg":         "card.jpg",
		"../../etc/passwd": "passwd",
		"a..b.png":         "a_b.png",
		"":                 "unnamed",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
