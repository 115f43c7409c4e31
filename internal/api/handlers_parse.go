package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/dgallion1/recipeocr/internal/recipe"
	"github.com/dgallion1/recipeocr/internal/source"
)

type parseResponse struct {
	recipe.ParsedRecipe
	NoText bool `json:"no_text,omitempty"`
}

// handleParse runs the engine synchronously on raw text. The body is either
// text/plain or JSON {"text": "..."}.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var text string
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
			return
		}
		text = body.Text
	} else {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			jsonError(w, "failed to read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		text = string(data)
	}

	text = source.Clean(text)
	writeJSON(w, http.StatusOK, parseResponse{
		ParsedRecipe: recipe.Parse(text),
		NoText:       strings.TrimSpace(text) == "",
	})
}

// handleFormat flattens a draft recipe with mixed entry shapes.
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var draft recipe.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, recipe.Format(draft))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": recipe.Categories()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
