package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dgallion1/recipeocr/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleListRecipes lists the recipes stored for a user.
func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "recipe store not configured", http.StatusServiceUnavailable)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}

	prefix := fmt.Sprintf("recipes/users/%s/recipes", userID)
	children, err := s.store.ListChildren(r.Context(), prefix, 200)
	if err != nil {
		jsonError(w, "failed to list recipes: "+err.Error(), http.StatusBadGateway)
		return
	}

	recipes := make([]map[string]any, 0, len(children))
	for _, child := range children {
		recipes = append(recipes, map[string]any{
			"key":   child.Key,
			"value": child.Value,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"recipes": recipes})
}

// handleDeleteRecipe removes a stored recipe.
func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "recipe store not configured", http.StatusServiceUnavailable)
		return
	}
	recipeID := chi.URLParam(r, "recipeID")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}
	if strings.ContainsAny(recipeID, "/.") {
		jsonError(w, "invalid recipe id", http.StatusBadRequest)
		return
	}

	key := pipeline.RecipeKey(userID, recipeID)
	if err := s.store.DeleteNode(r.Context(), key, true); err != nil {
		s.log.Error("delete recipe failed", "key", key, "error", err)
		jsonError(w, "failed to delete recipe: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": recipeID})
}
