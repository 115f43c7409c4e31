package api

import (
	"net/http"
)

func (s *Server) handleOCRStats(w http.ResponseWriter, r *http.Request) {
	if s.ocrStats == nil {
		jsonError(w, "ocr stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"engine":      s.ocrEngine,
		"stats":       s.ocrStats.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
