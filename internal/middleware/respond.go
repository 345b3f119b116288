package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeError writes the failure envelope used by every API response.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
	if err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
