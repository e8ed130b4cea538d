package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/nickcecere/mindhub/internal/embeddings"
	"github.com/nickcecere/mindhub/internal/llm"
	"github.com/nickcecere/mindhub/internal/vector"
)

// retryAfterSeconds is sent with 429 responses.
const retryAfterSeconds = "20"

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

// classify maps an error onto the HTTP status and the visitor-facing message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "Ungültige Anfrage."
	case errors.Is(err, llm.ErrNoQuestion):
		return http.StatusBadRequest, "Bitte stelle eine Frage."
	case errors.Is(err, embeddings.ErrConfiguration):
		return http.StatusServiceUnavailable, "Der Assistent ist nicht konfiguriert. Bitte prüfe API-Schlüssel und Modell des KI-Anbieters und starte den Server neu."
	case errors.Is(err, embeddings.ErrAuth):
		return http.StatusBadGateway, "Ungültiger API-Schlüssel. Bitte überprüfe die Konfiguration."
	case errors.Is(err, embeddings.ErrRateLimited):
		return http.StatusTooManyRequests, "Zu viele Anfragen. Bitte warte einen Moment und versuche es erneut."
	case errors.Is(err, embeddings.ErrQuotaExceeded):
		return http.StatusServiceUnavailable, "Das Kontingent des KI-Anbieters ist aufgebraucht. Bitte versuche es später erneut."
	case errors.Is(err, embeddings.ErrProvider):
		return http.StatusBadGateway, "Fehler bei der Kommunikation mit dem Assistenten."
	case errors.Is(err, vector.ErrDimensionMismatch):
		return http.StatusInternalServerError, "Interner Fehler in der Wissensbasis."
	default:
		return http.StatusInternalServerError, "Fehler bei der Kommunikation mit dem Assistenten."
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "status", status, "error", err)
	} else {
		log.Warn("Request rejected", "status", status, "error", err)
	}

	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}
