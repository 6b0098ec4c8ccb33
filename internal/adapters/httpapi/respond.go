package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alejandrodnm/arbscan/internal/adapters/oddsapi"
)

// errorResponse es el cuerpo JSON de todas las respuestas de error.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		slog.Warn("request failed", "status", status, "msg", message, "err", err)
	}

	respondJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// respondUpstreamError traduce errores del proveedor de cuotas a HTTP.
// Fallos de auth o cuota del upstream son 502 nuestros, no 500 genéricos.
func respondUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *oddsapi.APIError
	if errors.As(err, &apiErr) {
		respondError(w, http.StatusBadGateway, apiErr.Message, err)
		return
	}
	respondError(w, http.StatusInternalServerError, "odds provider request failed", err)
}
