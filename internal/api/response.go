package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/motoinvent/internal/scan"
	"github.com/erazemk/motoinvent/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// inventoryStatus maps an inventory or scan error to an HTTP status.
func inventoryStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrInvalidName),
		errors.Is(err, store.ErrInvalidQuantity),
		errors.Is(err, store.ErrInvalidLocation),
		errors.Is(err, store.ErrInvalidItem),
		errors.Is(err, store.ErrPersistenceCorrupt),
		errors.Is(err, scan.ErrInvalidFrame):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrUnknownModel),
		errors.Is(err, store.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, scan.ErrInProgress):
		return http.StatusConflict
	case errors.Is(err, scan.ErrNoText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, scan.ErrRecognitionUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, scan.ErrRecognitionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// inventoryError writes err with its mapped status. Unexpected errors are
// logged and hidden from the client.
func inventoryError(w http.ResponseWriter, err error) {
	status := inventoryStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("inventory request failed", "error", err)
		jsonError(w, status, "internal error")
		return
	}
	jsonError(w, status, err.Error())
}
