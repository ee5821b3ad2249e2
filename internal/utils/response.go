package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"IotMonitor.api/internal/models"
)

// RespondWithError sends a JSON error response using the APIError model.
func RespondWithError(writer http.ResponseWriter, apiErr models.APIError) {
	RespondWithJSON(writer, apiErr.StatusCode, apiErr)
}

// RespondWithErrors sends the itemized {"errors": [...]} body used for rejected input.
func RespondWithErrors(writer http.ResponseWriter, statusCode int, messages []string) {
	RespondWithJSON(writer, statusCode, models.ErrorsResponse{Errors: messages})
}

// RespondWithEmpty sends an empty JSON object.
func RespondWithEmpty(writer http.ResponseWriter, statusCode int) {
	RespondWithJSON(writer, statusCode, struct{}{})
}

// RespondWithJSON sends a JSON response with the given status code.
func RespondWithJSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
