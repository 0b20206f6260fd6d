package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/fundlens/backend/internal/pipeline"
	"github.com/wonny/fundlens/backend/internal/s0_ingest"
	"github.com/wonny/fundlens/backend/internal/snapshot"
	"github.com/wonny/fundlens/backend/internal/worker"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, snapshot.ErrIDConflict), errors.Is(err, snapshot.ErrDuplicateChecksum):
		return http.StatusConflict
	case errors.Is(err, s0_ingest.ErrMissingColumns), errors.Is(err, worker.ErrTaskFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrEmptyFile), errors.Is(err, s0_ingest.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, worker.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
