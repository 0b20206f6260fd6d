package handlers

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/fundlens/backend/internal/pipeline"
	"github.com/wonny/fundlens/backend/internal/snapshot"
	"github.com/wonny/fundlens/backend/pkg/logger"
)

// MaxUploadBytes bounds a single monthly file upload
const MaxUploadBytes = 32 << 20

// SnapshotHandler handles snapshot endpoints
// ⭐ SSOT: 스냅샷 API 핸들러는 이 구조체에서만
type SnapshotHandler struct {
	store    snapshot.Store
	ingestor *pipeline.Ingestor
	limiter  UploadLimiter
	logger   *logger.Logger
}

// NewSnapshotHandler creates a new snapshot handler. limiter may be nil.
func NewSnapshotHandler(
	store snapshot.Store,
	ingestor *pipeline.Ingestor,
	limiter UploadLimiter,
	log *logger.Logger,
) *SnapshotHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &SnapshotHandler{
		store:    store,
		ingestor: ingestor,
		limiter:  limiter,
		logger:   log,
	}
}

// List returns the non-deleted snapshots without rows
// GET /api/snapshots
func (h *SnapshotHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := snapshot.Summaries(r.Context(), h.store)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list snapshots")
		respondError(w, http.StatusInternalServerError, "Failed to list snapshots")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": summaries,
		"count":     len(summaries),
	})
}

// GetActive returns the active snapshot
// GET /api/snapshots/active
func (h *SnapshotHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.GetActive(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to get active snapshot")
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// Get returns one snapshot with its rows
// GET /api/snapshots/{id}
func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	snap, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to get snapshot")
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// Activate makes a snapshot the active one
// POST /api/snapshots/{id}/activate
func (h *SnapshotHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.SetActive(r.Context(), id); err != nil {
		h.fail(w, err, "Failed to activate snapshot")
		return
	}

	h.logger.WithField("id", id).Info("Snapshot activated")
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "activated",
		"id":     id,
	})
}

// Delete soft-deletes a snapshot
// DELETE /api/snapshots/{id}
func (h *SnapshotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.SoftDelete(r.Context(), id); err != nil {
		h.fail(w, err, "Failed to delete snapshot")
		return
	}

	h.logger.WithField("id", id).Info("Snapshot deleted")
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"id":     id,
	})
}

// Upload ingests a monthly file (multipart field "file")
// POST /api/snapshots  form: file, period?, note?, activate?
func (h *SnapshotHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(ctx, clientKey(r))
		if err != nil {
			// 리밋 저장소 장애 시 업로드는 허용
			h.logger.WithError(err).Warn("Upload rate limit check failed")
		} else if !allowed {
			respondError(w, http.StatusTooManyRequests, "Upload rate limit exceeded")
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing 'file' field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	activate := false
	if v := r.FormValue("activate"); v != "" {
		activate, err = strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'activate' value")
			return
		}
	}

	result, err := h.ingestor.Ingest(ctx, pipeline.Request{
		File:     data,
		Filename: header.Filename,
		Period:   r.FormValue("period"),
		Note:     r.FormValue("note"),
		Activate: activate,
	})
	if err != nil {
		h.fail(w, err, err.Error())
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	respondJSON(w, status, result)
}

// fail logs unexpected errors and writes the mapped status
func (h *SnapshotHandler) fail(w http.ResponseWriter, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).Error(message)
	}
	if errors.Is(err, snapshot.ErrNotFound) {
		message = err.Error()
	}
	respondError(w, status, message)
}

// clientKey identifies the uploader for rate limiting
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
