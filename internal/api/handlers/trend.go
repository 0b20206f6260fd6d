package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/fundlens/backend/internal/s3_tagging"
	"github.com/wonny/fundlens/backend/internal/snapshot"
	"github.com/wonny/fundlens/backend/internal/trend"
	"github.com/wonny/fundlens/backend/pkg/logger"
)

// TrendHandler handles trend and review endpoints
type TrendHandler struct {
	analyzer *trend.Analyzer
	store    snapshot.Store
	logger   *logger.Logger
}

// NewTrendHandler creates a new trend handler
func NewTrendHandler(analyzer *trend.Analyzer, store snapshot.Store, log *logger.Logger) *TrendHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &TrendHandler{
		analyzer: analyzer,
		store:    store,
		logger:   log,
	}
}

// GetSeries returns a fund's score history
// GET /api/trends/{symbol}?limit=6
func (h *TrendHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	series, err := h.analyzer.GetScoreSeries(r.Context(), symbol, limit)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to get score series")
		respondError(w, statusFor(err), "Failed to get score series")
		return
	}

	resp := map[string]interface{}{
		"symbol": symbol,
		"series": series,
	}
	if delta, ok := trend.Delta(series); ok {
		resp["delta"] = delta
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetMovers returns score changes between the two latest snapshots
// GET /api/trends/movers?limit=20
func (h *TrendHandler) GetMovers(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	movers, err := h.analyzer.Movers(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get movers")
		respondError(w, statusFor(err), "Failed to get movers")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"movers": movers,
		"count":  len(movers),
	})
}

// GetReview returns review candidates of the active snapshot
// GET /api/review
func (h *TrendHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.GetActive(r.Context())
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).Error("Failed to get active snapshot")
		}
		respondError(w, status, "No active snapshot")
		return
	}

	candidates := s3_tagging.ReviewCandidates(snap.Rows)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot":   snap.ID,
		"candidates": candidates,
		"count":      len(candidates),
	})
}

// parseLimit reads ?limit=, zero when absent
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		respondError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
		return 0, false
	}
	return limit, true
}
