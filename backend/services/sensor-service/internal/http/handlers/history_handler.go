package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"airwatch/backend/services/sensor-service/internal/service"
)

// NewHistoryHandler handles GET /api/history/{date}.
func NewHistoryHandler(rollups *service.RollupService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/history/"), "/")
		buckets, err := rollups.HourlyAverages(r.Context(), date)
		if err != nil {
			writeServiceError(w, logger, "hourly rollup", err)
			return
		}
		writeJSON(w, http.StatusOK, buckets)
	}
}

// NewDatesHandler handles GET /api/dates.
func NewDatesHandler(rollups *service.RollupService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dates, err := rollups.ListDates(r.Context())
		if err != nil {
			writeServiceError(w, logger, "list dates", err)
			return
		}
		writeJSON(w, http.StatusOK, dates)
	}
}
