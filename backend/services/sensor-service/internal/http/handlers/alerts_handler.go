package handlers

import (
	"net/http"

	"airwatch/backend/services/sensor-service/internal/service"
)

// NewAlertStatusHandler handles GET /api/alerts/status.
func NewAlertStatusHandler(ingest *service.IngestService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ingest.AlertStatus())
	}
}
