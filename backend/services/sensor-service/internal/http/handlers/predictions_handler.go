package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"airwatch/backend/services/sensor-service/internal/clients"
)

// PredictionSource returns the raw forecast document.
type PredictionSource interface {
	Predictions(ctx context.Context) (json.RawMessage, error)
}

// NewPredictionsHandler handles GET /api/predictions by proxying the forecast service.
func NewPredictionsHandler(source PredictionSource, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := source.Predictions(r.Context())
		if err != nil {
			if errors.Is(err, clients.ErrForecastDisabled) {
				writeError(w, http.StatusServiceUnavailable, "forecast service not configured")
				return
			}
			logger.Warn("forecast service request failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "forecast service unavailable")
			return
		}
		writeRaw(w, http.StatusOK, body)
	}
}
