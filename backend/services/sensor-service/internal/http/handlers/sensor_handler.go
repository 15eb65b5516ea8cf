package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"airwatch/backend/services/sensor-service/internal/auth"
	"airwatch/backend/services/sensor-service/internal/models"
	"airwatch/backend/services/sensor-service/internal/service"
)

// SensorHandler serves /api/sensor.
type SensorHandler struct {
	ingest   *service.IngestService
	readings *service.ReadingService
	logger   *zap.Logger
}

// NewSensorHandler returns handler.
func NewSensorHandler(ingest *service.IngestService, readings *service.ReadingService, logger *zap.Logger) *SensorHandler {
	return &SensorHandler{ingest: ingest, readings: readings, logger: logger}
}

// Ingest handles POST /api/sensor.
func (h *SensorHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var raw models.RawReading
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	logger := h.logger
	if deviceID, ok := auth.DeviceIDFromContext(r.Context()); ok {
		logger = logger.With(zap.String("device_id", deviceID))
	}

	stored, err := h.ingest.Ingest(r.Context(), raw)
	if err != nil {
		writeServiceError(w, logger, "ingest", err)
		return
	}
	logger.Debug("reading stored", zap.Int64("reading_id", stored.ID), zap.String("timestamp", stored.Timestamp))
	writeJSON(w, http.StatusCreated, stored)
}

// List handles GET /api/sensor?limit=N.
func (h *SensorHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	readings, err := h.readings.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, h.logger, "list readings", err)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

// Latest handles GET /api/sensor/latest.
func (h *SensorHandler) Latest(w http.ResponseWriter, r *http.Request) {
	reading, err := h.readings.Latest(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "latest reading", err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}
