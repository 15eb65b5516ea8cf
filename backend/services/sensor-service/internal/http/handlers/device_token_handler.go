package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"airwatch/backend/services/sensor-service/internal/auth"
)

// NewDeviceTokenHandler handles POST /api/auth/device-token.
func NewDeviceTokenHandler(verifier *auth.DeviceVerifier, tokens *auth.TokenService, logger *zap.Logger) http.HandlerFunc {
	type request struct {
		DeviceID string `json:"device_id"`
		Secret   string `json:"secret"`
	}
	type response struct {
		Token     string    `json:"token"`
		TokenType string    `json:"token_type"`
		ExpiresAt time.Time `json:"expires_at"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		req.DeviceID = strings.TrimSpace(req.DeviceID)
		if req.DeviceID == "" || req.Secret == "" {
			writeError(w, http.StatusBadRequest, "device_id and secret are required")
			return
		}

		if err := verifier.Verify(req.DeviceID, req.Secret); err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			logger.Error("device verification failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to verify device")
			return
		}

		token, expiresAt, err := tokens.GenerateToken(req.DeviceID)
		if err != nil {
			logger.Error("failed to sign device token", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to issue token")
			return
		}
		writeJSON(w, http.StatusOK, response{Token: token, TokenType: "Bearer", ExpiresAt: expiresAt})
	}
}
