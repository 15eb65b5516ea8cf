package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// ErrForecastDisabled is returned when no forecast service URL is configured.
var ErrForecastDisabled = errors.New("forecast service not configured")

// ErrForecastMalformed is returned when the forecast service answers with invalid JSON.
var ErrForecastMalformed = errors.New("forecast service returned malformed json")

// ForecastClient reads predictions from the external forecasting service.
type ForecastClient struct {
	base *BaseClient
}

// NewForecastClient returns client wrapper.
func NewForecastClient(baseURL string, client HTTPDoer) *ForecastClient {
	return &ForecastClient{base: NewBaseClient(baseURL, client)}
}

// Predictions returns the raw predictions document
// ({"next_1_hour": [...], "next_10_hours": [...]}).
func (c *ForecastClient) Predictions(ctx context.Context) (json.RawMessage, error) {
	if !c.base.Enabled() {
		return nil, ErrForecastDisabled
	}
	body, err := c.base.Do(ctx, http.MethodGet, "/predictions", nil, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, ErrForecastMalformed
	}
	return json.RawMessage(body), nil
}
