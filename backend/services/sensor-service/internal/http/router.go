package httpserver

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes groups handlers. Nil handlers are not registered.
type Routes struct {
	SensorIngest  http.HandlerFunc
	SensorList    http.HandlerFunc
	SensorLatest  http.HandlerFunc
	Dates         http.HandlerFunc
	History       http.HandlerFunc
	AlertStatus   http.HandlerFunc
	Predictions   http.HandlerFunc
	DeviceToken   http.HandlerFunc
	AlertStream   http.HandlerFunc
	Health        http.HandlerFunc
	EnableMetrics bool
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()

	sensor := map[string]http.HandlerFunc{}
	if routes.SensorIngest != nil {
		sensor[http.MethodPost] = routes.SensorIngest
	}
	if routes.SensorList != nil {
		sensor[http.MethodGet] = routes.SensorList
	}
	if len(sensor) > 0 {
		mux.Handle("/api/sensor", instrument("/api/sensor", methods(sensor)))
	}
	if routes.SensorLatest != nil {
		mux.Handle("/api/sensor/latest", instrument("/api/sensor/latest", method(http.MethodGet, routes.SensorLatest)))
	}
	if routes.Dates != nil {
		mux.Handle("/api/dates", instrument("/api/dates", method(http.MethodGet, routes.Dates)))
	}
	if routes.History != nil {
		mux.Handle("/api/history/", instrument("/api/history/{date}", method(http.MethodGet, routes.History)))
	}
	if routes.AlertStatus != nil {
		mux.Handle("/api/alerts/status", instrument("/api/alerts/status", method(http.MethodGet, routes.AlertStatus)))
	}
	if routes.Predictions != nil {
		mux.Handle("/api/predictions", instrument("/api/predictions", method(http.MethodGet, routes.Predictions)))
	}
	if routes.DeviceToken != nil {
		mux.Handle("/api/auth/device-token", instrument("/api/auth/device-token", method(http.MethodPost, routes.DeviceToken)))
	}
	// The upgrade hijacks the connection, so the stream is not wrapped in the metrics recorder.
	if routes.AlertStream != nil {
		mux.Handle("/ws/alerts", method(http.MethodGet, routes.AlertStream))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	if routes.EnableMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}

func methods(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	allow := ""
	for _, m := range []string{http.MethodGet, http.MethodPost} {
		if _, ok := handlers[m]; ok {
			if allow != "" {
				allow += ", "
			}
			allow += m
		}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		handler, ok := handlers[r.Method]
		if !ok {
			w.Header().Set("Allow", allow)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
