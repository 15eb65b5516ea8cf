package app

import (
	"context"
	"database/sql"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libredis "airwatch/backend/libs/redis"
	"airwatch/backend/services/sensor-service/internal/auth"
	"airwatch/backend/services/sensor-service/internal/cache"
	"airwatch/backend/services/sensor-service/internal/clients"
	"airwatch/backend/services/sensor-service/internal/config"
	"airwatch/backend/services/sensor-service/internal/db"
	httpserver "airwatch/backend/services/sensor-service/internal/http"
	"airwatch/backend/services/sensor-service/internal/http/handlers"
	"airwatch/backend/services/sensor-service/internal/notify"
	"airwatch/backend/services/sensor-service/internal/repository"
	"airwatch/backend/services/sensor-service/internal/service"
	"airwatch/backend/services/sensor-service/internal/ws"
)

// App wires sensor-service dependencies.
type App struct {
	server      *httpserver.Server
	dispatcher  *notify.Dispatcher
	hub         *ws.Hub
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{logger: logger}

	var store service.ReadingStore
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory reading store, data is lost on restart")
		store = repository.NewMemoryStore()
	default:
		sqlDB, err := db.NewPostgres(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		a.db = sqlDB
		store = repository.NewReadingRepository(sqlDB)
	}

	var rollupCache service.RollupCache
	if cfg.CacheEnabled() {
		redisClient, err := libredis.NewRedisClient(libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redisClient = redisClient
		rollupCache = cache.NewRollupCache(redisClient, cfg.Redis.TTL)
	}

	a.hub = ws.NewHub(cfg.WebSocket.PingInterval, cfg.WebSocket.WriteTimeout, logger)
	sinks := []notify.Sink{a.hub}
	if cfg.SMS.BaseURL != "" {
		sms := clients.NewSMSClient(clients.SMSConfig{
			BaseURL:    cfg.SMS.BaseURL,
			AccountSID: cfg.SMS.AccountSID,
			AuthToken:  cfg.SMS.AuthToken,
			From:       cfg.SMS.From,
			To:         cfg.SMS.To,
		}, clients.NewDefaultHTTPClient(cfg.Notify.SendTimeout), logger)
		sinks = append(sinks, sms)
	} else {
		logger.Info("sms notifications disabled")
	}
	a.dispatcher = notify.NewDispatcher(sinks, cfg.Notify.QueueSize, cfg.Notify.SendTimeout, logger)

	alertState := service.NewAlertState(service.Thresholds{
		DangerMQ2:     cfg.Alert.DangerMQ2,
		DangerMQ135:   cfg.Alert.DangerMQ135,
		ElevatedMQ2:   cfg.Alert.ElevatedMQ2,
		ElevatedMQ135: cfg.Alert.ElevatedMQ135,
	})
	ingestService := service.NewIngestService(store, alertState, a.dispatcher, rollupCache, cfg.Storage.Timeout, logger)
	rollupService := service.NewRollupService(store, rollupCache, cfg.Storage.Timeout, logger)
	readingService := service.NewReadingService(store, cfg.Storage.Timeout)
	forecast := clients.NewForecastClient(cfg.Forecast.URL, clients.NewDefaultHTTPClient(cfg.Forecast.Timeout))

	sensorHandler := handlers.NewSensorHandler(ingestService, readingService, logger)
	routes := httpserver.Routes{
		SensorIngest:  sensorHandler.Ingest,
		SensorList:    sensorHandler.List,
		SensorLatest:  sensorHandler.Latest,
		Dates:         handlers.NewDatesHandler(rollupService, logger),
		History:       handlers.NewHistoryHandler(rollupService, logger),
		AlertStatus:   handlers.NewAlertStatusHandler(ingestService),
		Predictions:   handlers.NewPredictionsHandler(forecast, logger),
		AlertStream:   a.hub.HandleWS,
		Health:        handlers.NewHealthHandler(),
		EnableMetrics: true,
	}

	if cfg.AuthEnabled() {
		tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		verifier := auth.NewDeviceVerifier(cfg.Auth.DeviceID, cfg.Auth.DeviceSecretHash)
		routes.SensorIngest = auth.Middleware(tokens)(routes.SensorIngest).ServeHTTP
		routes.DeviceToken = handlers.NewDeviceTokenHandler(verifier, tokens, logger)
	} else {
		logger.Warn("device authentication disabled, ingest is open")
	}

	router := httpserver.NewRouter(routes)
	a.server = httpserver.NewServer(cfg.HTTPAddress(), router, logger)
	return a, nil
}

// Run starts the notification worker and the HTTP server.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.dispatcher.Run(ctx)
	}()

	err := a.server.Run(ctx)
	cancel()
	wg.Wait()
	return err
}

// Close releases resources.
func (a *App) Close() {
	if a.hub != nil {
		a.hub.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
