package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "airwatch/backend/libs/config"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config defines sensor service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Alert     AlertConfig     `yaml:"alert"`
	Notify    NotifyConfig    `yaml:"notify"`
	SMS       SMSConfig       `yaml:"sms"`
	Forecast  ForecastConfig  `yaml:"forecast"`
	Auth      AuthConfig      `yaml:"auth"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

type HTTPConfig struct {
	Port string `yaml:"port" env:"SENSOR_HTTP_PORT"`
}

type StorageConfig struct {
	Driver  string        `yaml:"driver" env:"SENSOR_STORAGE_DRIVER"`
	Timeout time.Duration `yaml:"timeout" env:"SENSOR_STORE_TIMEOUT"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"SENSOR_POSTGRES_DSN"`
}

// RedisConfig selects the rollup cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"SENSOR_REDIS_ADDR"`
	Password string        `yaml:"password" env:"SENSOR_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"SENSOR_REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" env:"SENSOR_REDIS_TTL"`
}

type AlertConfig struct {
	DangerMQ2     float64 `yaml:"dangerMQ2" env:"SENSOR_ALERT_DANGER_MQ2"`
	DangerMQ135   float64 `yaml:"dangerMQ135" env:"SENSOR_ALERT_DANGER_MQ135"`
	ElevatedMQ2   float64 `yaml:"elevatedMQ2" env:"SENSOR_ALERT_ELEVATED_MQ2"`
	ElevatedMQ135 float64 `yaml:"elevatedMQ135" env:"SENSOR_ALERT_ELEVATED_MQ135"`
}

type NotifyConfig struct {
	QueueSize   int           `yaml:"queueSize" env:"SENSOR_NOTIFY_QUEUE_SIZE"`
	SendTimeout time.Duration `yaml:"sendTimeout" env:"SENSOR_NOTIFY_SEND_TIMEOUT"`
}

// SMSConfig points at a Twilio-compatible messaging API. An empty BaseURL disables SMS.
type SMSConfig struct {
	BaseURL    string   `yaml:"baseUrl" env:"SENSOR_SMS_BASE_URL"`
	AccountSID string   `yaml:"accountSid" env:"SENSOR_SMS_ACCOUNT_SID"`
	AuthToken  string   `yaml:"authToken" env:"SENSOR_SMS_AUTH_TOKEN"`
	From       string   `yaml:"from" env:"SENSOR_SMS_FROM"`
	To         []string `yaml:"to" env:"SENSOR_SMS_TO"`
}

type ForecastConfig struct {
	URL     string        `yaml:"url" env:"SENSOR_FORECAST_URL"`
	Timeout time.Duration `yaml:"timeout" env:"SENSOR_FORECAST_TIMEOUT"`
}

// AuthConfig enables device tokens on ingest when JWTSecret is set.
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwtSecret" env:"SENSOR_JWT_SECRET"`
	TokenTTL         time.Duration `yaml:"tokenTTL" env:"SENSOR_TOKEN_TTL"`
	DeviceID         string        `yaml:"deviceId" env:"SENSOR_DEVICE_ID"`
	DeviceSecretHash string        `yaml:"deviceSecretHash" env:"SENSOR_DEVICE_SECRET_HASH"`
}

type WebSocketConfig struct {
	PingInterval time.Duration `yaml:"pingInterval" env:"SENSOR_WS_PING_INTERVAL"`
	WriteTimeout time.Duration `yaml:"writeTimeout" env:"SENSOR_WS_WRITE_TIMEOUT"`
}

// Default returns the configuration used before file and env overrides.
func Default() *Config {
	return &Config{
		HTTP:    HTTPConfig{Port: "8085"},
		Storage: StorageConfig{Driver: DriverPostgres, Timeout: 5 * time.Second},
		Redis:   RedisConfig{TTL: 10 * time.Minute},
		Alert: AlertConfig{
			DangerMQ2:     50,
			DangerMQ135:   50,
			ElevatedMQ2:   80,
			ElevatedMQ135: 120,
		},
		Notify:    NotifyConfig{QueueSize: 64, SendTimeout: 10 * time.Second},
		Forecast:  ForecastConfig{Timeout: 5 * time.Second},
		Auth:      AuthConfig{TokenTTL: time.Hour},
		WebSocket: WebSocketConfig{PingInterval: 30 * time.Second, WriteTimeout: 10 * time.Second},
	}
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := Default()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return errors.New("config: database dsn required for postgres storage")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Notify.QueueSize <= 0 {
		return errors.New("config: notify queueSize must be positive")
	}
	if c.SMS.BaseURL != "" && (c.SMS.AccountSID == "" || c.SMS.From == "" || len(c.SMS.To) == 0) {
		return errors.New("config: sms requires accountSid, from and at least one recipient")
	}
	if c.Auth.JWTSecret != "" && (c.Auth.DeviceID == "" || c.Auth.DeviceSecretHash == "") {
		return errors.New("config: auth requires deviceId and deviceSecretHash when jwtSecret is set")
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8085"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// CacheEnabled reports whether a redis rollup cache is configured.
func (c *Config) CacheEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}

// AuthEnabled reports whether ingest requires a device token.
func (c *Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != ""
}
