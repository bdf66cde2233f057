package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Weather    WeatherConfig    `yaml:"weather"`
	FlightData FlightDataConfig `yaml:"flightData"`
	Dashboard  DashboardConfig  `yaml:"dashboard"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Cache      CacheConfig      `yaml:"cache"`
	Audit      AuditConfig      `yaml:"audit"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address         string          `yaml:"address"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	WriteTimeout    time.Duration   `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
	CORS            CORSConfig      `yaml:"cors"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// WeatherConfig points at the OpenWeatherMap current-weather endpoint.
type WeatherConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	APIKey  string        `yaml:"apiKey"`
	Timeout time.Duration `yaml:"timeout"`
}

// FlightDataConfig points at the AeroDataBox RapidAPI gateway.
type FlightDataConfig struct {
	BaseURL  string        `yaml:"baseUrl"`
	Host     string        `yaml:"host"`
	APIKey   string        `yaml:"apiKey"`
	CodeType string        `yaml:"codeType"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DashboardConfig controls airport status aggregation.
type DashboardConfig struct {
	DefaultAirport string        `yaml:"defaultAirport"`
	Window         string        `yaml:"window"`
	SlidingWindow  time.Duration `yaml:"slidingWindow"`
	RecordCap      int           `yaml:"recordCap"`
	IncludeFlights bool          `yaml:"includeFlights"`
}

// ClassifierConfig locates the model artifact.
type ClassifierConfig struct {
	ModelPath     string              `yaml:"modelPath"`
	Categorical   []string            `yaml:"categorical"`
	ObjectStorage ObjectStorageConfig `yaml:"objectStorage"`
}

// ObjectStorageConfig describes an S3-compatible bucket holding the artifact.
type ObjectStorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key"`
}

// Enabled reports whether the artifact should be fetched from object storage.
func (o ObjectStorageConfig) Enabled() bool {
	return strings.TrimSpace(o.Bucket) != ""
}

// CacheConfig controls the upstream response cache.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Addr       string        `yaml:"addr"`
	Prefix     string        `yaml:"prefix"`
	WeatherTTL time.Duration `yaml:"weatherTtl"`
	FlightTTL  time.Duration `yaml:"flightTtl"`
}

// AuditConfig enables the prediction audit log.
type AuditConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"maxConns"`
	MinConns        int32         `yaml:"minConns"`
	MaxConnLifetime time.Duration `yaml:"maxConnLifetime"`
	MaxConnIdleTime time.Duration `yaml:"maxConnIdleTime"`
}

const defaultConfigPath = "configs/config.yaml"

// Load reads configuration from a YAML file, an optional .env file and
// environment variables, in that order of increasing precedence.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(defaultConfigPath); err == nil {
		if err := hydrateFromFile(cfg, defaultConfigPath); err != nil {
			return nil, err
		}
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_SHUTDOWN_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.ShutdownTimeout = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORS.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("OPENWEATHER_BASE_URL"); v != "" {
		cfg.Weather.BaseURL = v
	}
	if v := os.Getenv("OPENWEATHER_API_KEY"); v != "" {
		cfg.Weather.APIKey = v
	}
	if v := os.Getenv("OPENWEATHER_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Weather.Timeout = parsed
		}
	}
	if v := os.Getenv("AERODATABOX_BASE_URL"); v != "" {
		cfg.FlightData.BaseURL = v
	}
	if v := os.Getenv("RAPIDAPI_HOST"); v != "" {
		cfg.FlightData.Host = v
	}
	if v := os.Getenv("RAPIDAPI_KEY"); v != "" {
		cfg.FlightData.APIKey = v
	}
	if v := os.Getenv("AERODATABOX_CODE_TYPE"); v != "" {
		cfg.FlightData.CodeType = v
	}
	if v := os.Getenv("AERODATABOX_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.FlightData.Timeout = parsed
		}
	}
	if v := os.Getenv("DASHBOARD_DEFAULT_AIRPORT"); v != "" {
		cfg.Dashboard.DefaultAirport = v
	}
	if v := os.Getenv("DASHBOARD_WINDOW"); v != "" {
		cfg.Dashboard.Window = v
	}
	if v := os.Getenv("DASHBOARD_SLIDING_WINDOW"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Dashboard.SlidingWindow = parsed
		}
	}
	if v := os.Getenv("DASHBOARD_RECORD_CAP"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Dashboard.RecordCap = parsed
		}
	}
	if v := os.Getenv("DASHBOARD_INCLUDE_FLIGHTS"); v != "" {
		cfg.Dashboard.IncludeFlights = parseBool(v)
	}
	if v := os.Getenv("CLASSIFIER_MODEL_PATH"); v != "" {
		cfg.Classifier.ModelPath = v
	}
	if v := os.Getenv("CLASSIFIER_CATEGORICAL"); v != "" {
		cfg.Classifier.Categorical = splitList(v)
	}
	if v := os.Getenv("MODEL_STORE_ENDPOINT"); v != "" {
		cfg.Classifier.ObjectStorage.Endpoint = v
	}
	if v := os.Getenv("MODEL_STORE_ACCESS_KEY"); v != "" {
		cfg.Classifier.ObjectStorage.AccessKey = v
	}
	if v := os.Getenv("MODEL_STORE_SECRET_KEY"); v != "" {
		cfg.Classifier.ObjectStorage.SecretKey = v
	}
	if v := os.Getenv("MODEL_STORE_REGION"); v != "" {
		cfg.Classifier.ObjectStorage.Region = v
	}
	if v := os.Getenv("MODEL_STORE_BUCKET"); v != "" {
		cfg.Classifier.ObjectStorage.Bucket = v
	}
	if v := os.Getenv("MODEL_STORE_KEY"); v != "" {
		cfg.Classifier.ObjectStorage.Key = v
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("CACHE_WEATHER_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.WeatherTTL = parsed
		}
	}
	if v := os.Getenv("CACHE_FLIGHT_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.FlightTTL = parsed
		}
	}
	if v := os.Getenv("AUDIT_POSTGRES_DSN"); v != "" {
		cfg.Audit.Postgres.DSN = v
	}
	if v := os.Getenv("AUDIT_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Audit.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("AUDIT_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Audit.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("AUDIT_POSTGRES_MAX_CONN_LIFETIME"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Audit.Postgres.MaxConnLifetime = parsed
		}
	}
	if v := os.Getenv("AUDIT_POSTGRES_MAX_CONN_IDLE_TIME"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Audit.Postgres.MaxConnIdleTime = parsed
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			},
		},
		Weather: WeatherConfig{
			BaseURL: "https://api.openweathermap.org/data/2.5/weather",
			Timeout: 10 * time.Second,
		},
		FlightData: FlightDataConfig{
			BaseURL:  "https://aerodatabox.p.rapidapi.com",
			Host:     "aerodatabox.p.rapidapi.com",
			CodeType: "icao",
			Timeout:  10 * time.Second,
		},
		Dashboard: DashboardConfig{
			DefaultAirport: "ATL",
			Window:         "sliding",
			SlidingWindow:  12 * time.Hour,
			RecordCap:      30,
			IncludeFlights: true,
		},
		Classifier: ClassifierConfig{
			Categorical: []string{"carrier_code", "origin_airport", "destination_airport"},
		},
		Cache: CacheConfig{
			Enabled:    false,
			Prefix:     "flightpulse",
			WeatherTTL: 10 * time.Minute,
			FlightTTL:  2 * time.Minute,
		},
		Audit: AuditConfig{
			Postgres: PostgresConfig{
				MaxConns:        4,
				MinConns:        0,
				MaxConnLifetime: time.Hour,
				MaxConnIdleTime: 30 * time.Minute,
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return errors.New("http.shutdownTimeout must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if strings.TrimSpace(c.Weather.BaseURL) == "" {
		return errors.New("weather.baseUrl cannot be empty")
	}
	if c.Weather.Timeout <= 0 {
		return errors.New("weather.timeout must be positive")
	}
	if strings.TrimSpace(c.FlightData.BaseURL) == "" {
		return errors.New("flightData.baseUrl cannot be empty")
	}
	if c.FlightData.Timeout <= 0 {
		return errors.New("flightData.timeout must be positive")
	}
	switch strings.ToLower(c.FlightData.CodeType) {
	case "icao", "iata":
	default:
		return fmt.Errorf("flightData.codeType must be icao or iata, got %q", c.FlightData.CodeType)
	}
	if strings.TrimSpace(c.Dashboard.DefaultAirport) == "" {
		return errors.New("dashboard.defaultAirport cannot be empty")
	}
	switch c.Dashboard.Window {
	case "sliding":
		if c.Dashboard.SlidingWindow <= 0 {
			return errors.New("dashboard.slidingWindow must be positive")
		}
	case "same_day":
	default:
		return fmt.Errorf("dashboard.window must be sliding or same_day, got %q", c.Dashboard.Window)
	}
	if c.Dashboard.RecordCap < 0 {
		return errors.New("dashboard.recordCap cannot be negative")
	}
	if c.Classifier.ObjectStorage.Enabled() {
		if strings.TrimSpace(c.Classifier.ObjectStorage.Endpoint) == "" {
			return errors.New("classifier.objectStorage.endpoint cannot be empty when bucket is set")
		}
		if strings.TrimSpace(c.Classifier.ObjectStorage.Key) == "" {
			return errors.New("classifier.objectStorage.key cannot be empty when bucket is set")
		}
	}
	if c.Cache.Enabled {
		if c.Cache.WeatherTTL <= 0 || c.Cache.FlightTTL <= 0 {
			return errors.New("cache ttls must be positive when cache is enabled")
		}
	}
	if c.Audit.Postgres.MaxConns < 0 || c.Audit.Postgres.MinConns < 0 {
		return errors.New("audit.postgres pool sizes cannot be negative")
	}
	if c.Audit.Postgres.MaxConnLifetime < 0 || c.Audit.Postgres.MaxConnIdleTime < 0 {
		return errors.New("audit.postgres connection lifetimes cannot be negative")
	}
	return nil
}
