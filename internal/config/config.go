package config

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Data source backends.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds the configuration settings for the globe service.
//
// Fields:
// - Env: The current environment (local, development, production).
// - HTTPPort: The port of the public HTTP API.
// - HealthPort: The port of the monitoring server (/healthz, /metrics).
// - Data: Where persona records come from.
// - ProviderType: The geocoding provider used by the location resolver.
// - APIKey: The API key of the geocoding provider (Google and Visicom).
// - Workers: The number of concurrent workers resolving locations.
// - Interval: The duration between location resolver runs.
// - AddrPrefix: Prefix prepended to every label before geocoding.
// - Spread: Default clustering parameters of the globe.
// - Gemini: Consultation preview generator settings.
// - Cache: Geocode cache settings. An empty address disables the cache.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env          string
	HTTPPort     int
	HealthPort   int
	Data         DataConfig
	ProviderType string
	APIKey       string
	Workers      int
	Interval     time.Duration
	AddrPrefix   string
	Spread       SpreadConfig
	Gemini       GeminiConfig
	Cache        CacheConfig
	Database     PostgresConfig
}

// DataConfig selects the persona backend.
type DataConfig struct {
	Source string // Source is either "file" or "postgres".
	File   string // File is the personas JSON path for the file source.
}

// SpreadConfig holds the clustering distances in kilometres.
type SpreadConfig struct {
	ThresholdKm float64
	RingKm      float64
}

// GeminiConfig holds the generative model credentials.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// CacheConfig points at a Valkey server.
type CacheConfig struct {
	Addr string
	TTL  time.Duration
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad reads .env and MERIDIAN_* environment variables and returns the configuration.
// It panics on malformed values.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// MERIDIAN_SPREAD_THRESHOLD_KM -> spread.threshold_km
	v.SetEnvPrefix("MERIDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	interval, err := time.ParseDuration(v.GetString("interval"))
	if err != nil {
		panic("failed to parse interval from configuration")
	}

	httpPort, err := strconv.Atoi(v.GetString("http.port"))
	if err != nil {
		panic("failed to parse port for http server from configuration")
	}

	healthPort, err := strconv.Atoi(v.GetString("health.port"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	workers, err := strconv.Atoi(v.GetString("workers"))
	if err != nil {
		panic("failed to parse workers from configuration, must be an integer types")
	}

	threshold, err := strconv.ParseFloat(v.GetString("spread.threshold_km"), 64)
	if err != nil || math.IsNaN(threshold) || threshold < 0 {
		panic("failed to parse spread threshold, must be a non-negative number")
	}

	ring, err := strconv.ParseFloat(v.GetString("spread.ring_km"), 64)
	if err != nil || math.IsNaN(ring) || ring < 0 {
		panic("failed to parse spread ring radius, must be a non-negative number")
	}

	cacheTTL, err := time.ParseDuration(v.GetString("cache.ttl"))
	if err != nil {
		panic("failed to parse cache ttl from configuration")
	}

	source := v.GetString("data.source")
	if source != SourceFile && source != SourcePostgres {
		panic("unsupported data source, must be file or postgres")
	}

	return &Config{
		Env:          v.GetString("env"),
		HTTPPort:     httpPort,
		HealthPort:   healthPort,
		Data:         DataConfig{Source: source, File: v.GetString("data.file")},
		ProviderType: v.GetString("provider.type"),
		APIKey:       v.GetString("provider.key"),
		Workers:      workers,
		Interval:     interval,
		AddrPrefix:   v.GetString("address_prefix"),
		Spread:       SpreadConfig{ThresholdKm: threshold, RingKm: ring},
		Gemini: GeminiConfig{
			APIKey: v.GetString("gemini.api_key"),
			Model:  v.GetString("gemini.model"),
		},
		Cache: CacheConfig{Addr: v.GetString("cache.addr"), TTL: cacheTTL},
		Database: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Name:     v.GetString("postgres.db_name"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("http.port", "5000")
	v.SetDefault("health.port", "8080")
	v.SetDefault("data.source", SourceFile)
	v.SetDefault("data.file", "personas.json")
	v.SetDefault("provider.type", "static")
	v.SetDefault("provider.key", "")
	v.SetDefault("workers", "10")
	v.SetDefault("interval", "10m")
	v.SetDefault("address_prefix", "")
	v.SetDefault("spread.threshold_km", "25")
	v.SetDefault("spread.ring_km", "12")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("cache.addr", "")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db_name", "meridian")
}
