package config

import (
	"fmt"

	"github.com/spf13/viper"

	"taxi-dispatch-system/models"
)

type Config struct {
	HTTP        HTTPConfig
	DB          DBConfig
	Redis       RedisConfig
	Store       StoreConfig
	Dispatch    DispatchConfig
	RoadNetwork RoadNetworkConfig
	Traffic     TrafficConfig
	Geocoder    GeocoderConfig

	// VehicleClasses maps a service tier name to its profile.
	VehicleClasses map[string]models.VehicleClassProfile
}

type HTTPConfig struct {
	Addr string
}

type DBConfig struct {
	User     string
	Password string
	DBName   string
	SSLMode  string
	Host     string
	Port     string
}

// DSN builds the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StoreConfig selects the geospatial store backend: "redis" or "memory".
type StoreConfig struct {
	Backend string
}

type DispatchConfig struct {
	LocationTTLSeconds int     `mapstructure:"location_ttl_seconds"`
	HistorySize        int     `mapstructure:"history_size"`
	MaxSearchRadiusKm  float64 `mapstructure:"max_search_radius_km"`
	CandidateLimit     int     `mapstructure:"candidate_limit"`
	Alternatives       int     `mapstructure:"alternatives"`
}

type RoadNetworkConfig struct {
	OverpassURL            string             `mapstructure:"overpass_url"`
	BufferDeg              float64            `mapstructure:"buffer_deg"`
	ProviderTimeoutSeconds int                `mapstructure:"provider_timeout_seconds"`
	CacheSize              int                `mapstructure:"cache_size"`
	CacheTTLHours          int                `mapstructure:"cache_ttl_hours"`
	DefaultSpeedKmh        float64            `mapstructure:"default_speed_kmh"`
	SpeedLimits            map[string]float64 `mapstructure:"speed_limits"`
}

type TrafficConfig struct {
	MorningRush float64 `mapstructure:"morning_rush"` // 07:00-10:00
	EveningRush float64 `mapstructure:"evening_rush"` // 17:00-20:00
	Night       float64 `mapstructure:"night"`        // 23:00-05:00
	Normal      float64 `mapstructure:"normal"`
}

type GeocoderConfig struct {
	GoogleAPIKey  string `mapstructure:"google_api_key"`
	CacheTTLHours int    `mapstructure:"cache_ttl_hours"`
}

// Load reads config.yaml from the working directory, falling back to the
// registered defaults for anything not set. A missing file is not an error.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("http.addr", ":8080")

	viper.SetDefault("db.user", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.dbname", "dispatch")
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("store.backend", "redis")

	viper.SetDefault("dispatch.location_ttl_seconds", 300)
	viper.SetDefault("dispatch.history_size", 10)
	viper.SetDefault("dispatch.max_search_radius_km", 10.0)
	viper.SetDefault("dispatch.candidate_limit", 5)
	viper.SetDefault("dispatch.alternatives", 3)

	viper.SetDefault("roadnetwork.overpass_url", "https://overpass-api.de/api/interpreter")
	viper.SetDefault("roadnetwork.buffer_deg", 0.02)
	viper.SetDefault("roadnetwork.provider_timeout_seconds", 25)
	viper.SetDefault("roadnetwork.cache_size", 128)
	viper.SetDefault("roadnetwork.cache_ttl_hours", 168)
	viper.SetDefault("roadnetwork.default_speed_kmh", 30.0)
	viper.SetDefault("roadnetwork.speed_limits", map[string]float64{
		"motorway":      110,
		"trunk":         90,
		"primary":       60,
		"secondary":     50,
		"tertiary":      40,
		"residential":   30,
		"living_street": 20,
	})

	viper.SetDefault("traffic.morning_rush", 1.5)
	viper.SetDefault("traffic.evening_rush", 1.7)
	viper.SetDefault("traffic.night", 0.8)
	viper.SetDefault("traffic.normal", 1.0)

	viper.SetDefault("geocoder.google_api_key", "")
	viper.SetDefault("geocoder.cache_ttl_hours", 24)

	viper.SetDefault("vehicleclasses", map[string]map[string]float64{
		"economy":  {"max_distance_km": 3, "speed_kmh": 30},
		"comfort":  {"max_distance_km": 5, "speed_kmh": 35},
		"business": {"max_distance_km": 7, "speed_kmh": 40},
	})
}
