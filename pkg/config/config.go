package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NATS       NATSConfig
	Maps       MapsConfig
	Broadcast  BroadcastConfig
	Scheduler  SchedulerConfig
	Resilience ResilienceConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisAddr returns the host:port address for the Redis client
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// NATSConfig holds NATS event bus configuration
type NATSConfig struct {
	URL     string
	Enabled bool
}

// MapsConfig holds routing provider configuration
type MapsConfig struct {
	GoogleAPIKey   string
	BaseURL        string
	TimeoutSeconds int
	CacheEnabled   bool
	CacheTTLSecs   int
}

// BroadcastConfig holds the optional notification gateway settings.
// When GatewayURL is empty, broadcasts only record the reach estimate.
type BroadcastConfig struct {
	GatewayURL     string
	TimeoutSeconds int
}

// SchedulerConfig holds background task intervals
type SchedulerConfig struct {
	Enabled             bool
	SimulateIntervalMin int
	DetectIntervalMin   int
	SimulateLatitude    float64
	SimulateLongitude   float64
	SimulateRadiusKm    float64
	SeedSampleLocations bool
}

// ResilienceConfig groups runtime resilience controls
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig
}

// CircuitBreakerConfig captures breaker tuning for upstream providers
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	SuccessThreshold int
	TimeoutSeconds   int
	IntervalSeconds  int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "crowdsafety"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Enabled: getEnvAsBool("NATS_ENABLED", false),
		},
		Maps: MapsConfig{
			GoogleAPIKey:   getEnv("GOOGLE_MAPS_API_KEY", ""),
			BaseURL:        getEnv("GOOGLE_MAPS_BASE_URL", ""),
			TimeoutSeconds: getEnvAsInt("MAPS_TIMEOUT_SECONDS", 15),
			CacheEnabled:   getEnvAsBool("MAPS_CACHE_ENABLED", true),
			CacheTTLSecs:   getEnvAsInt("MAPS_CACHE_TTL_SECONDS", 120),
		},
		Broadcast: BroadcastConfig{
			GatewayURL:     getEnv("NOTIFICATION_GATEWAY_URL", ""),
			TimeoutSeconds: getEnvAsInt("NOTIFICATION_TIMEOUT_SECONDS", 10),
		},
		Scheduler: SchedulerConfig{
			Enabled:             getEnvAsBool("SCHEDULER_ENABLED", true),
			SimulateIntervalMin: getEnvAsInt("SIMULATE_INTERVAL_MINUTES", 5),
			DetectIntervalMin:   getEnvAsInt("DETECT_INTERVAL_MINUTES", 2),
			SimulateLatitude:    getEnvAsFloat("SIMULATE_CENTER_LAT", 12.9716),
			SimulateLongitude:   getEnvAsFloat("SIMULATE_CENTER_LON", 77.5946),
			SimulateRadiusKm:    getEnvAsFloat("SIMULATE_RADIUS_KM", 10),
			SeedSampleLocations: getEnvAsBool("SEED_SAMPLE_LOCATIONS", false),
		},
		Resilience: ResilienceConfig{
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          getEnvAsBool("CB_ENABLED", true),
				FailureThreshold: getEnvAsInt("CB_FAILURE_THRESHOLD", 5),
				SuccessThreshold: getEnvAsInt("CB_SUCCESS_THRESHOLD", 2),
				TimeoutSeconds:   getEnvAsInt("CB_TIMEOUT_SECONDS", 30),
				IntervalSeconds:  getEnvAsInt("CB_INTERVAL_SECONDS", 60),
			},
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
