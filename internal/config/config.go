package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Graph     GraphConfig
	Cache     CacheConfig
	Auth      AuthConfig
	Events    EventsConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	AllowedOriginsCSV string
}

// DatabaseConfig selects the relational store holding users, connections and
// transactions.
type DatabaseConfig struct {
	Driver       string // sqlite|postgres
	DSN          string
	MaxOpenConns int
	LogLevel     string
}

// GraphConfig describes connectivity to the Neo4j friend graph. When
// ConnectionBackend is "graph", friend edges live in Neo4j instead of SQL.
type GraphConfig struct {
	URI               string
	Database          string
	Username          string
	Password          string
	MaxConnections    int
	ConnectionBackend string // sql|graph
}

// CacheConfig configures the Redis profile cache. An empty URL disables it.
type CacheConfig struct {
	RedisURL   string
	ProfileTTL time.Duration
}

// AuthConfig controls password hashing and session tokens.
type AuthConfig struct {
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

// EventsConfig configures transfer notifications over NATS. An empty URL
// disables publishing.
type EventsConfig struct {
	NATSURL         string
	TransferSubject string
}

// RateLimitConfig bounds how fast a single user may create transfers.
type RateLimitConfig struct {
	TransfersPerMinute int
	Burst              int
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	IncludeCaller bool
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultDBDriver         = "sqlite"
	defaultDBDSN            = "paymybuddy.db"
	defaultDBMaxOpenConns   = 10
	defaultGraphMaxSessions = 10
	defaultProfileTTL       = 5 * time.Minute
	defaultIssuer           = "paymybuddy"
	defaultTokenTTL         = 24 * time.Hour
	defaultBcryptCost       = 10
	defaultTransferSubject  = "transactions.created"
	defaultTransfersPerMin  = 30
	defaultTransferBurst    = 5
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
)

// ErrMissingJWTSecret is returned when AUTH_JWT_SECRET is not set.
var ErrMissingJWTSecret = errors.New("AUTH_JWT_SECRET is required")

// Load reads configuration from environment variables, applying defaults.
// Values from a .env file in the working directory are loaded first when the
// file exists; real environment variables take precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Host:              valueOrDefault("SERVER_HOST", defaultHost),
			AllowedOriginsCSV: os.Getenv("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(valueOrDefault("DB_DRIVER", defaultDBDriver)),
			DSN:          valueOrDefault("DB_DSN", defaultDBDSN),
			MaxOpenConns: parseIntWithDefault("DB_MAX_OPEN_CONNS", defaultDBMaxOpenConns),
			LogLevel:     valueOrDefault("DB_LOG_LEVEL", "warn"),
		},
		Graph: GraphConfig{
			URI:               os.Getenv("GRAPH_URI"),
			Database:          valueOrDefault("GRAPH_DATABASE", ""),
			Username:          os.Getenv("GRAPH_USERNAME"),
			Password:          os.Getenv("GRAPH_PASSWORD"),
			MaxConnections:    parseIntWithDefault("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions),
			ConnectionBackend: strings.ToLower(valueOrDefault("CONNECTION_BACKEND", "sql")),
		},
		Cache: CacheConfig{
			RedisURL: os.Getenv("REDIS_URL"),
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("AUTH_JWT_SECRET"),
			Issuer:     valueOrDefault("AUTH_ISSUER", defaultIssuer),
			BcryptCost: parseIntWithDefault("AUTH_BCRYPT_COST", defaultBcryptCost),
		},
		Events: EventsConfig{
			NATSURL:         os.Getenv("NATS_URL"),
			TransferSubject: valueOrDefault("NATS_TRANSFER_SUBJECT", defaultTransferSubject),
		},
		RateLimit: RateLimitConfig{
			TransfersPerMinute: parseIntWithDefault("TRANSFER_RATE_PER_MINUTE", defaultTransfersPerMin),
			Burst:              parseIntWithDefault("TRANSFER_RATE_BURST", defaultTransferBurst),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format:        valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
	}

	port, err := parsePort("SERVER_PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", defaultReadTimeout, &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", defaultWriteTimeout, &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", defaultIdleTimeout, &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &cfg.HTTP.ShutdownTimeout},
		{"REDIS_PROFILE_TTL", defaultProfileTTL, &cfg.Cache.ProfileTTL},
		{"AUTH_TOKEN_TTL", defaultTokenTTL, &cfg.Auth.TokenTTL},
	}
	for _, d := range durations {
		v, err := parseDuration(d.key, d.fallback)
		if err != nil {
			return Config{}, err
		}
		*d.dst = v
	}

	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	switch cfg.Graph.ConnectionBackend {
	case "sql":
	case "graph":
		if cfg.Graph.URI == "" {
			return Config{}, errors.New("GRAPH_URI is required when CONNECTION_BACKEND=graph")
		}
	default:
		return Config{}, fmt.Errorf("unsupported CONNECTION_BACKEND %q", cfg.Graph.ConnectionBackend)
	}

	return cfg, nil
}

// Validate reports whether tokens can be signed. Only commands that issue or
// verify session tokens need to call it.
func (c AuthConfig) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// AllowedOrigins splits the CORS origin list.
func (c HTTPConfig) AllowedOrigins() []string {
	if c.AllowedOriginsCSV == "" {
		return nil
	}
	var origins []string
	for _, part := range strings.Split(c.AllowedOriginsCSV, ",") {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
