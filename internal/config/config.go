package config

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Runtime tuning keys accepted by the admin API. They overlay the built-in
// table rules without a restart.
const (
	KeyFrictionBase     = "table.friction_base"
	KeyMaxShotSpeed     = "table.max_shot_speed"
	KeyMinPocketCount   = "table.min_pocket_count"
	KeySolveDelayMillis = "table.solve_delay_millis"
)

// TunableKeys lists every runtime key the admin API may set.
var TunableKeys = []string{KeyFrictionBase, KeyMaxShotSpeed, KeyMinPocketCount, KeySolveDelayMillis}

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Session Settings
	IdleWarningSeconds     int
	IdleExpireSeconds      int
	IdleWorkerPollInterval int
	MaxActiveSessions      int

	// Gift Settings
	MaxStagesPerGift int

	// Game Settings
	GameConfigFile string

	// Security
	JWTSecret         string
	SessionTimeoutMin int

	// Runtime overrides set through the admin API, keyed by the Key*
	// constants above. Guarded because sessions read while admins write.
	mu        sync.RWMutex
	overrides map[string]string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/giftpool?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Session Settings
		IdleWarningSeconds:     getEnvInt("IDLE_WARNING_SECONDS", 180),
		IdleExpireSeconds:      getEnvInt("IDLE_EXPIRE_SECONDS", 600),
		IdleWorkerPollInterval: getEnvInt("IDLE_WORKER_POLL_INTERVAL_SECONDS", 30),
		MaxActiveSessions:      getEnvInt("MAX_ACTIVE_SESSIONS", 500),

		// Gift Settings
		MaxStagesPerGift: getEnvInt("MAX_STAGES_PER_GIFT", 10),

		// Game Settings
		GameConfigFile: getEnv("GAME_CONFIG_FILE", ""),

		// Security
		JWTSecret:         getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTimeoutMin: getEnvInt("SESSION_TIMEOUT_MINUTES", 30),

		overrides: make(map[string]string),
	}
}

// SetOverride stores one runtime tuning value. An empty value clears it.
func (c *Config) SetOverride(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.overrides == nil {
		c.overrides = make(map[string]string)
	}
	if value == "" {
		delete(c.overrides, key)
		return
	}
	c.overrides[key] = value
}

// Override returns the runtime value for a key, if set.
func (c *Config) Override(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.overrides[key]
	return v, ok
}

// Overrides returns a copy of all runtime tuning values.
func (c *Config) Overrides() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.overrides))
	for k, v := range c.overrides {
		out[k] = v
	}
	return out
}

// ApplyTableOverrides overlays runtime tuning onto table rule values.
// Unparseable values are logged and skipped so a bad override can never
// take the tables down.
func (c *Config) ApplyTableOverrides(frictionBase, maxShotSpeed *float64, minPocketCount, solveDelayMillis *int) {
	if v, ok := c.Override(KeyFrictionBase); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*frictionBase = f
		} else {
			log.Printf("[CONFIG] Bad override %s=%q: %v", KeyFrictionBase, v, err)
		}
	}
	if v, ok := c.Override(KeyMaxShotSpeed); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*maxShotSpeed = f
		} else {
			log.Printf("[CONFIG] Bad override %s=%q: %v", KeyMaxShotSpeed, v, err)
		}
	}
	if v, ok := c.Override(KeyMinPocketCount); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*minPocketCount = n
		} else {
			log.Printf("[CONFIG] Bad override %s=%q: %v", KeyMinPocketCount, v, err)
		}
	}
	if v, ok := c.Override(KeySolveDelayMillis); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*solveDelayMillis = n
		} else {
			log.Printf("[CONFIG] Bad override %s=%q: %v", KeySolveDelayMillis, v, err)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
