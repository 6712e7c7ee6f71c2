// Package config provides centralized default values for ProfileStack
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Storage Configuration
	AppPrefix             string
	StoreBackend          string
	SQLitePath            string
	LibSQLURL             string
	MemoryStoreMaxEntries int

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int

	// TTL Configuration
	ProfileCacheTTL time.Duration
	ShellIdleTTL    time.Duration
	SessionTokenTTL time.Duration

	// Cleanup Intervals
	ShellCleanupInterval time.Duration

	// Identity Configuration
	JWTSecret string
	AESKey    string

	// Stream Configuration
	MaxStreamsPerShell      int
	StreamWriteTimeout      time.Duration
	StreamHeartbeatInterval time.Duration

	// Observability
	SlowQueryThreshold time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Storage Configuration
	AppPrefix = getEnvString("APP_PREFIX", "profilestack")
	StoreBackend = getEnvString("STORE_BACKEND", "sqlite")
	SQLitePath = getEnvString("SQLITE_PATH", "profilestack.db")
	LibSQLURL = getEnvString("LIBSQL_URL", "")
	MemoryStoreMaxEntries = getEnvInt("MEMORY_STORE_MAX_ENTRIES", 10000)

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)

	// TTL Configuration
	ProfileCacheTTL = time.Duration(getEnvInt("PROFILE_CACHE_TTL_MINUTES", 5)) * time.Minute
	ShellIdleTTL = time.Duration(getEnvInt("SHELL_IDLE_TTL_MINUTES", 60)) * time.Minute
	SessionTokenTTL = time.Duration(getEnvInt("SESSION_TOKEN_TTL_HOURS", 24)) * time.Hour

	// Cleanup Intervals
	ShellCleanupInterval = time.Duration(getEnvInt("SHELL_CLEANUP_INTERVAL_MINUTES", 10)) * time.Minute

	// Identity Configuration
	JWTSecret = getEnvString("JWT_SECRET", "")
	AESKey = getEnvString("AES_KEY", "")

	// Stream Configuration
	MaxStreamsPerShell = getEnvInt("MAX_STREAMS_PER_SHELL", 3)
	StreamWriteTimeout = getEnvDuration("STREAM_WRITE_TIMEOUT", 10*time.Second)
	StreamHeartbeatInterval = getEnvDuration("STREAM_HEARTBEAT_INTERVAL", 30*time.Second)

	// Observability
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 100*time.Millisecond)
}
