package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database fields are only required for the
// driver that is actually selected.
type Config struct {
	Env          string // application environment (development, staging, production)
	Port         string // HTTP port to listen on
	DBDriver     string // "mysql" or "sqlite"
	DBUser       string // database username (mysql)
	DBPass       string // database password (optional)
	DBHost       string // database host address (mysql)
	DBPort       string // database port number (mysql)
	DBName       string // database name (mysql)
	DBPath       string // database file (sqlite)
	JWTSecret    string // secret used to sign access tokens for the AR client
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
	SeedEnabled  bool   // insert the default AR buildings on first start
	SeedLock     string // auto, mysql, redis or none
	StaticDir    string // directory served as static files
	LogLevel     string // debug, info, warn, error
	LogFormat    string // json or console
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:          envStr("APP_ENV", "development"),
		Port:         envStr("APP_PORT", "8080"),
		DBDriver:     strings.ToLower(envStr("DB_DRIVER", "mysql")),
		DBPass:       os.Getenv("DB_PASS"),
		DBPath:       envStr("DB_PATH", "wayfindar.db"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:   envInt("BCRYPT_COST", 12),
		SeedEnabled:  envBool("SEED_ENABLED", true),
		SeedLock:     strings.ToLower(envStr("SEED_LOCK", "auto")),
		StaticDir:    envStr("STATIC_DIR", "wwwroot"),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		LogFormat:    envStr("LOG_FORMAT", "json"),
	}
	switch cfg.DBDriver {
	case "mysql":
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = envStr("DB_HOST", "127.0.0.1")
		cfg.DBPort = envStr("DB_PORT", "3306")
		cfg.DBName = must("DB_NAME")
	case "sqlite":
	default:
		log.Fatalf("unsupported DB_DRIVER: %q", cfg.DBDriver)
	}
	return cfg
}

// IsDevelopment reports whether the developer pipeline (no HSTS, no HTTPS
// redirect, detailed errors) should be used.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}
