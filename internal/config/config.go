// Package config loads runtime settings from the environment. A .env
// file in the working directory is read first when present; variables
// already set in the process take precedence over it.
package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Storage drivers understood by database.Open.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// MemoryPath selects a private in-memory SQLite store.
const MemoryPath = ":memory:"

const devSessionSecret = "dev-only-session-secret-change-me"

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable.
type Config struct {
	Env string // APP_ENV: dev, test or prod

	DBDriver string // DB_DRIVER: sqlite (default) or mysql
	DBPath   string // DB_PATH: SQLite file, or :memory:
	DBUser   string // DB_USER (mysql)
	DBPass   string // DB_PASS (mysql, may be empty)
	DBHost   string // DB_HOST (mysql)
	DBPort   string // DB_PORT (mysql)
	DBName   string // DB_NAME (mysql)

	BcryptCost        int           // BCRYPT_COST
	SessionSecret     string        // SESSION_SECRET signs the cached session
	SessionTTL        time.Duration // SESSION_TTL
	SessionFile       string        // SESSION_FILE holds the local session cache
	SeedAdminPassword string        // SEED_ADMIN_PASSWORD for the bootstrap admin

	ExportDir   string // EXPORT_DIR receives tickets and reports
	LogFile     string // LOG_FILE receives diagnostics while the TUI runs
	JournalFile string // JOURNAL_FILE receives confirmed booking lines
}

// Load reads the environment (after an optional .env file) and returns
// a Config with defaults filled in. It never exits: a missing session
// secret outside prod falls back to a development value with a warning.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("config: loaded .env")
	}

	cfg := Config{
		Env:               envStr("APP_ENV", "dev"),
		DBDriver:          envStr("DB_DRIVER", DriverSQLite),
		DBPath:            envStr("DB_PATH", "theatre_booking.db"),
		DBUser:            envStr("DB_USER", "root"),
		DBPass:            envStr("DB_PASS", ""),
		DBHost:            envStr("DB_HOST", "127.0.0.1"),
		DBPort:            envStr("DB_PORT", "3306"),
		DBName:            envStr("DB_NAME", "theatre_booking"),
		BcryptCost:        envInt("BCRYPT_COST", bcrypt.DefaultCost),
		SessionSecret:     envStr("SESSION_SECRET", ""),
		SessionTTL:        envDur("SESSION_TTL", 7*24*time.Hour),
		SessionFile:       envStr("SESSION_FILE", ".boxoffice/session.json"),
		SeedAdminPassword: envStr("SEED_ADMIN_PASSWORD", "admin123"),
		ExportDir:         envStr("EXPORT_DIR", "exports"),
		LogFile:           envStr("LOG_FILE", "logs/boxoffice.log"),
		JournalFile:       envStr("JOURNAL_FILE", "logs/booking.log"),
	}
	cfg.normalize()
	return cfg
}

func (c *Config) normalize() {
	if c.DBDriver != DriverSQLite && c.DBDriver != DriverMySQL {
		log.Printf("config: unknown DB_DRIVER %q, using %s", c.DBDriver, DriverSQLite)
		c.DBDriver = DriverSQLite
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		log.Printf("config: BCRYPT_COST %d out of range, using %d", c.BcryptCost, bcrypt.DefaultCost)
		c.BcryptCost = bcrypt.DefaultCost
	}
	if c.SessionSecret == "" {
		if c.Env == "prod" {
			log.Printf("WARNING: SESSION_SECRET is not set in prod; sessions are signed with the development secret")
		}
		c.SessionSecret = devSessionSecret
	}
}

// IsMemory reports whether the store is a private in-memory database.
func (c Config) IsMemory() bool {
	return c.DBDriver == DriverSQLite && c.DBPath == MemoryPath
}

// Testing returns a configuration for tests: an in-memory store, the
// cheapest bcrypt cost and every file under dir.
func Testing(dir string) Config {
	return Config{
		Env:               "test",
		DBDriver:          DriverSQLite,
		DBPath:            MemoryPath,
		BcryptCost:        bcrypt.MinCost,
		SessionSecret:     "test-secret",
		SessionTTL:        time.Hour,
		SessionFile:       dir + "/session.json",
		SeedAdminPassword: "admin123",
		ExportDir:         dir + "/exports",
		LogFile:           dir + "/boxoffice.log",
		JournalFile:       dir + "/booking.log",
	}
}
