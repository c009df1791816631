package config // package config loads application configuration from environment variables

import (
    "fmt"     // fmt formats validation errors
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings normalises driver names
    "time"    // time parses durations such as HOLD_TTL

    "github.com/joho/godotenv" // godotenv loads a local .env file when present
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Only the database coordinates are mandatory;
// everything else falls back to a default suitable for local development.
type Config struct {
    Env     string // application environment (e.g. "dev", "prod")
    Port    string // HTTP port to listen on
    Debug   bool   // console logging at debug level when true
    LogPath string // directory for rotated log files

    DBDriver   string // "mysql" (default) or "postgres"
    DBUser     string // database username
    DBPass     string // database password (optional)
    DBHost     string // database host address
    DBPort     string // database port number
    DBName     string // database name
    DBMaxConns int    // connection pool size

    HoldTTL       time.Duration // lifetime of a seat hold in the lock store
    HoldKeyPrefix string        // first segment of hold keys, "hold" by default

    JWTSecret string // when set, write routes require a bearer token

    AMQPURL      string // RabbitMQ URL; empty disables event publishing
    AMQPQueue    string // queue receiving booking.committed events
    AuditLogPath string // file the booking consumer appends to
}

// Load reads a .env file when one exists, then builds a Config from the
// environment.  Missing required variables are reported as an error so the
// caller can decide how to exit.
func Load() (Config, error) {
    // A missing .env is normal in containers; real env vars always win.
    _ = godotenv.Load()

    cfg := Config{
        Env:     getenv("APP_ENV", "dev"),
        Port:    getenv("APP_PORT", "5000"),
        Debug:   envBool("DEBUG", false),
        LogPath: getenv("LOG_PATH", "logs/"),

        DBDriver:   strings.ToLower(getenv("DB_DRIVER", "mysql")),
        DBUser:     os.Getenv("DB_USER"),
        DBPass:     os.Getenv("DB_PASS"),
        DBHost:     os.Getenv("DB_HOST"),
        DBPort:     os.Getenv("DB_PORT"),
        DBName:     os.Getenv("DB_NAME"),
        DBMaxConns: envInt("DB_MAX_CONNS", 25),

        HoldTTL:       envDur("HOLD_TTL", 600*time.Second),
        HoldKeyPrefix: getenv("HOLD_KEY_PREFIX", "hold"),

        JWTSecret: os.Getenv("JWT_SECRET"),

        AMQPURL:      firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
        AMQPQueue:    getenv("AMQP_QUEUE", "booking.committed"),
        AuditLogPath: getenv("AUDIT_LOG_PATH", "logs/booking.log"),
    }
    if err := cfg.validate(); err != nil {
        return Config{}, err
    }
    return cfg, nil
}

// validate enforces required variables and sane ranges.
func (c Config) validate() error {
    for key, v := range map[string]string{
        "DB_USER": c.DBUser,
        "DB_HOST": c.DBHost,
        "DB_PORT": c.DBPort,
        "DB_NAME": c.DBName,
    } {
        if v == "" {
            return fmt.Errorf("missing required env var: %s", key)
        }
    }
    if c.DBDriver != "mysql" && c.DBDriver != "postgres" {
        return fmt.Errorf("invalid DB_DRIVER %q: want mysql or postgres", c.DBDriver)
    }
    if c.HoldTTL < time.Second {
        return fmt.Errorf("invalid HOLD_TTL %s: must be at least 1s", c.HoldTTL)
    }
    if c.DBMaxConns < 1 {
        return fmt.Errorf("invalid DB_MAX_CONNS %d", c.DBMaxConns)
    }
    return nil
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1","true","TRUE","True","yes","YES","on","ON": return true
    case "0","false","FALSE","False","no","NO","off","OFF": return false
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    // bare integers are seconds, matching the EX argument of SET
    if n, err := strconv.Atoi(v); err == nil { return time.Duration(n) * time.Second }
    return d
}

func firstNonEmpty(vals ...string) string {
    for _, v := range vals {
        if v != "" {
            return v
        }
    }
    return ""
}
