package config // package config loads application configuration from a file and the environment

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration values.  One value is built in
// main and handed to every component that opens a connection; nothing in
// the service reads connection settings from package state.
type Config struct {
	Env            string        `yaml:"env"`              // application environment (dev/test/prod)
	Port           string        `yaml:"port"`             // HTTP port to listen on
	DBUser         string        `yaml:"db_user"`          // database username
	DBPass         string        `yaml:"db_pass"`          // database password (optional)
	DBHost         string        `yaml:"db_host"`          // database host address
	DBPort         string        `yaml:"db_port"`          // database port number
	DBName         string        `yaml:"db_name"`          // schema holding the exam seating tables
	JWTSecret      string        `yaml:"jwt_secret"`       // secret used to sign operator JWTs
	AccessTTLMin   int           `yaml:"access_ttl_min"`   // access token time-to-live in minutes
	RefreshTTLDays int           `yaml:"refresh_ttl_days"` // refresh token time-to-live in days
	BcryptCost     int           `yaml:"bcrypt_cost"`      // bcrypt cost for operator passwords
	AMQPURL        string        `yaml:"amqp_url"`         // RabbitMQ URL; empty disables events
	LockTTL        time.Duration `yaml:"lock_ttl"`         // upper bound on one auto-allocate cycle
	QueryMaxRows   int           `yaml:"query_max_rows"`   // row cap for ad-hoc SELECT
	LogLevel       string        `yaml:"log_level"`        // debug | info | warn | error
	LogPretty      bool          `yaml:"log_pretty"`       // human readable console output
	AdminEmail     string        `yaml:"admin_email"`      // bootstrap ADMIN operator (optional)
	AdminPassword  string        `yaml:"admin_password"`   // bootstrap ADMIN password (optional)
}

// Load builds a Config.  Defaults come first, then the YAML file named by
// CONFIG_FILE (when set), then environment variables.  Missing required
// values are reported together in one error.
func Load() (Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Env:            "dev",
		Port:           "8080",
		DBPort:         "3306",
		AccessTTLMin:   30,
		RefreshTTLDays: 7,
		BcryptCost:     12,
		LockTTL:        30 * time.Second,
		QueryMaxRows:   500,
		LogLevel:       "info",
		LogPretty:      true,
	}
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envStr("APP_ENV", cfg.Env)
	cfg.Port = envStr("APP_PORT", cfg.Port)
	cfg.DBUser = envStr("DB_USER", cfg.DBUser)
	cfg.DBPass = envStr("DB_PASS", cfg.DBPass)
	cfg.DBHost = envStr("DB_HOST", cfg.DBHost)
	cfg.DBPort = envStr("DB_PORT", cfg.DBPort)
	cfg.DBName = envStr("DB_NAME", cfg.DBName)
	cfg.JWTSecret = envStr("JWT_SECRET", cfg.JWTSecret)
	cfg.AccessTTLMin = envInt("ACCESS_TOKEN_TTL_MIN", cfg.AccessTTLMin)
	cfg.RefreshTTLDays = envInt("REFRESH_TOKEN_TTL_DAYS", cfg.RefreshTTLDays)
	cfg.BcryptCost = envInt("BCRYPT_COST", cfg.BcryptCost)
	cfg.AMQPURL = envStr("RABBITMQ_URL", envStr("AMQP_URL", cfg.AMQPURL))
	cfg.LockTTL = envDur("ALLOCATION_LOCK_TTL", cfg.LockTTL)
	cfg.QueryMaxRows = envInt("QUERY_MAX_ROWS", cfg.QueryMaxRows)
	cfg.LogLevel = strings.ToLower(envStr("LOG_LEVEL", cfg.LogLevel))
	cfg.LogPretty = envBool("LOG_PRETTY", cfg.LogPretty)
	cfg.AdminEmail = envStr("ADMIN_EMAIL", cfg.AdminEmail)
	cfg.AdminPassword = envStr("ADMIN_PASSWORD", cfg.AdminPassword)
}

// validate enforces the values the service cannot start without.
func (c Config) validate() error {
	var missing []string
	for key, v := range map[string]string{
		"APP_PORT":   c.Port,
		"DB_USER":    c.DBUser,
		"DB_HOST":    c.DBHost,
		"DB_PORT":    c.DBPort,
		"DB_NAME":    c.DBName,
		"JWT_SECRET": c.JWTSecret,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if c.AccessTTLMin <= 0 || c.RefreshTTLDays <= 0 {
		return errors.New("token ttl values must be positive")
	}
	if c.LockTTL <= 0 {
		return errors.New("ALLOCATION_LOCK_TTL must be positive")
	}
	if c.QueryMaxRows <= 0 {
		return errors.New("QUERY_MAX_ROWS must be positive")
	}
	return nil
}
