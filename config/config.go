// Package config builds the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultHTTPAddr        = ":8080"
	DefaultDBPort          = "5432"
	DefaultSSLMode         = "disable"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is built once at startup and handed to the components that need it.
type Config struct {
	HTTPAddr        string
	SecretKey       string
	ShutdownTimeout time.Duration
	Database        Database
	Log             Log
}

// Database holds the connection settings of the task table's database.
type Database struct {
	Driver   string
	Username string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
}

// Log selects the logrus level and formatter.
type Log struct {
	Level  string
	Format string
}

// Load reads the given dotenv files (".env" when none are given) and then the
// process environment. Variables already set in the environment win over the
// files. A missing file is not an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:        coalesce(os.Getenv("HTTP_ADDR"), DefaultHTTPAddr),
		SecretKey:       os.Getenv("SECRET_KEY"),
		ShutdownTimeout: DefaultShutdownTimeout,
		Database: Database{
			Driver:   strings.ToLower(coalesce(os.Getenv("DB_DRIVER"), DriverPostgres)),
			Username: coalesce(os.Getenv("DB_USERNAME"), os.Getenv("DB_USER")),
			Password: os.Getenv("DB_PASSWORD"),
			Host:     os.Getenv("DB_HOST"),
			Port:     coalesce(os.Getenv("DB_PORT"), DefaultDBPort),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  coalesce(os.Getenv("DB_SSLMODE"), DefaultSSLMode),
		},
		Log: Log{
			Level:  coalesce(os.Getenv("LOG_LEVEL"), DefaultLogLevel),
			Format: strings.ToLower(os.Getenv("LOG_FORMAT")),
		},
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q", v)
		}
		cfg.ShutdownTimeout = d
	}

	if err := cfg.Database.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every setting the driver needs is present.
func (d Database) Validate() error {
	var missing []string
	switch d.Driver {
	case DriverPostgres:
		if d.Username == "" {
			missing = append(missing, "DB_USERNAME")
		}
		if d.Host == "" {
			missing = append(missing, "DB_HOST")
		}
		if d.Name == "" {
			missing = append(missing, "DB_NAME")
		}
	case DriverSQLite:
		if d.Name == "" {
			missing = append(missing, "DB_NAME")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required database environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DSN returns the data source name for sql.Open.
func (d Database) DSN() string {
	if d.Driver == DriverSQLite {
		if strings.Contains(d.Name, "?") {
			return d.Name
		}
		return d.Name + "?_pragma=busy_timeout(5000)"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.Username, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// NewLogger builds the logrus logger described by l.
func (l Log) NewLogger() (*log.Logger, error) {
	logger := log.New()
	lvl, err := log.ParseLevel(coalesce(l.Level, DefaultLogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	logger.SetLevel(lvl)

	switch l.Format {
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", l.Format)
	}
	return logger, nil
}

func coalesce(args ...string) string {
	for _, s := range args {
		if s != "" {
			return s
		}
	}
	return ""
}
