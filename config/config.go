// Package config loads settings for the invoice CLI and server.
//
// Sources, lowest to highest precedence: built-in defaults, an optional
// YAML file (invoice.yaml), INVOICE_* environment variables, bound flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config holds all configuration for the application.
type Config struct {
	CustomerFile string       `mapstructure:"customer_file"`
	ValuesFile   string       `mapstructure:"values_file"`
	ReportDir    string       `mapstructure:"report_dir"`
	Backend      string       `mapstructure:"backend"`
	SQLite       SQLiteConfig `mapstructure:"sqlite"`
	Server       ServerConfig `mapstructure:"server"`
	Log          LogConfig    `mapstructure:"log"`
}

// SQLiteConfig selects the database file. With SeedFromCSV the database is
// refilled from the CSV files on startup.
type SQLiteConfig struct {
	Path        string `mapstructure:"path"`
	SeedFromCSV bool   `mapstructure:"seed_from_csv"`
}

// ServerConfig defines HTTP server settings.
type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitPerSecond int           `mapstructure:"rate_limit_per_second"`
	AllowedOrigins     []string      `mapstructure:"allowed_origins"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"customer-file": "customer_file",
	"values-file":   "values_file",
	"report-dir":    "report_dir",
	"backend":       "backend",
	"db":            "sqlite.path",
	"seed":          "sqlite.seed_from_csv",
	"port":          "server.port",
	"log-level":     "log.level",
	"log-format":    "log.format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("customer_file", "data/customers.csv")
	v.SetDefault("values_file", "data/meter_values.csv")
	v.SetDefault("report_dir", ".")
	v.SetDefault("backend", BackendCSV)
	v.SetDefault("sqlite.path", "invoices.db")
	v.SetDefault("sqlite.seed_from_csv", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit_per_second", 50)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration. configFile may be empty, in which case
// invoice.yaml is looked up in the working directory and skipped if absent.
// flags may be nil; known flags that were set on the command line win.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("INVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("invoice")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendCSV, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("backend must be %q or %q, got %q", BackendCSV, BackendSQLite, c.Backend))
	}
	if c.Backend == BackendCSV || c.SQLite.SeedFromCSV {
		if c.CustomerFile == "" {
			errs = append(errs, errors.New("customer_file is required"))
		}
		if c.ValuesFile == "" {
			errs = append(errs, errors.New("values_file is required"))
		}
	}
	if c.Backend == BackendSQLite && c.SQLite.Path == "" {
		errs = append(errs, errors.New("sqlite.path is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.RateLimitPerSecond < 0 {
		errs = append(errs, errors.New("server.rate_limit_per_second must not be negative"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
