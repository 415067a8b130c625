// Package config loads the server's runtime configuration from environment
// variables, grounded on the teacher's pkg/jobs.JobConfigFromEnv pattern:
// defaults first, then an os.Getenv/strconv override pass.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kernelapp/kernel/internal/gormstore"
	"github.com/kernelapp/kernel/internal/store"
)

// Config is the full set of recognised options. The KERNEL_APP_MONGODB_*
// names are carried over unchanged even though this implementation's
// backend is relational, not MongoDB: KERNEL_APP_MONGODB_DSN is read as the
// SQL DSN, and KERNEL_APP_MONGODB_REPLICASET/_READPREFERENCE are parsed for
// configuration-surface parity but have no effect on a relational backend.
// KERNEL_APP_DB_TYPE selects the gorm dialect and has no analogue in the
// documented variable list.
type Config struct {
	DatabaseDSN    string
	DatabaseType   gormstore.Dialect
	ReplicaSet     string
	ReadPreference string

	PrometheusEnabled bool
	PrometheusPort    int

	MaxRetries    int
	BackoffFactor float64

	ListenAddr string
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		DatabaseDSN:       "mongodb://db:27017",
		DatabaseType:      gormstore.DialectPostgres,
		ReplicaSet:        "",
		ReadPreference:    "secondaryPreferred",
		PrometheusEnabled: true,
		PrometheusPort:    8087,
		MaxRetries:        4,
		BackoffFactor:     1.2,
		ListenAddr:        ":8080",
	}
}

// FromEnv loads Config, applying environment overrides on top of Default.
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv("KERNEL_APP_MONGODB_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("KERNEL_APP_MONGODB_REPLICASET"); v != "" {
		cfg.ReplicaSet = v
	}
	if v := os.Getenv("KERNEL_APP_MONGODB_READPREFERENCE"); v != "" {
		cfg.ReadPreference = v
	}
	if v := os.Getenv("KERNEL_APP_DB_TYPE"); v != "" {
		cfg.DatabaseType = gormstore.Dialect(strings.ToLower(v))
	}

	if v := os.Getenv("KERNEL_APP_PROMETHEUS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.PrometheusEnabled = b
		}
	}
	if v := os.Getenv("KERNEL_APP_PROMETHEUS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PrometheusPort = n
		}
	}

	if v := os.Getenv("KERNEL_LIB_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("KERNEL_LIB_BACKOFF_FACTOR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.BackoffFactor = f
		}
	}

	if v := os.Getenv("KERNEL_APP_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}

	return cfg
}

// RetryConfig translates the loaded retry settings into store.RetryConfig.
func (c Config) RetryConfig() store.RetryConfig {
	return store.RetryConfig{MaxRetries: c.MaxRetries, BackoffFactor: c.BackoffFactor}
}

// Validate rejects configurations that cannot be used to open a database
// connection.
func (c Config) Validate() error {
	switch c.DatabaseType {
	case gormstore.DialectPostgres, gormstore.DialectMySQL, gormstore.DialectSQLite:
	default:
		return fmt.Errorf("config: unsupported KERNEL_APP_DB_TYPE %q", c.DatabaseType)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("config: KERNEL_APP_MONGODB_DSN must not be empty")
	}
	return nil
}
