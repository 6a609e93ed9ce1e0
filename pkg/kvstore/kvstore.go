// Package kvstore provides the durable string key-value backends the chat
// store persists into.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a flat string key-value store. Every Set replaces the previous value.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Driver names
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Driver string `json:"driver"`

	// sqlite
	Path string `json:"path,omitempty"`

	// redis
	Addr      string        `json:"addr,omitempty"`
	Username  string        `json:"username,omitempty"`
	Password  string        `json:"password,omitempty"`
	DB        int           `json:"db,omitempty"`
	KeyPrefix string        `json:"key_prefix,omitempty"`
	Timeout   time.Duration `json:"timeout,omitempty"`
}

// Open creates the backend named by cfg.Driver.
func Open(cfg Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("kvstore: sqlite path is required")
		}
		return NewSQLite(cfg.Path, logger)
	case DriverRedis:
		if cfg.Addr == "" {
			return nil, fmt.Errorf("kvstore: redis addr is required")
		}
		return NewRedis(cfg, logger)
	default:
		return nil, fmt.Errorf("kvstore: unsupported driver %q", cfg.Driver)
	}
}
