// Package storage provides the key/value persistence port used by the stores
// and its backends: memory, a JSON file, SQLite and Redis.
package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// KV is a string key/value store
// Get reports found=false for a key that was never set or has been removed.
type KV interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// Backend is a KV that holds resources which must be released
type Backend interface {
	KV
	Close() error
}

// backend names accepted by Open
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Backends lists the accepted backend names
var Backends = []string{BackendFile, BackendSQLite, BackendRedis, BackendMemory}

// Config selects and parameterizes a backend
type Config struct {
	Backend   string
	Path      string
	RedisAddr string
	RedisDB   int
	Namespace string
}

// DefaultNamespace prefixes keys in the shared backends
const DefaultNamespace = "workbench"

// Open creates the backend named by cfg.Backend
func Open(cfg Config, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	logger.Debug("opening storage", "backend", backend, "path", cfg.Path)

	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile, "":
		path, err := expandHome(cfg.Path)
		if err != nil {
			return nil, err
		}
		f, err := NewFile(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("using state file", "path", f.Path())
		return f, nil
	case BackendSQLite:
		path, err := expandHome(cfg.Path)
		if err != nil {
			return nil, err
		}
		return NewSQLite(path, cfg.Namespace)
	case BackendRedis:
		return NewRedis(RedisOptions{
			Addr:      cfg.RedisAddr,
			DB:        cfg.RedisDB,
			Namespace: cfg.Namespace,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (supported: %s)", cfg.Backend, strings.Join(Backends, ", "))
	}
}

// expandHome resolves a leading ~ to the user's home directory
func expandHome(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("storage path is required")
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
