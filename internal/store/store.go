// Package store holds the template, project and snippet state kept in a
// storage.KV. Each store reads and rewrites whole documents on every call;
// storage failures are logged and swallowed at this boundary.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/chriscorrea/workbench/internal/storage"
)

// logical keys of the persisted state
const (
	KeyCustomTemplates  = "customTemplates"
	KeyFavorites        = "templateFavorites"
	KeyUseCounts        = "templateUseCounts"
	KeyEnabledTemplates = "enabledTemplates"
	KeyEnabledProjects  = "enabledProjects"
	KeyLastProject      = "lastProjectUuid"
	KeySnippets         = "promptSnippets"
)

var (
	ErrDuplicate = errors.New("already exists")
	ErrNotFound  = errors.New("not found")
	ErrEmpty     = errors.New("must not be empty")
)

// PersistenceError reports a failed read, decode, encode or write of a key
type PersistenceError struct {
	Key string
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// doc wraps a KV with JSON encoding and error logging
type doc struct {
	kv     storage.KV
	logger *slog.Logger
}

func newDoc(kv storage.KV, logger *slog.Logger) doc {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return doc{kv: kv, logger: logger}
}

// load decodes key into v and reports whether a usable value was found
// A value that cannot be read or decoded is logged and treated as absent.
func (d doc) load(key string, v any) bool {
	raw, found, err := d.kv.Get(key)
	if err != nil {
		d.report(&PersistenceError{Key: key, Op: "read", Err: err})
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		d.report(&PersistenceError{Key: key, Op: "decode", Err: err})
		return false
	}
	return true
}

// save encodes v under key and reports whether it was stored
func (d doc) save(key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		d.report(&PersistenceError{Key: key, Op: "encode", Err: err})
		return false
	}
	if err := d.kv.Set(key, string(data)); err != nil {
		d.report(&PersistenceError{Key: key, Op: "write", Err: err})
		return false
	}
	return true
}

// loadString reads a raw string value
func (d doc) loadString(key string) (string, bool) {
	value, found, err := d.kv.Get(key)
	if err != nil {
		d.report(&PersistenceError{Key: key, Op: "read", Err: err})
		return "", false
	}
	return value, found
}

func (d doc) saveString(key, value string) bool {
	if err := d.kv.Set(key, value); err != nil {
		d.report(&PersistenceError{Key: key, Op: "write", Err: err})
		return false
	}
	return true
}

func (d doc) remove(key string) bool {
	if err := d.kv.Remove(key); err != nil {
		d.report(&PersistenceError{Key: key, Op: "remove", Err: err})
		return false
	}
	return true
}

func (d doc) report(err *PersistenceError) {
	d.logger.Error("storage operation failed", "key", err.Key, "op", err.Op, "error", err.Err)
}
