// Package store provides access to telemetry session files in object storage.
package store

import (
	"context"
	"errors"
	"strings"
)

// TelemetryExtension is the sole selector for "this is a telemetry file".
const TelemetryExtension = ".json"

// Store defines the interface for listing and fetching telemetry session
// blobs. Listings carry no consistency guarantee: the store may gain or lose
// entries between calls.
type Store interface {
	// List returns keys under prefix, filtered to the telemetry extension,
	// in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Fetch returns the raw payload for key. A missing key yields an error
	// wrapping ErrNotFound; callers surface "no data" rather than crash.
	Fetch(ctx context.Context, key string) ([]byte, error)

	// Name returns the name of the backing store implementation.
	Name() string
}

// Pinger is implemented by stores that can verify connectivity, used by the
// health server's readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreError represents errors from store operations
type StoreError struct {
	Store   string // Store implementation name
	Op      string // "list" or "fetch"
	Key     string // Key or prefix involved
	Code    string // Error code (e.g. "not_found")
	Message string // Error message
	Err     error  // Underlying error
}

func (e StoreError) Error() string {
	msg := e.Store + ": " + e.Op + " " + e.Key + ": " + e.Code + ": " + e.Message
	if e.Err != nil {
		return msg + " (" + e.Err.Error() + ")"
	}
	return msg
}

func (e StoreError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeNotFound     = "not_found"
	ErrCodeAccessDenied = "access_denied"
	ErrCodeNetworkError = "network_error"
	ErrCodeServerError  = "server_error"
	ErrCodeInvalidData  = "invalid_data"
	ErrCodeUnknown      = "unknown"
)

// Sentinel errors
var (
	ErrNotFound     = errors.New("telemetry file not found")
	ErrAccessDenied = errors.New("access denied by object store")
)

// NewStoreError creates a new store error
func NewStoreError(store, op, key, code, message string, err error) StoreError {
	return StoreError{
		Store:   store,
		Op:      op,
		Key:     key,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsTelemetryKey reports whether key carries the telemetry file extension.
func IsTelemetryKey(key string) bool {
	return strings.HasSuffix(strings.ToLower(key), TelemetryExtension)
}
