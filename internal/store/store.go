// Package store provides the hierarchical key-value tree store that holds
// all coupon state. Records are addressed by slash-separated paths such as
// coupons/<CODE>, couponUsage/<sessionId> and orders/<sessionId>, and are
// stored as raw JSON documents.
package store

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when no record exists at the requested path.
var ErrNotFound = errors.New("record not found")

// ErrUnchanged may be returned from an UpdateFunc to skip the write while
// leaving the stored record untouched. Update returns nil in that case.
var ErrUnchanged = errors.New("record unchanged")

// UpdateFunc transforms the current value at a path into its replacement.
// old is nil when no record exists yet. Returning ErrUnchanged aborts the
// write without error; any other error aborts the update and is returned
// to the caller.
type UpdateFunc func(old []byte) ([]byte, error)

// TreeStore is a remote tree-structured key-value store addressed by path.
// Update executes its UpdateFunc atomically with respect to other Update
// calls on the same path, so read-modify-write sequences (usage counters,
// create-if-absent) cannot lose writes under concurrent requests.
type TreeStore interface {
	// Get returns the raw JSON stored at path, or ErrNotFound.
	Get(ctx context.Context, path string) ([]byte, error)

	// Set unconditionally writes value at path, overwriting any prior record.
	Set(ctx context.Context, path string, value []byte) error

	// Update atomically applies fn to the record at path.
	Update(ctx context.Context, path string, fn UpdateFunc) error

	// Close releases resources held by the store.
	Close() error
}

// Path joins path segments into a store path.
func Path(segments ...string) string {
	return strings.Join(segments, "/")
}

// splitPath splits a path into its top-level namespace and the remaining
// key. Two-level paths are the only shape this service uses.
func splitPath(path string) (namespace, key string, ok bool) {
	namespace, key, ok = strings.Cut(path, "/")
	if !ok || namespace == "" || key == "" {
		return "", "", false
	}
	return namespace, key, true
}
