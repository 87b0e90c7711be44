// Package store persists HR collections as versioned JSON blobs.
//
// Every collection is one array rewritten as a whole. Writers pass the version
// they read; a stale version is rejected with ErrVersionConflict and the
// caller retries the read-modify-write.
package store

import (
	"context"
	stderrors "errors"
)

// Key names a persisted collection.
type Key string

// Persisted collections
const (
	KeyEmployees        Key = "employees"
	KeyEmployeesDeleted Key = "employees_deleted"
	KeyAttendance       Key = "attendance"
	KeyLeaveRequests    Key = "leave_requests"
	KeyPayroll          Key = "payroll"
	KeyApprovedUsers    Key = "approved_users"
	KeyRegistrations    Key = "pending_registrations"
)

// ErrVersionConflict is returned by Put when the stored version moved on.
var ErrVersionConflict = stderrors.New("collection version conflict")

// Blob is a raw collection body and its version. A missing collection has
// version 0 and no data.
type Blob struct {
	Data    []byte
	Version int64
}

// Store is a key/value blob store with optimistic concurrency.
type Store interface {
	// Get returns the current blob for key.
	Get(ctx context.Context, key Key) (Blob, error)
	// Put replaces the blob if its version still equals expected and
	// returns the new version.
	Put(ctx context.Context, key Key, data []byte, expected int64) (int64, error)
	// Atomic runs fn so that its writes are applied together or not at all.
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
	// Close releases backend resources.
	Close() error
}

// ChangeFunc is notified after a collection was written.
type ChangeFunc func(ctx context.Context, key Key, version int64)
