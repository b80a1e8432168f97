package storage

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/store-insights/internal/metadata"
	"github.com/rohmanhakim/store-insights/pkg/failure"
)

var (
	// ErrDispatcherFull is returned by Submit when the queue has no room.
	ErrDispatcherFull = errors.New("dispatch queue full")
	// ErrDispatcherClosed is returned by Submit after Close.
	ErrDispatcherClosed = errors.New("dispatcher closed")
)

type StorageErrorCause string

const (
	ErrCauseDiskFull        StorageErrorCause = "disk is full"
	ErrCauseWriteFailure    StorageErrorCause = "write failed"
	ErrCausePathError       StorageErrorCause = "path error"
	ErrCauseEncodeFailure   StorageErrorCause = "encode failed"
	ErrCauseDatabaseFailure StorageErrorCause = "database failure"
)

type StorageError struct {
	Message   string
	Retryable bool
	Cause     StorageErrorCause
	Path      string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %s", e.Cause, e.Message)
}

func (e *StorageError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapStorageErrorToMetadataCause maps storage-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapStorageErrorToMetadataCause(err *StorageError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseDiskFull, ErrCauseWriteFailure, ErrCausePathError, ErrCauseDatabaseFailure:
		return metadata.CauseStorageFailure
	case ErrCauseEncodeFailure:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
