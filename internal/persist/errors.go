package persist

import (
	"errors"
	"fmt"
)

var (
	// ErrRemoteUnavailable wraps any failure talking to the config service.
	ErrRemoteUnavailable = errors.New("remote config service unavailable")
	// ErrMalformedStoredConfig means the cached config could not be decoded.
	ErrMalformedStoredConfig = errors.New("malformed stored config")
	// ErrNoCachedConfig means the local cache holds no config.
	ErrNoCachedConfig = errors.New("no cached config")
	// ErrDegradedWrite marks a write recorded locally but not remotely.
	ErrDegradedWrite = errors.New("degraded write: saved locally only")
	// ErrNotPersisted means neither the remote service nor the local cache
	// recorded the write.
	ErrNotPersisted = errors.New("write not persisted")
)

// DegradedWriteError is returned by Gateway.Write when the remote write
// failed but the merged config was applied in memory and cached locally.
// It matches ErrDegradedWrite and unwraps to the remote cause.
type DegradedWriteError struct {
	Cause error
}

func (e *DegradedWriteError) Error() string {
	return fmt.Sprintf("%v: %v", ErrDegradedWrite, e.Cause)
}

// Is reports whether target is ErrDegradedWrite.
func (e *DegradedWriteError) Is(target error) bool {
	return target == ErrDegradedWrite
}

func (e *DegradedWriteError) Unwrap() error { return e.Cause }

// IsDegraded reports whether err signals a degraded (local-only) write.
func IsDegraded(err error) bool {
	return errors.Is(err, ErrDegradedWrite)
}
