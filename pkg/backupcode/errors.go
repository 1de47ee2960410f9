package backupcode

import "errors"

var (
	// ErrBackupCodeNotFound is returned for unknown, malformed and already consumed codes alike,
	// so callers cannot tell whether a code ever existed.
	ErrBackupCodeNotFound = errors.New("backup code not found")

	ErrInvalidCount   = errors.New("invalid backup code count, must be greater than 0")
	ErrRandomSource   = errors.New("secure random source failed")
	ErrDuplicateCode  = errors.New("duplicate backup code in batch")
	ErrInvalidRecord  = errors.New("invalid backup code record")
	ErrEmptyOwner     = errors.New("empty backup code owner")
	ErrStorageFailure = errors.New("backup code storage failure")
)
