package enrollment

import "errors"

// Binding errors
var (
	ErrBindingNotFound = errors.New("binding not found")
	ErrBindingExists   = errors.New("an active binding with this label already exists")
	ErrInvalidOwner    = errors.New("owner is required")
	ErrStorageFailure  = errors.New("binding storage failure")
	ErrBindingInUse    = errors.New("binding is pending or active")
)

// Lifecycle errors
var (
	ErrNotPending             = errors.New("binding is not pending confirmation")
	ErrEnrollmentNotConfirmed = errors.New("enrollment not confirmed")
	ErrNotActive              = errors.New("binding is not active")
)

// Verification errors
var (
	ErrCodeReplayed = errors.New("code was already used")
)
