// Package errors provides error handling for igloo.
//
// It re-exports github.com/cockroachdb/errors and defines the sentinel
// errors every igloo component wraps, so callers can branch on the kind of
// failure with Is:
//
//	if errors.Is(err, errors.ErrInvalidTarget) {
//	    // report to the user
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint      = crdb.WithHint
	WithHintf     = crdb.WithHintf
	WithDetail    = crdb.WithDetail
	WithDetailf   = crdb.WithDetailf
	GetAllHints   = crdb.GetAllHints
	FlattenHints  = crdb.FlattenHints
	GetAllDetails = crdb.GetAllDetails
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors. Wrap these with Wrap/Wrapf to add context while keeping
// the kind checkable with Is.
var (
	// ErrUnknown indicates an internal catalog inconsistency: a make table,
	// manifest file or MCU key is missing where it is structurally required.
	ErrUnknown = New("unknown error")

	// ErrConfigNotFound indicates a catalog or project file does not exist.
	ErrConfigNotFound = New("config not found")

	// ErrConfigFound indicates a project file already exists where a new
	// project was requested.
	ErrConfigFound = New("config found")

	// ErrInvalidProjectName indicates an empty project name.
	ErrInvalidProjectName = New("invalid project name")

	// ErrEnvInfoInvalid indicates a required environment value is absent.
	ErrEnvInfoInvalid = New("environment info invalid")

	// ErrInvalidTarget indicates a target identifier absent from the catalog.
	ErrInvalidTarget = New("invalid target")
)

// IsUserError reports whether err stems from user input rather than from
// the catalogs or the filesystem.
func IsUserError(err error) bool {
	return err != nil && IsAny(err, ErrInvalidProjectName, ErrInvalidTarget, ErrConfigFound)
}
