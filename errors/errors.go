// Package errors provides error handling for corrfill.
//
// This package re-exports github.com/cockroachdb/errors so every package
// wraps, annotates and inspects errors the same way:
//
//	// Wrap with context
//	if err := client.FetchRecord(ctx, contract); err != nil {
//	    return errors.Wrapf(err, "fetch record for contract %s", contract)
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "check cds.base_url in am.toml")
//
//	// Check errors
//	if errors.Is(err, errors.ErrNotFound) {
//	    // no record for this contract
//	}
//
// The resolution engine itself never returns errors; everything here is for
// the collaborators around it (fetch, file I/O, merge, ledger).
package errors

import (
	"strings"

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
	Join         = crdb.Join
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Sentinel errors shared by the collaborators. Wrap them to add context;
// errors.Is keeps working through the wrap chain.
var (
	// ErrNotFound indicates a record, template or fragment does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates malformed input: bad JSON, wrong document
	// shape, empty contract number
	ErrInvalidRequest = New("invalid request")

	// ErrServiceUnavailable indicates the data service could not be reached
	// or answered with a server error
	ErrServiceUnavailable = New("service unavailable")

	// ErrTimeout indicates a request deadline was exceeded
	ErrTimeout = New("operation timed out")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// IsServiceUnavailableError checks if an error is or wraps ErrServiceUnavailable
func IsServiceUnavailableError(err error) bool {
	return err != nil && Is(err, ErrServiceUnavailable)
}

// IsTimeoutError checks if an error is or wraps ErrTimeout
func IsTimeoutError(err error) bool {
	return err != nil && Is(err, ErrTimeout)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}

// WrapInvalidRequest marks err as an invalid-request error with context.
// The original chain is kept, so its hints and causes stay reachable.
func WrapInvalidRequest(err error, context string) error {
	return Wrap(Mark(err, ErrInvalidRequest), context)
}

// HintText returns every hint attached to err, one per line, or "" if none.
func HintText(err error) string {
	if err == nil {
		return ""
	}
	return strings.Join(GetAllHints(err), "\n")
}
