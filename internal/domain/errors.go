package domain

import (
	"context"
	"errors"
)

// Sentinel errors for domain operations
var (
	// ErrRepository indicates a network or server failure talking to the
	// remote store. It is transient.
	ErrRepository = errors.New("repository unavailable")

	// ErrForbidden indicates an ownership or authorization failure
	ErrForbidden = errors.New("operation not permitted")

	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates input rejected before any network call
	ErrValidation = errors.New("invalid input")

	// ErrDuplicateCondominium indicates a suggested condominium already exists in the city
	ErrDuplicateCondominium = errors.New("condominium already exists")

	// ErrNoUserCondominium indicates the signed-in resident has no condominium
	ErrNoUserCondominium = errors.New("user has no condominium")
)

// ErrorCategory classifies an error for handling policy.
type ErrorCategory int

const (
	// CategoryTransient errors are retried (listings) or degraded (options).
	CategoryTransient ErrorCategory = iota
	// CategoryValidation errors are local and never reach the network.
	CategoryValidation
	// CategoryForbidden errors are fatal to the operation.
	CategoryForbidden
	// CategoryCanceled errors come from a superseded or torn-down context.
	CategoryCanceled
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryTransient:
		return "transient"
	case CategoryValidation:
		return "validation"
	case CategoryForbidden:
		return "forbidden"
	case CategoryCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Classify maps err onto the handling taxonomy. Unknown errors are treated as
// transient. A repository failure stays transient even when it wraps a
// deadline, as an HTTP client timeout does.
func Classify(err error) ErrorCategory {
	switch {
	case errors.Is(err, ErrRepository):
		return CategoryTransient
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CategoryCanceled
	case errors.Is(err, ErrForbidden):
		return CategoryForbidden
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicateCondominium), errors.Is(err, ErrNoUserCondominium):
		return CategoryValidation
	default:
		return CategoryTransient
	}
}

// Retryable reports whether err may succeed when the operation is repeated.
func Retryable(err error) bool {
	return err != nil && Classify(err) == CategoryTransient
}
