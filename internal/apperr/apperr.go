// Package apperr defines the domain error kinds the services return.
// Handlers translate kinds to HTTP statuses with errors.Is; services wrap
// them with context via fmt.Errorf("...: %w", ...).
package apperr

import "errors"

var (
	// ErrUnauthenticated: no acting cashier on the request. This is a wiring
	// problem (missing/invalid token), not a business rejection.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound covers unknown products, sales, sessions and users.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock: requested quantity exceeds available stock.
	// Wrappers name the offending product.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInsufficientPayment: payments fall short of the sale total beyond
	// the rounding tolerance.
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrInvalidDiscount: a line discount exceeds that line's gross value,
	// or the sale discount exceeds the gross total.
	ErrInvalidDiscount = errors.New("invalid discount")

	// ErrAlreadyOpen / ErrAlreadyClosed: register session state conflicts.
	ErrAlreadyOpen   = errors.New("session already open")
	ErrAlreadyClosed = errors.New("session already closed")

	// ErrConflict: lost update under concurrency; the caller may resubmit.
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument: a request value the binding layer cannot catch
	// (non-positive amounts, malformed ids inside bodies). Maps to 400.
	ErrInvalidArgument = errors.New("invalid argument")
)
