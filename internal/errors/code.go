package errors

import "github.com/go-kratos/kratos/v2/errors"

// Business error reasons. Matching is done with errors.Is against the
// prototypes below, so data and biz layers must return these (wrapped is fine).
const (
	// ReasonNoBalance no tier is available to fund a reading
	ReasonNoBalance = "NO_BALANCE"
	// ReasonBalanceNotFound balance row missing for the user
	ReasonBalanceNotFound = "BALANCE_NOT_FOUND"
	// ReasonConsumeLockFailed could not acquire the per-user consumption lock
	ReasonConsumeLockFailed = "CONSUME_LOCK_FAILED"
	// ReasonPaymentNotFound payment intent missing for the gateway id
	ReasonPaymentNotFound = "PAYMENT_NOT_FOUND"
	// ReasonUnknownPackage package id not in the catalog
	ReasonUnknownPackage = "UNKNOWN_PACKAGE"
	// ReasonGatewayUnavailable gateway call failed or returned non-2xx
	ReasonGatewayUnavailable = "GATEWAY_UNAVAILABLE"
	// ReasonGeneratorUnavailable interpretation call failed or returned non-2xx
	ReasonGeneratorUnavailable = "GENERATOR_UNAVAILABLE"
	// ReasonInvalidEmail email failed validation
	ReasonInvalidEmail = "INVALID_EMAIL"
	// ReasonInvalidSelection card selection missing or wrong cardinality
	ReasonInvalidSelection = "INVALID_SELECTION"
)

var (
	// ErrNoBalance is returned by the consume path when no tier is available.
	ErrNoBalance = errors.Forbidden(ReasonNoBalance, "no readings available")
	// ErrBalanceNotFound is returned when the balance row is missing.
	ErrBalanceNotFound = errors.NotFound(ReasonBalanceNotFound, "balance not found")
	// ErrConsumeLockFailed is returned when the consumption mutex cannot be taken.
	ErrConsumeLockFailed = errors.InternalServer(ReasonConsumeLockFailed, "consume lock failed")
	// ErrPaymentNotFound is returned when a gateway id has no local intent.
	ErrPaymentNotFound = errors.NotFound(ReasonPaymentNotFound, "payment not found")
	// ErrUnknownPackage is returned for package ids outside the catalog.
	ErrUnknownPackage = errors.BadRequest(ReasonUnknownPackage, "unknown package")
	// ErrGatewayUnavailable is returned on payment gateway failures.
	ErrGatewayUnavailable = errors.ServiceUnavailable(ReasonGatewayUnavailable, "payment gateway unavailable")
	// ErrGeneratorUnavailable is returned on interpretation generator failures.
	ErrGeneratorUnavailable = errors.ServiceUnavailable(ReasonGeneratorUnavailable, "interpretation generator unavailable")
	// ErrInvalidEmail is returned for emails that fail validation.
	ErrInvalidEmail = errors.BadRequest(ReasonInvalidEmail, "invalid email")
	// ErrInvalidSelection is returned for malformed card selections.
	ErrInvalidSelection = errors.BadRequest(ReasonInvalidSelection, "invalid card selection")
)
