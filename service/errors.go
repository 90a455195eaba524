package service

import (
	"errors"

	"vbtix/credential"
)

// Domain errors are sentinels so callers can branch with errors.Is instead of
// matching strings. Anything else coming out of a service is infrastructure
// (store unavailable, transaction conflict) and safe to retry.
var (
	ErrOrderNotPending = errors.New("order is not eligible for this transition")
	ErrNotEnoughStock  = errors.New("not enough tickets remaining")
	ErrAlreadyRefunded = errors.New("order has already been refunded")

	ErrAlreadyUsed = errors.New("ticket has already been used")
	ErrNotActive   = errors.New("ticket is not active")

	ErrScanLimitExceeded = errors.New("wristband scan limit exceeded")
	ErrNotYetValid       = errors.New("wristband is not yet valid")
	ErrExpired           = errors.New("wristband has expired")
	ErrRevoked           = errors.New("wristband has been revoked")

	ErrWrongEvent             = errors.New("credential does not belong to an event owned by this organizer")
	ErrUnrecognizedCredential = errors.New("scanned string is not a recognized credential")
)

// IsDomainError reports whether err is a business-rule violation rather than
// an infrastructure failure. Domain errors are never retried automatically.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrOrderNotPending, ErrNotEnoughStock, ErrAlreadyRefunded,
		ErrAlreadyUsed, ErrNotActive,
		ErrScanLimitExceeded, ErrNotYetValid, ErrExpired, ErrRevoked,
		ErrWrongEvent, ErrUnrecognizedCredential,
		credential.ErrMalformedCredential, credential.ErrChecksumMismatch,
		credential.ErrCredentialExpired, credential.ErrKindMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ReasonMessage turns a scan failure into the short text venue staff see on
// the scanner screen.
func ReasonMessage(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrOrderNotPending):
		return "order not eligible"
	case errors.Is(err, ErrNotEnoughStock):
		return "not enough stock"
	case errors.Is(err, ErrAlreadyRefunded):
		return "already refunded"
	case errors.Is(err, ErrAlreadyUsed):
		return "already used"
	case errors.Is(err, ErrNotActive):
		return "ticket not active"
	case errors.Is(err, ErrScanLimitExceeded):
		return "scan limit reached"
	case errors.Is(err, ErrNotYetValid):
		return "not yet valid"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrRevoked):
		return "revoked"
	case errors.Is(err, ErrWrongEvent):
		return "wrong event"
	case errors.Is(err, credential.ErrCredentialExpired):
		return "credential expired"
	case errors.Is(err, credential.ErrChecksumMismatch):
		return "damaged code"
	case errors.Is(err, credential.ErrKindMismatch):
		return "wrong credential kind"
	case errors.Is(err, credential.ErrMalformedCredential),
		errors.Is(err, ErrUnrecognizedCredential):
		return "unrecognized code"
	default:
		return "scan failed"
	}
}
