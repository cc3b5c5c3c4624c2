package domain

import "errors"

var (
	ErrValidation          = errors.New("invalid wipe record")
	ErrPolicyDenied        = errors.New("policy denied certification")
	ErrNotFound            = errors.New("not found")
	ErrLedgerUnavailable   = errors.New("ledger unavailable")
	ErrMissingCredential   = errors.New("missing credential")
	ErrEstimationFailed    = errors.New("cost estimation failed")
	ErrInsufficientFunds   = errors.New("insufficient balance")
	ErrConfirmationTimeout = errors.New("confirmation timed out")
	ErrTransactionReverted = errors.New("transaction reverted")
)

const (
	ErrorCodeValidation   = "VALIDATION"
	ErrorCodePolicy       = "POLICY_DENIED"
	ErrorCodeRender       = "RENDER"
	ErrorCodeLedger       = "LEDGER_UNAVAILABLE"
	ErrorCodeCredential   = "MISSING_CREDENTIAL"
	ErrorCodeEstimation   = "ESTIMATION_FAILED"
	ErrorCodeInsufficient = "INSUFFICIENT_FUNDS"
	ErrorCodeTimeout      = "CONFIRMATION_TIMEOUT"
	ErrorCodeReverted     = "TRANSACTION_REVERTED"
	ErrorCodeUnexpected   = "UNEXPECTED"
)

// ErrorCodeFor maps a pipeline error to its stable code for persistence and
// API payloads.
func ErrorCodeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return ErrorCodeValidation
	case errors.Is(err, ErrPolicyDenied):
		return ErrorCodePolicy
	case errors.Is(err, ErrLedgerUnavailable):
		return ErrorCodeLedger
	case errors.Is(err, ErrMissingCredential):
		return ErrorCodeCredential
	case errors.Is(err, ErrEstimationFailed):
		return ErrorCodeEstimation
	case errors.Is(err, ErrInsufficientFunds):
		return ErrorCodeInsufficient
	case errors.Is(err, ErrConfirmationTimeout):
		return ErrorCodeTimeout
	case errors.Is(err, ErrTransactionReverted):
		return ErrorCodeReverted
	default:
		return ErrorCodeUnexpected
	}
}
