package ledger

import (
	"github.com/pkg/errors"
)

// errors
var (
	ErrLedgerRead        = errors.New("ledger read")
	ErrTransactionFailed = errors.New("transaction failed")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("tip amount must be positive")
	ErrNotConnected      = errors.New("wallet not connected")
)

// EIP-1193 code returned by providers when the user declines the prompt.
const userRejectedCode = 4001

// RejectionError - wallet-provider error carrying the numeric user-rejection
// code and the provider's own message.
type RejectionError struct {
	Code    int
	Message string
}

// Error -
func (e *RejectionError) Error() string {
	return e.Message
}

// ErrorCode -
func (e *RejectionError) ErrorCode() int {
	return e.Code
}

// coded - any provider or RPC error exposing a numeric code.
type coded interface {
	error
	ErrorCode() int
}

// IsUserRejection - reports whether the error means the user declined the
// wallet prompt. Such failures are surfaced with the provider's message
// verbatim; everything else gets a generic message.
func IsUserRejection(err error) bool {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode() == userRejectedCode
	}
	return false
}
