package currency

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// errors
var (
	ErrInvalidAmount = errors.New("invalid amount")
)

// decimals of the ledger's native currency
const etherDecimals = 18

var weiPerEther = decimal.New(1, etherDecimals)

// FromWei - decodes a smallest-unit integer value into an exact decimal
// amount of ether. A nil value decodes to zero.
func FromWei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -etherDecimals)
}

// ToWei - encodes a decimal ether amount into its smallest-unit integer
// representation. Fails when the amount carries more precision than the
// currency supports.
func ToWei(amount decimal.Decimal) (*big.Int, error) {
	wei := amount.Mul(weiPerEther)
	if wei.Exponent() < 0 && !wei.Equal(wei.Truncate(0)) {
		return nil, errors.Wrapf(ErrInvalidAmount, "%s has more than %d decimals", amount, etherDecimals)
	}
	return wei.BigInt(), nil
}

// ParseEther - parses a user-entered decimal string and encodes it to wei.
// The string must be a strictly positive decimal.
func ParseEther(s string) (*big.Int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, errors.Wrap(ErrInvalidAmount, "empty")
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidAmount, trimmed)
	}
	if !amount.IsPositive() {
		return nil, errors.Wrapf(ErrInvalidAmount, "%s is not positive", trimmed)
	}
	return ToWei(amount)
}

// FormatBalance - renders an amount for the balance widget, truncated to two
// decimals without rounding up.
func FormatBalance(amount decimal.Decimal) string {
	return amount.Truncate(2).String()
}
