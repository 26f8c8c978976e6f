package feed

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Record - a single historical tip event observed by the indexing
// collaborator. Immutable once returned; ordering follows on-chain emission
// order.
type Record struct {
	Sender    common.Address
	Name      string
	Message   string
	Amount    *big.Int
	Timestamp int64
	TxHash    common.Hash
}

// Stats - summary derived from a sequence of records. Total is an exact
// decimal amount of ether, never a binary float, so many small tips don't
// accumulate drift.
type Stats struct {
	TipperCount int
	Total       decimal.Decimal
}
