package feed

import (
	"github.com/cryptip/tipjar/internal/currency"
	"github.com/shopspring/decimal"
)

// Aggregate - reduces a sequence of tip records into summary stats. Pure and
// order-independent; an empty or nil sequence yields zero stats. Amounts are
// decoded from their smallest-unit representation before summation.
func Aggregate(records []Record) Stats {
	total := decimal.Zero
	for i := range records {
		total = total.Add(currency.FromWei(records[i].Amount))
	}
	return Stats{
		TipperCount: len(records),
		Total:       total,
	}
}
