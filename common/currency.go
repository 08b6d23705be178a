package common

import (
	"github.com/cockroachdb/apd"
	"github.com/oasisprotocol/oasis-core/go/common/quantity"
)

const (
	// NativeDecimals is the decimal precision of the native currency.
	NativeDecimals uint8 = 8
	// NativeSymbol is the ticker of the native currency.
	NativeSymbol = "PCX"
)

var dollar = quantity.NewFromUint64(100_000_000)

// Dollars returns n whole units of the native currency, in base units.
func Dollars(n uint64) *quantity.Quantity {
	q := quantity.NewFromUint64(n)
	if err := q.Mul(dollar); err != nil {
		// Shouldn't happen as both operands are valid and non-negative.
		panic(err)
	}
	return q
}

// FormatAmount renders an amount of base units as a decimal number of whole
// units with the given precision, e.g. 150000000 with 8 decimals is "1.50000000".
func FormatAmount(q *quantity.Quantity, decimals uint8) string {
	if q == nil {
		return "0"
	}
	return apd.NewWithBigInt(q.ToBigInt(), -int32(decimals)).Text('f')
}
