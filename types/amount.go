// Package types provides common types used across Ledger.
package types

import (
	"fmt"
	"math"
	"strconv"
)

// Amount is a quantity of the ledger's single asset in its smallest unit.
// All arithmetic is integer-only and overflow-checked.
//
// Examples:
//   - Amount(4900) with 2 decimals = 49.00
//   - Amount(100) with 0 decimals = 100
type Amount int64

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool { return a == 0 }

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool { return a > 0 }

// IsNegative returns true if the amount is less than zero.
func (a Amount) IsNegative() bool { return a < 0 }

// Add returns a+other, or ErrAmountOverflow if the sum does not fit in int64.
func (a Amount) Add(other Amount) (Amount, error) {
	if (other > 0 && a > math.MaxInt64-other) || (other < 0 && a < math.MinInt64-other) {
		return 0, fmt.Errorf("%w: %d + %d", ErrAmountOverflow, a, other)
	}
	return a + other, nil
}

// Sub returns a-other clamped at zero. Ledger balances never go negative.
func (a Amount) Sub(other Amount) Amount {
	return max(a-other, 0)
}

// Min returns the smaller of two amounts.
func (a Amount) Min(other Amount) Amount {
	return min(a, other)
}

// Int64 returns the raw smallest-unit value.
func (a Amount) Int64() int64 { return int64(a) }

// FormatMajor renders the amount in major units using the given number of
// decimal places: Amount(4900).FormatMajor(2) == "49.00".
func (a Amount) FormatMajor(decimals int) string {
	if decimals <= 0 {
		return strconv.FormatInt(int64(a), 10)
	}

	divisor := int64(1)
	for range decimals {
		divisor *= 10
	}

	neg := a < 0
	abs := int64(a)
	if neg {
		abs = -abs
	}

	s := fmt.Sprintf("%d.%0*d", abs/divisor, decimals, abs%divisor)
	if neg {
		return "-" + s
	}
	return s
}

// String returns the smallest-unit integer representation.
func (a Amount) String() string {
	return strconv.FormatInt(int64(a), 10)
}

// Sum adds amounts with overflow checking.
func Sum(values ...Amount) (Amount, error) {
	var total Amount
	for _, v := range values {
		var err error
		if total, err = total.Add(v); err != nil {
			return 0, err
		}
	}
	return total, nil
}
