// Package pricing recomputes stay totals from the listing's nightly rate.
// Client-submitted totals are never trusted; the recomputation here is the
// authoritative value and the submitted amount is only checked against it.
package pricing

import (
	"errors"

	"globalstay/internal/domain/shared/daterange"
	"globalstay/internal/domain/shared/money"
)

var (
	ErrNoNights = errors.New("pricing: stay must cover at least one night")
)

// ExpectedTotal derives the stay total as nightly rate times night count.
// The range must already satisfy the checkout-after-checkin invariant.
func ExpectedTotal(nightly money.Money, dr daterange.DateRange) (money.Money, error) {
	nights := dr.Nights()
	if nights <= 0 {
		return money.Money{}, ErrNoNights
	}
	return nightly.Multiply(int64(nights)), nil
}

// Verify reports whether a submitted total matches the recomputed one.
// Comparison is exact; there is no rounding tolerance.
func Verify(submitted, expected money.Money) bool {
	return submitted.Equal(expected)
}
