package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// minorUnitExponent is the number of fractional digits in the display
// currency. All engine arithmetic happens on int64 minor units; the
// decimal conversions below exist for the presentation and export
// collaborators at the boundary.
const minorUnitExponent = 2

// AmountToDecimal converts an integer minor-unit amount to its decimal
// display value (e.g. 12550 → 125.50).
func AmountToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -minorUnitExponent)
}

// AmountFromDecimal converts a decimal display value to integer minor
// units. Values with sub-minor-unit precision are rejected rather than
// rounded, so no caller can silently lose money.
func AmountFromDecimal(d decimal.Decimal) (int64, error) {
	scaled := d.Mul(decimal.New(1, minorUnitExponent))
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("%w: %s has sub-minor-unit precision", ErrInvalidAmount, d.String())
	}
	return scaled.IntPart(), nil
}
