package service

import (
	"github.com/shopspring/decimal"
)

// FeeSchedule sizes processor charges. The processor takes a flat fee plus
// a percentage of every charge, and refuses charges below a minimum, so a
// net shortfall must be grossed up before it is pulled from a funding
// source.
type FeeSchedule struct {
	// Fixed is the flat per-charge component, in currency units
	Fixed decimal.Decimal

	// Multiplier is one plus the percentage rate, e.g. 1.039 for 3.9%
	Multiplier decimal.Decimal

	// Minimum is the smallest charge the processor accepts
	Minimum decimal.Decimal
}

// DefaultFeeSchedule returns the production fee schedule: $0.30 + 3.9% per
// charge, $0.50 minimum.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		Fixed:      decimal.RequireFromString("0.30"),
		Multiplier: decimal.RequireFromString("1.039"),
		Minimum:    decimal.RequireFromString("0.50"),
	}
}

// Assess computes the gross charge and fee that cover a net shortfall.
//
// The gross is the fee formula applied to the shortfall, rounded up to the
// cent, so gross - fee == shortfall holds exactly whenever the result
// clears the processor's minimum. A gross below the minimum is raised to
// it with the fee unchanged; the difference lands in the participant's
// balance as extra credit rather than being kept.
//
// All arithmetic is exact decimal and deterministic for identical inputs.
func (f FeeSchedule) Assess(shortfall decimal.Decimal) (gross, fee decimal.Decimal) {
	gross = shortfall.Add(f.Fixed).Mul(f.Multiplier).RoundUp(2)
	fee = gross.Sub(shortfall)
	if gross.LessThan(f.Minimum) {
		gross = f.Minimum
	}
	return gross, fee
}
