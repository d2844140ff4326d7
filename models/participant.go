package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Participant represents a member of the platform with a spendable balance.
// Participants are created by the web surface; the settlement engine only
// reads and mutates them.
type Participant struct {
	ID                string              `db:"id"`
	Balance           decimal.Decimal     `db:"balance"`
	Pending           decimal.NullDecimal `db:"pending"`
	FundingAccountURI *string             `db:"funding_account_uri"`
	ClaimedAt         *time.Time          `db:"claimed_time"`
	LastChargeResult  *string             `db:"last_charge_result"`
	CreatedAt         time.Time           `db:"created_at"`
	UpdatedAt         time.Time           `db:"updated_at"`
}

// Claimed reports whether the participant has claimed their account.
// Unclaimed participants are excluded from settlement entirely.
func (p *Participant) Claimed() bool {
	return p.ClaimedAt != nil
}

// HasFundingAccount reports whether a processor funding source is linked.
func (p *Participant) HasFundingAccount() bool {
	return p.FundingAccountURI != nil && *p.FundingAccountURI != ""
}

// Shortfall returns the amount a processor charge must cover so the
// participant can fund the given total of outgoing tips. Never negative:
// a surplus is not charged for.
func (p *Participant) Shortfall(totalTips decimal.Decimal) decimal.Decimal {
	short := totalTips.Sub(p.Balance)
	if short.IsNegative() {
		return decimal.Zero
	}
	return short
}
