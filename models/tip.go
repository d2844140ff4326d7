package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tip is a pledge from one participant to another. Tips are immutable:
// changing a pledge inserts a newer row that supersedes the old one, and
// settlement only ever sees the latest row per tipper/tippee pair.
type Tip struct {
	ID        int64           `db:"id"`
	Tipper    string          `db:"tipper"`
	Tippee    string          `db:"tippee"`
	Amount    decimal.Decimal `db:"amount"`
	CreatedAt time.Time       `db:"ctime"`

	// TippeeClaimedAt is the tippee's account claim time, joined in when
	// tips are fetched for settlement. Nil means the tippee has never
	// claimed their account.
	TippeeClaimedAt *time.Time `db:"claimed_time"`
}

// NewTip creates a tip, rejecting invalid amounts at construction time.
func NewTip(tipper, tippee string, amount decimal.Decimal) (*Tip, error) {
	if tipper == "" || tippee == "" {
		return nil, fmt.Errorf("tip requires both a tipper and a tippee")
	}
	if tipper == tippee {
		return nil, fmt.Errorf("cannot tip yourself")
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("tip amount must not be negative: %s", amount)
	}
	return &Tip{
		Tipper: tipper,
		Tippee: tippee,
		Amount: amount,
	}, nil
}

// EligibleAt reports whether the tip participates in a payday that started
// at the given time. A tip is eligible only if its amount is positive and
// the tippee claimed their account at or before the payday started; claims
// made mid-run are deferred to the next cycle.
func (t *Tip) EligibleAt(paydayStart time.Time) bool {
	if !t.Amount.IsPositive() {
		return false
	}
	if t.TippeeClaimedAt == nil {
		return false
	}
	return !t.TippeeClaimedAt.After(paydayStart)
}
