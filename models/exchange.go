package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Exchange is an append-only ledger line for one completed money movement
// with the external processor. Amount is the gross amount moved; Fee is
// the processor's cut. Exchanges are never mutated or deleted.
type Exchange struct {
	ID            int64           `db:"id"`
	ParticipantID string          `db:"participant_id"`
	Amount        decimal.Decimal `db:"amount"`
	Fee           decimal.Decimal `db:"fee"`
	RecordedAt    time.Time       `db:"recorded_at"`
}
