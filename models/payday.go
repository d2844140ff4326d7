package models

import (
	"time"
)

// Payday represents one settlement run. A nil EndedAt marks the run as
// in progress; at most one such row may exist at a time, and it is the
// resume point after a crash mid-run.
type Payday struct {
	ID            int64      `db:"id"`
	StartedAt     time.Time  `db:"ts_start"`
	EndedAt       *time.Time `db:"ts_end"`
	NParticipants int        `db:"nparticipants"`
	NTippers      int        `db:"ntippers"`
	NTips         int        `db:"ntips"`
	NExchanges    int        `db:"nexchanges"`
	NCCFailing    int        `db:"ncc_failing"`
	NCCMissing    int        `db:"ncc_missing"`
	CreatedAt     time.Time  `db:"created_at"`
}

// Open reports whether the run is still in progress.
func (p *Payday) Open() bool {
	return p.EndedAt == nil
}

// PaydayCounters is a delta applied atomically to a payday's counters.
type PaydayCounters struct {
	Participants int
	Tippers      int
	Tips         int
	Exchanges    int
	CCFailing    int
	CCMissing    int
}

// IsZero reports whether applying the delta would change nothing.
func (c PaydayCounters) IsZero() bool {
	return c == PaydayCounters{}
}
