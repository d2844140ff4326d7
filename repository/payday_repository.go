package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tipjar/database"
	"tipjar/models"
	"tipjar/service"
)

// PaydayRepository implements the PaydayRepository interface
type PaydayRepository struct {
	q queryable
}

// NewPaydayRepository creates a new payday repository
func NewPaydayRepository(db *database.DB) *PaydayRepository {
	return &PaydayRepository{q: db.Pool}
}

// newPaydayRepositoryWithTx creates a new payday repository with a transaction
func newPaydayRepositoryWithTx(tx queryable) *PaydayRepository {
	return &PaydayRepository{q: tx}
}

const paydayColumns = `
	id, ts_start, ts_end, nparticipants, ntippers, ntips,
	nexchanges, ncc_failing, ncc_missing, created_at
`

func scanPayday(row pgx.Row) (*models.Payday, error) {
	var p models.Payday
	err := row.Scan(
		&p.ID,
		&p.StartedAt,
		&p.EndedAt,
		&p.NParticipants,
		&p.NTippers,
		&p.NTips,
		&p.NExchanges,
		&p.NCCFailing,
		&p.NCCMissing,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOpen returns the payday currently in progress, or nil if none.
// Finding more than one open row is a data-integrity fault and is reported
// as service.ErrMultipleOpenPaydays rather than silently resolved.
func (r *PaydayRepository) GetOpen(ctx context.Context) (*models.Payday, error) {
	query := `
		SELECT ` + paydayColumns + `
		FROM paydays
		WHERE ts_end IS NULL
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get open payday: %w", err)
	}
	defer rows.Close()

	var open []*models.Payday
	for rows.Next() {
		payday, err := scanPayday(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payday: %w", err)
		}
		open = append(open, payday)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate paydays: %w", err)
	}

	switch len(open) {
	case 0:
		return nil, nil
	case 1:
		return open[0], nil
	default:
		return nil, fmt.Errorf("%w: got %d", service.ErrMultipleOpenPaydays, len(open))
	}
}

// GetByID retrieves a payday by its ID
func (r *PaydayRepository) GetByID(ctx context.Context, id int64) (*models.Payday, error) {
	query := `
		SELECT ` + paydayColumns + `
		FROM paydays
		WHERE id = $1
	`

	payday, err := scanPayday(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payday %d: %w", id, err)
	}

	return payday, nil
}

// Create starts a new payday with zeroed counters
func (r *PaydayRepository) Create(ctx context.Context) (*models.Payday, error) {
	query := `
		INSERT INTO paydays DEFAULT VALUES
		RETURNING ` + paydayColumns + `
	`

	payday, err := scanPayday(r.q.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to create payday: %w", err)
	}

	return payday, nil
}

// IncrementCounters applies a counter delta atomically
func (r *PaydayRepository) IncrementCounters(ctx context.Context, paydayID int64, delta models.PaydayCounters) error {
	if delta.IsZero() {
		return nil
	}

	query := `
		UPDATE paydays
		SET nparticipants = nparticipants + $1,
		    ntippers = ntippers + $2,
		    ntips = ntips + $3,
		    nexchanges = nexchanges + $4,
		    ncc_failing = ncc_failing + $5,
		    ncc_missing = ncc_missing + $6
		WHERE id = $7
	`

	result, err := r.q.Exec(ctx, query,
		delta.Participants,
		delta.Tippers,
		delta.Tips,
		delta.Exchanges,
		delta.CCFailing,
		delta.CCMissing,
		paydayID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment counters for payday %d: %w", paydayID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", service.ErrPaydayNotFound, paydayID)
	}

	return nil
}

// Finalize stamps the payday's end time. A payday that already has an end
// time is left untouched and reported as service.ErrAlreadyFinalized.
func (r *PaydayRepository) Finalize(ctx context.Context, paydayID int64) error {
	query := `
		UPDATE paydays
		SET ts_end = NOW()
		WHERE id = $1 AND ts_end IS NULL
	`

	result, err := r.q.Exec(ctx, query, paydayID)
	if err != nil {
		return fmt.Errorf("failed to finalize payday %d: %w", paydayID, err)
	}

	if result.RowsAffected() == 0 {
		payday, err := r.GetByID(ctx, paydayID)
		if err != nil {
			return fmt.Errorf("failed to check payday %d: %w", paydayID, err)
		}
		if payday == nil {
			return fmt.Errorf("%w: id %d", service.ErrPaydayNotFound, paydayID)
		}
		return service.ErrAlreadyFinalized
	}

	return nil
}
