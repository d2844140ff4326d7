package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"tipjar/database"
	"tipjar/models"
)

// ParticipantRepository implements the ParticipantRepository interface
type ParticipantRepository struct {
	q queryable
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *database.DB) *ParticipantRepository {
	return &ParticipantRepository{q: db.Pool}
}

// newParticipantRepositoryWithTx creates a new participant repository with a transaction
func newParticipantRepositoryWithTx(tx queryable) *ParticipantRepository {
	return &ParticipantRepository{q: tx}
}

const participantColumns = `
	id, balance, pending, funding_account_uri, claimed_time,
	last_charge_result, created_at, updated_at
`

func scanParticipant(row pgx.Row) (*models.Participant, error) {
	var p models.Participant
	err := row.Scan(
		&p.ID,
		&p.Balance,
		&p.Pending,
		&p.FundingAccountURI,
		&p.ClaimedAt,
		&p.LastChargeResult,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a participant by their username
func (r *ParticipantRepository) GetByID(ctx context.Context, id string) (*models.Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM participants
		WHERE id = $1
	`

	participant, err := scanParticipant(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant %s: %w", id, err)
	}

	return participant, nil
}

// ListClaimed returns all participants who have claimed their account
func (r *ParticipantRepository) ListClaimed(ctx context.Context) ([]*models.Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM participants
		WHERE claimed_time IS NOT NULL
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list claimed participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, participant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

// ZeroPending resets every participant's pending accumulator to zero
func (r *ParticipantRepository) ZeroPending(ctx context.Context) error {
	query := `
		UPDATE participants
		SET pending = 0, updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to zero out the pending column: %w", err)
	}

	return nil
}

// CreditBalance adds to a participant's spendable balance atomically
func (r *ParticipantRepository) CreditBalance(ctx context.Context, id string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("credit amount must be positive")
	}

	query := `
		UPDATE participants
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to credit balance for participant %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("participant %s not found", id)
	}

	return nil
}

// DebitBalance deducts from a participant's balance atomically. Returns
// false without mutating anything when the balance is too low or the
// participant does not exist.
func (r *ParticipantRepository) DebitBalance(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	if !amount.IsPositive() {
		return false, fmt.Errorf("debit amount must be positive")
	}

	query := `
		UPDATE participants
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return false, fmt.Errorf("failed to debit balance for participant %s: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// CreditPending adds to a participant's pending accumulator atomically
func (r *ParticipantRepository) CreditPending(ctx context.Context, id string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("pending credit amount must be positive")
	}

	query := `
		UPDATE participants
		SET pending = COALESCE(pending, 0) + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to credit pending for participant %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("participant %s not found", id)
	}

	return nil
}

// SetLastChargeResult records the outcome of the most recent processor charge
func (r *ParticipantRepository) SetLastChargeResult(ctx context.Context, id string, lastChargeResult string) error {
	query := `
		UPDATE participants
		SET last_charge_result = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, lastChargeResult, id)
	if err != nil {
		return fmt.Errorf("failed to set last charge result for participant %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("participant %s not found", id)
	}

	return nil
}

// SetFundingAccount links or unlinks a processor funding source and resets
// the last charge result
func (r *ParticipantRepository) SetFundingAccount(ctx context.Context, id string, fundingURI *string) error {
	query := `
		UPDATE participants
		SET funding_account_uri = $1, last_charge_result = NULL, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, fundingURI, id)
	if err != nil {
		return fmt.Errorf("failed to set funding account for participant %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("participant %s not found", id)
	}

	return nil
}
