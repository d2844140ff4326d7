package repository

import (
	"context"
	"fmt"

	"tipjar/database"
	"tipjar/models"
)

// ExchangeRepository implements the ExchangeRepository interface
type ExchangeRepository struct {
	q queryable
}

// NewExchangeRepository creates a new exchange repository
func NewExchangeRepository(db *database.DB) *ExchangeRepository {
	return &ExchangeRepository{q: db.Pool}
}

// newExchangeRepositoryWithTx creates a new exchange repository with a transaction
func newExchangeRepositoryWithTx(tx queryable) *ExchangeRepository {
	return &ExchangeRepository{q: tx}
}

// Record appends an exchange row. Exchanges are append-only: there is no
// update or delete path.
func (r *ExchangeRepository) Record(ctx context.Context, exchange *models.Exchange) error {
	query := `
		INSERT INTO exchanges (participant_id, amount, fee)
		VALUES ($1, $2, $3)
		RETURNING id, recorded_at
	`

	err := r.q.QueryRow(ctx, query,
		exchange.ParticipantID,
		exchange.Amount,
		exchange.Fee,
	).Scan(&exchange.ID, &exchange.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to record exchange for participant %s: %w", exchange.ParticipantID, err)
	}

	return nil
}

// GetByParticipant returns all exchanges for a participant, oldest first
func (r *ExchangeRepository) GetByParticipant(ctx context.Context, participantID string) ([]*models.Exchange, error) {
	query := `
		SELECT id, participant_id, amount, fee, recorded_at
		FROM exchanges
		WHERE participant_id = $1
		ORDER BY recorded_at
	`

	rows, err := r.q.Query(ctx, query, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchanges for participant %s: %w", participantID, err)
	}
	defer rows.Close()

	var exchanges []*models.Exchange
	for rows.Next() {
		var exchange models.Exchange
		err := rows.Scan(
			&exchange.ID,
			&exchange.ParticipantID,
			&exchange.Amount,
			&exchange.Fee,
			&exchange.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		exchanges = append(exchanges, &exchange)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exchanges: %w", err)
	}

	return exchanges, nil
}
