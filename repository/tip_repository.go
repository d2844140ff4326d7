package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"tipjar/database"
	"tipjar/models"
)

// TipRepository implements the TipRepository interface
type TipRepository struct {
	q queryable
}

// NewTipRepository creates a new tip repository
func NewTipRepository(db *database.DB) *TipRepository {
	return &TipRepository{q: db.Pool}
}

// newTipRepositoryWithTx creates a new tip repository with a transaction
func newTipRepositoryWithTx(tx queryable) *TipRepository {
	return &TipRepository{q: tx}
}

// Create records a new tip pledge
func (r *TipRepository) Create(ctx context.Context, tip *models.Tip) error {
	query := `
		INSERT INTO tips (tipper, tippee, amount)
		VALUES ($1, $2, $3)
		RETURNING id, ctime
	`

	err := r.q.QueryRow(ctx, query, tip.Tipper, tip.Tippee, tip.Amount).Scan(
		&tip.ID,
		&tip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tip from %s to %s: %w", tip.Tipper, tip.Tippee, err)
	}

	return nil
}

// ActiveTipsAndTotal returns the newest positive tip per tippee that the
// given participant gives, with the tippee's claim time joined in, plus the
// total of those amounts. A newer tip supersedes older ones for the same
// pair, so only the latest row per tippee participates.
func (r *TipRepository) ActiveTipsAndTotal(ctx context.Context, tipper string) ([]*models.Tip, decimal.Decimal, error) {
	query := `
		SELECT t.id, t.ctime, t.tipper, t.tippee, t.amount, p.claimed_time
		FROM (
			SELECT DISTINCT ON (tippee) id, ctime, tipper, tippee, amount
			FROM tips
			WHERE tipper = $1
			ORDER BY tippee, ctime DESC, id DESC
		) t
		JOIN participants p ON p.id = t.tippee
		WHERE t.amount > 0
	`

	rows, err := r.q.Query(ctx, query, tipper)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to get tips for %s: %w", tipper, err)
	}
	defer rows.Close()

	var tips []*models.Tip
	total := decimal.Zero
	for rows.Next() {
		var tip models.Tip
		err := rows.Scan(
			&tip.ID,
			&tip.CreatedAt,
			&tip.Tipper,
			&tip.Tippee,
			&tip.Amount,
			&tip.TippeeClaimedAt,
		)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("failed to scan tip: %w", err)
		}
		tips = append(tips, &tip)
		total = total.Add(tip.Amount)
	}

	if err := rows.Err(); err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to iterate tips: %w", err)
	}

	return tips, total, nil
}
