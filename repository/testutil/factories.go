package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"tipjar/database"
	"tipjar/models"
)

// CreateTestParticipant creates a claimed participant with a zero balance
func CreateTestParticipant(id string) *models.Participant {
	now := time.Now().UTC()
	claimed := now.Add(-24 * time.Hour)
	return &models.Participant{
		ID:        id,
		Balance:   decimal.Zero,
		ClaimedAt: &claimed,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestParticipantWithBalance creates a claimed participant with a specific balance
func CreateTestParticipantWithBalance(id string, balance string) *models.Participant {
	participant := CreateTestParticipant(id)
	participant.Balance = decimal.RequireFromString(balance)
	return participant
}

// CreateUnclaimedParticipant creates a participant who has never claimed
// their account
func CreateUnclaimedParticipant(id string) *models.Participant {
	participant := CreateTestParticipant(id)
	participant.ClaimedAt = nil
	return participant
}

// SeedParticipants inserts the given participants in a single transaction
func SeedParticipants(t *testing.T, db *database.DB, participants ...*models.Participant) {
	t.Helper()
	ctx := context.Background()

	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, p := range participants {
			_, err := tx.Exec(ctx, `
				INSERT INTO participants (id, balance, pending, funding_account_uri, claimed_time, last_charge_result)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, p.ID, p.Balance, p.Pending, p.FundingAccountURI, p.ClaimedAt, p.LastChargeResult)
			if err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

// SeedTip inserts a tip row directly
func SeedTip(t *testing.T, db *database.DB, tipper, tippee, amount string) {
	t.Helper()
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO tips (tipper, tippee, amount)
		VALUES ($1, $2, $3)
	`, tipper, tippee, decimal.RequireFromString(amount))
	require.NoError(t, err)
}
