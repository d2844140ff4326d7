package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tipjar/models"
	"tipjar/repository/testutil"
)

func TestTipRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTipRepository(testDB.DB)
	ctx := context.Background()

	testutil.SeedParticipants(t, testDB.DB,
		testutil.CreateTestParticipant("alice"),
		testutil.CreateTestParticipant("bob"),
	)

	tip, err := models.NewTip("alice", "bob", decimal.RequireFromString("1.50"))
	require.NoError(t, err)

	err = repo.Create(ctx, tip)
	require.NoError(t, err)
	assert.NotZero(t, tip.ID)
	assert.False(t, tip.CreatedAt.IsZero())
}

func TestTipRepository_ActiveTipsAndTotal(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTipRepository(testDB.DB)
	ctx := context.Background()

	testutil.SeedParticipants(t, testDB.DB,
		testutil.CreateTestParticipant("alice"),
		testutil.CreateTestParticipant("bob"),
		testutil.CreateTestParticipant("carl"),
		testutil.CreateUnclaimedParticipant("ghost"),
	)

	t.Run("no tips", func(t *testing.T) {
		tips, total, err := repo.ActiveTipsAndTotal(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, tips)
		assert.True(t, total.IsZero())
	})

	t.Run("latest pledge per tippee wins", func(t *testing.T) {
		testutil.SeedTip(t, testDB.DB, "alice", "bob", "1.00")
		testutil.SeedTip(t, testDB.DB, "alice", "bob", "2.50") // supersedes the first
		testutil.SeedTip(t, testDB.DB, "alice", "carl", "0.75")

		tips, total, err := repo.ActiveTipsAndTotal(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, tips, 2)
		assert.True(t, total.Equal(decimal.RequireFromString("3.25")), "total = %s", total)

		byTippee := map[string]decimal.Decimal{}
		for _, tip := range tips {
			byTippee[tip.Tippee] = tip.Amount
		}
		assert.True(t, byTippee["bob"].Equal(decimal.RequireFromString("2.50")))
		assert.True(t, byTippee["carl"].Equal(decimal.RequireFromString("0.75")))
	})

	t.Run("zeroed pledge drops out entirely", func(t *testing.T) {
		testutil.SeedTip(t, testDB.DB, "alice", "carl", "0.00")

		tips, total, err := repo.ActiveTipsAndTotal(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, tips, 1)
		assert.Equal(t, "bob", tips[0].Tippee)
		assert.True(t, total.Equal(decimal.RequireFromString("2.50")), "total = %s", total)
	})

	t.Run("tippee claim time is joined in", func(t *testing.T) {
		testutil.SeedTip(t, testDB.DB, "alice", "ghost", "1.00")

		tips, _, err := repo.ActiveTipsAndTotal(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, tips, 2)

		for _, tip := range tips {
			switch tip.Tippee {
			case "bob":
				assert.NotNil(t, tip.TippeeClaimedAt)
			case "ghost":
				assert.Nil(t, tip.TippeeClaimedAt)
			}
		}
	})

	t.Run("other tippers are not included", func(t *testing.T) {
		testutil.SeedTip(t, testDB.DB, "carl", "bob", "9.99")

		_, total, err := repo.ActiveTipsAndTotal(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("3.50")), "total = %s", total)
	})
}
