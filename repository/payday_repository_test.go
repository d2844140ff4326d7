package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tipjar/models"
	"tipjar/repository/testutil"
	"tipjar/service"
)

func TestPaydayRepository_Lifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPaydayRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no open payday initially", func(t *testing.T) {
		payday, err := repo.GetOpen(ctx)
		require.NoError(t, err)
		assert.Nil(t, payday)
	})

	var paydayID int64

	t.Run("create opens a run", func(t *testing.T) {
		payday, err := repo.Create(ctx)
		require.NoError(t, err)
		require.NotNil(t, payday)
		assert.True(t, payday.Open())
		assert.False(t, payday.StartedAt.IsZero())
		assert.Equal(t, 0, payday.NParticipants)
		paydayID = payday.ID
	})

	t.Run("open run is found again", func(t *testing.T) {
		payday, err := repo.GetOpen(ctx)
		require.NoError(t, err)
		require.NotNil(t, payday)
		assert.Equal(t, paydayID, payday.ID)
	})

	t.Run("second concurrent run is refused by the schema", func(t *testing.T) {
		_, err := repo.Create(ctx)
		assert.Error(t, err)
	})

	t.Run("counters accumulate", func(t *testing.T) {
		err := repo.IncrementCounters(ctx, paydayID, models.PaydayCounters{
			Participants: 1,
			Tippers:      1,
			Tips:         3,
		})
		require.NoError(t, err)

		err = repo.IncrementCounters(ctx, paydayID, models.PaydayCounters{
			Participants: 1,
			Exchanges:    1,
			CCFailing:    1,
		})
		require.NoError(t, err)

		payday, err := repo.GetByID(ctx, paydayID)
		require.NoError(t, err)
		assert.Equal(t, 2, payday.NParticipants)
		assert.Equal(t, 1, payday.NTippers)
		assert.Equal(t, 3, payday.NTips)
		assert.Equal(t, 1, payday.NExchanges)
		assert.Equal(t, 1, payday.NCCFailing)
		assert.Equal(t, 0, payday.NCCMissing)
	})

	t.Run("zero delta is a no-op", func(t *testing.T) {
		err := repo.IncrementCounters(ctx, paydayID, models.PaydayCounters{})
		require.NoError(t, err)
	})

	t.Run("finalize closes the run", func(t *testing.T) {
		err := repo.Finalize(ctx, paydayID)
		require.NoError(t, err)

		payday, err := repo.GetByID(ctx, paydayID)
		require.NoError(t, err)
		assert.False(t, payday.Open())

		open, err := repo.GetOpen(ctx)
		require.NoError(t, err)
		assert.Nil(t, open)
	})

	t.Run("finalize twice is refused", func(t *testing.T) {
		err := repo.Finalize(ctx, paydayID)
		assert.ErrorIs(t, err, service.ErrAlreadyFinalized)
	})

	t.Run("finalize unknown payday", func(t *testing.T) {
		err := repo.Finalize(ctx, 99999)
		assert.ErrorIs(t, err, service.ErrPaydayNotFound)
	})

	t.Run("next run can start after the last one closed", func(t *testing.T) {
		payday, err := repo.Create(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, paydayID, payday.ID)
	})
}

func TestPaydayRepository_GetByID_NotFound(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPaydayRepository(testDB.DB)

	payday, err := repo.GetByID(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, payday)
}
