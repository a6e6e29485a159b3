package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aimd54/rocase/internal/models"
)

func TestPlayerRepository_UpsertRefreshesUsername(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlayerRepository(db)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, 555, "Bob")
	require.NoError(t, err)
	require.NoError(t, repo.IncrementCounter(ctx, first.ID, models.CounterTotalCases))

	second, err := repo.Upsert(ctx, 555, "Bobby")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Bobby", second.RobloxUsername)
	assert.Equal(t, 1, second.TotalCases, "upsert must not reset counters")
}

func TestPlayerRepository_IncrementCounter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlayerRepository(db)
	ctx := context.Background()
	player := createTestPlayer(t, db, 555, "Bob")

	require.NoError(t, repo.IncrementCounter(ctx, player.ID, models.CounterTotalCases))
	require.NoError(t, repo.IncrementCounter(ctx, player.ID, models.CounterTotalCases))
	require.NoError(t, repo.IncrementCounter(ctx, player.ID, models.CounterConvictions))

	got, err := repo.GetByID(ctx, player.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalCases)
	assert.Equal(t, 1, got.Convictions)
	assert.Equal(t, 0, got.Acquittals)
	assert.InDelta(t, 50.0, got.ConvictionRate(), 0.001)

	assert.Error(t, repo.IncrementCounter(ctx, player.ID, "roblox_username"))
	assert.ErrorIs(t, repo.IncrementCounter(ctx, 999, models.CounterAcquittals), gorm.ErrRecordNotFound)
}

func TestPlayerRepository_TopOffenders(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlayerRepository(db)
	ctx := context.Background()

	bob := createTestPlayer(t, db, 1, "Bob")
	eve := createTestPlayer(t, db, 2, "Eve")
	createTestPlayer(t, db, 3, "Mallory")
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.IncrementCounter(ctx, eve.ID, models.CounterTotalCases))
	}
	require.NoError(t, repo.IncrementCounter(ctx, bob.ID, models.CounterTotalCases))

	top, err := repo.TopOffenders(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Eve", top[0].RobloxUsername)
	assert.Equal(t, "Bob", top[1].RobloxUsername)
}
