package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/rocase/internal/models"
)

func TestSequenceRepository_NextIncrements(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSequenceRepository(db)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := repo.Next(ctx, 2026)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	other, err := repo.Next(ctx, 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, other, "each year has its own sequence")
}

func TestSequenceRepository_SeedsFromExistingCases(t *testing.T) {
	db := setupTestDB(t)
	admin := createTestUser(t, db, "admin", models.RoleAdmin)
	player := createTestPlayer(t, db, 555, "Bob")
	createTestCase(t, db, "RC-2026-00004", player, admin)
	createTestCase(t, db, "RC-2026-00009", player, admin)

	got, err := NewSequenceRepository(db).Next(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, 10, got)
}

func TestSequenceRepository_ConcurrentNextIsUnique(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSequenceRepository(db)

	const n = 20
	results := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := repo.Next(context.Background(), 2026)
			assert.NoError(t, err)
			results <- v
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool, n)
	for v := range results {
		assert.False(t, seen[v], "sequence %d allocated twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, n)
}
