package players

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/auth"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/repository"
	"github.com/aimd54/rocase/pkg/logger"
	"github.com/aimd54/rocase/test/testdb"
)

func setup(t *testing.T) (*Service, *repository.Store) {
	t.Helper()
	store := testdb.NewStore(t)
	return NewService(store, logger.Nop()), store
}

func TestUpsert(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	officer := auth.ActorFromUser(testdb.CreateUser(t, store, "officer", models.RoleOfficer), "")

	p, err := svc.Upsert(ctx, officer, UpsertInput{RobloxUserID: 123, RobloxUsername: " First "})
	require.NoError(t, err)
	assert.Equal(t, "First", p.RobloxUsername)

	again, err := svc.Upsert(ctx, officer, UpsertInput{RobloxUserID: 123, RobloxUsername: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, "Renamed", again.RobloxUsername)

	entries, err := store.Audit.ListByEntity(ctx, models.EntityPlayer, p.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestUpsert_Errors(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	officer := auth.ActorFromUser(testdb.CreateUser(t, store, "officer", models.RoleOfficer), "")
	judge := auth.ActorFromUser(testdb.CreateUser(t, store, "judge", models.RoleJudge), "")

	_, err := svc.Upsert(ctx, judge, UpsertInput{RobloxUserID: 1, RobloxUsername: "x"})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.Upsert(ctx, officer, UpsertInput{RobloxUserID: 0, RobloxUsername: "x"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Upsert(ctx, officer, UpsertInput{RobloxUserID: 1, RobloxUsername: " "})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestLookups(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	member := auth.ActorFromUser(testdb.CreateUser(t, store, "member", models.RoleMember), "")
	p := testdb.CreatePlayer(t, store, 777, "Someone")

	got, err := svc.GetByID(ctx, member, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(777), got.RobloxUserID)

	got, err = svc.GetByRobloxID(ctx, member, 777)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.GetByID(ctx, member, 999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.GetByRobloxID(ctx, member, 1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestStatsAndTopOffenders(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	member := auth.ActorFromUser(testdb.CreateUser(t, store, "member", models.RoleMember), "")

	repeat := testdb.CreatePlayer(t, store, 1, "Repeat")
	once := testdb.CreatePlayer(t, store, 2, "Once")
	testdb.CreatePlayer(t, store, 3, "Clean")

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Players.IncrementCounter(ctx, repeat.ID, models.CounterTotalCases))
	}
	require.NoError(t, store.Players.IncrementCounter(ctx, repeat.ID, models.CounterConvictions))
	require.NoError(t, store.Players.IncrementCounter(ctx, once.ID, models.CounterTotalCases))

	stats, err := svc.Stats(ctx, member, repeat.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Player.TotalCases)
	assert.InDelta(t, 25.0, stats.ConvictionRate, 0.001)

	top, err := svc.TopOffenders(ctx, member, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, repeat.ID, top[0].ID)
	assert.Equal(t, once.ID, top[1].ID)

	all, err := svc.TopOffenders(ctx, member, 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(all), defaultTopOffenders)
}
