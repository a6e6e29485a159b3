package audit

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/auth"
	"github.com/aimd54/rocase/internal/metrics"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/internal/repository"
	"github.com/aimd54/rocase/pkg/logger"
	"github.com/aimd54/rocase/test/testdb"
)

func TestRecord(t *testing.T) {
	store := testdb.NewStore(t)
	ctx := context.Background()
	actor := auth.ActorFromUser(testdb.CreateUser(t, store, "judge", models.RoleJudge), "192.0.2.1")
	counter := metrics.AuditEntriesTotal.WithLabelValues(models.ActionAddNote)
	before := testutil.ToFloat64(counter)

	err := store.InTx(ctx, func(tx *repository.Store) error {
		return Record(ctx, tx, actor, Entry{
			Action:     models.ActionAddNote,
			EntityType: models.EntityNote,
			EntityID:   5,
			Details:    map[string]any{"caseId": 3},
		})
	})
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	entries, err := store.Audit.ListByEntity(ctx, models.EntityNote, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, actor.ID, entries[0].UserID)
	assert.Equal(t, "judge", entries[0].UserName)
	assert.Equal(t, models.RoleJudge, entries[0].UserRole)
	require.NotNil(t, entries[0].IPAddress)
	assert.Equal(t, "192.0.2.1", *entries[0].IPAddress)
	assert.JSONEq(t, `{"caseId":3}`, string(entries[0].Details))
}

func TestRecord_RollsBackWithTransaction(t *testing.T) {
	store := testdb.NewStore(t)
	ctx := context.Background()
	actor := auth.ActorFromUser(testdb.CreateUser(t, store, "admin", models.RoleAdmin), "")
	counter := metrics.AuditEntriesTotal.WithLabelValues(models.ActionDeleteNote)
	before := testutil.ToFloat64(counter)

	err := store.InTx(ctx, func(tx *repository.Store) error {
		if err := Record(ctx, tx, actor, Entry{Action: models.ActionDeleteNote, EntityType: models.EntityNote, EntityID: 1}); err != nil {
			return err
		}
		return apperr.Conflict("abort")
	})
	require.Error(t, err)

	n, err := store.Audit.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, before, testutil.ToFloat64(counter), "rolled back entries are not counted")
}

func TestList(t *testing.T) {
	store := testdb.NewStore(t)
	ctx := context.Background()
	svc := NewService(store, logger.Nop())
	admin := auth.ActorFromUser(testdb.CreateUser(t, store, "admin", models.RoleAdmin), "")
	officer := auth.ActorFromUser(testdb.CreateUser(t, store, "officer", models.RoleOfficer), "")

	for i := uint(1); i <= 3; i++ {
		require.NoError(t, store.InTx(ctx, func(tx *repository.Store) error {
			return Record(ctx, tx, admin, Entry{Action: models.ActionUpsertPlayer, EntityType: models.EntityPlayer, EntityID: i})
		}))
	}

	entries, err := svc.List(ctx, admin, 2, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint(3), entries[0].EntityID)

	entries, err = svc.List(ctx, admin, 0, -5)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	history, err := svc.ByEntity(ctx, admin, models.EntityPlayer, 2)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = svc.List(ctx, officer, 10, 0)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = svc.ByEntity(ctx, officer, models.EntityPlayer, 2)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
