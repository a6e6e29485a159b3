package notes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/rocase/internal/apperr"
	"github.com/aimd54/rocase/internal/auth"
	"github.com/aimd54/rocase/internal/models"
	"github.com/aimd54/rocase/pkg/logger"
	"github.com/aimd54/rocase/test/testdb"
)

func TestNoteLifecycle(t *testing.T) {
	store := testdb.NewStore(t)
	svc := NewService(store, logger.Nop())
	ctx := context.Background()

	judgeUser := testdb.CreateUser(t, store, "judge", models.RoleJudge)
	judge := auth.ActorFromUser(judgeUser, "")
	admin := auth.ActorFromUser(testdb.CreateUser(t, store, "admin", models.RoleAdmin), "")
	member := auth.ActorFromUser(testdb.CreateUser(t, store, "member", models.RoleMember), "")
	c := testdb.CreateCase(t, store, "RC-2026-00001", testdb.CreatePlayer(t, store, 7, "Suspect"), judgeUser)

	note, err := svc.Add(ctx, judge, c.ID, "  Witness statement pending ")
	require.NoError(t, err)
	assert.Equal(t, "Witness statement pending", note.Content)
	assert.Equal(t, models.RoleJudge, note.AuthorRole)
	assert.Equal(t, "judge", note.AuthorName)

	_, err = svc.Add(ctx, member, c.ID, "hello")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = svc.Add(ctx, judge, c.ID, " ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = svc.Add(ctx, judge, 999, "orphan")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	updated, err := svc.Update(ctx, judge, note.ID, "Statement received")
	require.NoError(t, err)
	assert.Equal(t, "Statement received", updated.Content)

	_, err = svc.Update(ctx, judge, 999, "x")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	list, err := svc.ListByCase(ctx, member, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Statement received", list[0].Content)

	err = svc.Delete(ctx, judge, note.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	require.NoError(t, svc.Delete(ctx, admin, note.ID))
	err = svc.Delete(ctx, admin, note.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	entries, err := store.Audit.ListByEntity(ctx, models.EntityNote, note.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, models.ActionDeleteNote, entries[0].Action)
	assert.Equal(t, models.ActionUpdateNote, entries[1].Action)
	assert.Equal(t, models.ActionAddNote, entries[2].Action)
}
