package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AfterCommit(t *testing.T) {
	store := NewStore(setupTestDB(t))
	ctx := context.Background()

	var ran []string
	store.AfterCommit(func() { ran = append(ran, "immediate") })
	assert.Equal(t, []string{"immediate"}, ran)

	err := store.InTx(ctx, func(tx *Store) error {
		tx.AfterCommit(func() { ran = append(ran, "outer") })
		return tx.InTx(ctx, func(inner *Store) error {
			inner.AfterCommit(func() { ran = append(ran, "nested") })
			assert.Len(t, ran, 1, "hooks must wait for the outermost commit")
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"immediate", "outer", "nested"}, ran)

	err = store.InTx(ctx, func(tx *Store) error {
		tx.AfterCommit(func() { ran = append(ran, "rolled back") })
		return errors.New("abort")
	})
	require.Error(t, err)
	assert.Len(t, ran, 3)
}
