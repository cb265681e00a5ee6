package scriptgen

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuanbinnoorazman/ui-autotest/logger"
	"github.com/hairizuanbinnoorazman/ui-autotest/testutil"
)

func setupTestStore(t *testing.T) Store {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &ScriptRecord{})
	return NewMySQLStore(db, logger.NewTestLogger())
}

func TestMySQLStore_CreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := &ScriptRecord{Location: "orders", Path: "scripts/orders/test_1.spec.js", CaseIDs: CaseIDs{"TC1", "TC2"}}
	require.NoError(t, store.Create(ctx, rec))
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, 2, rec.CaseCount)

	got, err := store.GetByPath(ctx, rec.Path)
	require.NoError(t, err)
	assert.Equal(t, CaseIDs{"TC1", "TC2"}, got.CaseIDs)
	assert.Equal(t, "orders", got.Location)

	assert.ErrorIs(t, store.Create(ctx, &ScriptRecord{Location: "orders", Path: rec.Path}), ErrScriptAlreadyExists)
	assert.ErrorIs(t, store.Create(ctx, &ScriptRecord{Path: "p"}), ErrInvalidLocation)
	assert.ErrorIs(t, store.Create(ctx, &ScriptRecord{Location: "l"}), ErrInvalidScriptPath)

	_, err = store.GetByPath(ctx, "missing")
	assert.ErrorIs(t, err, ErrScriptNotFound)
}

func TestMySQLStore_Upsert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.Upsert(ctx, "orders", "scripts/orders/a.spec.js", []string{"TC1"})
	require.NoError(t, err)

	second, err := store.Upsert(ctx, "orders", "scripts/orders/a.spec.js", []string{"TC1", "TC2", "TC3"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, CaseIDs{"TC1", "TC2", "TC3"}, second.CaseIDs)
	assert.Equal(t, 3, second.CaseCount)

	_, err = store.Upsert(ctx, "users", "scripts/users/b.spec.js", nil)
	require.NoError(t, err)

	orders, err := store.ListByLocation(ctx, "orders")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	users, err := store.ListByLocation(ctx, "users")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].CaseIDs)
}

func TestMySQLStore_UpdateDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := &ScriptRecord{Location: "orders", Path: "scripts/orders/a.spec.js"}
	require.NoError(t, store.Create(ctx, rec))

	require.NoError(t, store.Update(ctx, rec.ID, SetCaseIDs([]string{"X"})))
	got, err := store.GetByPath(ctx, rec.Path)
	require.NoError(t, err)
	assert.Equal(t, CaseIDs{"X"}, got.CaseIDs)
	assert.Equal(t, 1, got.CaseCount)

	assert.ErrorIs(t, store.Update(ctx, uuid.New(), SetCaseIDs(nil)), ErrScriptNotFound)

	require.NoError(t, store.Delete(ctx, rec.ID))
	assert.ErrorIs(t, store.Delete(ctx, rec.ID), ErrScriptNotFound)
}
