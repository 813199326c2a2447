package view_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plms/internal/view"
)

func TestLists_BlankNameIgnored(t *testing.T) {
	e := newEnv(t)
	l := view.NewLists(e.client)

	list, err := l.Create(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, list)
	assert.Zero(t, e.fake.CountRequests(http.MethodPost, "/lists"))
}

func TestLists_EmptyListDeletesWithoutPrompt(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := view.NewLists(e.client)
	list, err := l.Create(ctx, "Empty")
	require.NoError(t, err)

	deleted, err := l.Delete(ctx, list.ID, func(string) bool {
		t.Fatal("empty list must not prompt")
		return false
	})
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestLists_DeleteDeclined(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := view.NewLists(e.client)
	list, err := l.Create(ctx, "Keep")
	require.NoError(t, err)
	require.NoError(t, l.Select(list.ID))
	require.NoError(t, l.AddItem(ctx, itoa(e.ids["Dune"])))

	deleted, err := l.Delete(ctx, list.ID, never)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Zero(t, e.fake.CountRequests(http.MethodDelete, "/lists/"+itoa(list.ID)))
	assert.NotNil(t, l.Selected())
}

func TestLists_ActionsNeedSelection(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := view.NewLists(e.client)
	require.NoError(t, l.Load(ctx))

	assert.ErrorIs(t, l.AddItem(ctx, "1"), view.ErrNoListSelected)
	_, err := l.Move(ctx, 0, view.Down)
	assert.ErrorIs(t, err, view.ErrNoListSelected)
	assert.ErrorIs(t, l.Select(999), view.ErrUnknownList)
}

func TestLists_AddItemInput(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := view.NewLists(e.client)
	list, err := l.Create(ctx, "Queue")
	require.NoError(t, err)
	require.NoError(t, l.Select(list.ID))

	require.NoError(t, l.AddItem(ctx, "  "))
	assert.Error(t, l.AddItem(ctx, "abc"))
	assert.Contains(t, l.Banner().Error, "itemId")
	assert.Zero(t, e.fake.CountRequests(http.MethodPost, "/lists/"+itoa(list.ID)+"/items"))

	require.NoError(t, l.AddItem(ctx, itoa(e.ids["Heat"])))
	require.Error(t, l.AddItem(ctx, itoa(e.ids["Heat"])))
	assert.Equal(t, "Item is already in the list", l.Banner().Error)
}

func TestLists_MoveOutOfRangeIsNoop(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := view.NewLists(e.client)
	list, err := l.Create(ctx, "Two")
	require.NoError(t, err)
	require.NoError(t, l.Select(list.ID))
	require.NoError(t, l.AddItem(ctx, itoa(e.ids["Dune"])))
	require.NoError(t, l.AddItem(ctx, itoa(e.ids["Heat"])))

	for _, tc := range []struct{ index, dir int }{{0, view.Up}, {1, view.Down}, {5, view.Up}, {-1, view.Down}} {
		moved, err := l.Move(ctx, tc.index, tc.dir)
		require.NoError(t, err)
		assert.False(t, moved)
	}
	assert.Zero(t, e.fake.CountRequests(http.MethodPost, "/lists/"+itoa(list.ID)+"/items/reorder"))

	moved, err := l.Move(ctx, 0, view.Down)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []int64{e.ids["Heat"], e.ids["Dune"]}, l.Selected().ItemIDs())
}

func TestLists_SelectionSurvivesReload(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	l := view.NewLists(e.client)
	list, err := l.Create(ctx, "Sticky")
	require.NoError(t, err)
	require.NoError(t, l.Select(list.ID))

	require.NoError(t, l.Load(ctx))
	require.NotNil(t, l.Selected())
	assert.Equal(t, "Sticky", l.Selected().Name)
}
