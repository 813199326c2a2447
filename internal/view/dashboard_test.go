package view_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/view"
)

func TestDashboard_Summary(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for i := range 7 {
		_, err := e.client.CreateItem(ctx, &model.ItemCreateRequest{
			Type: model.MediaBook, Title: "Extra " + itoa(int64(i)), Year: 2001,
			Tags: []string{}, BookInfo: &model.BookInfo{},
		})
		require.NoError(t, err)
	}

	d := view.NewDashboard(e.client)
	require.NoError(t, d.Load(ctx))
	s := d.Summary()

	assert.Equal(t, 10, s.Total)
	assert.Equal(t, 8, s.Books)
	assert.Equal(t, 2, s.DVDs)
	assert.Equal(t, 1, s.Loaned)
	assert.Len(t, s.RecentBooks, view.DashboardPreview)
	assert.Equal(t, "Dune", s.RecentBooks[0].Title)
	assert.Len(t, s.RecentDVDs, 2)
	require.Len(t, s.OverdueLoans, 1)
	assert.Equal(t, "Alien", s.OverdueLoans[0].ItemTitle)
}

func TestDashboard_ErrorIsVerbatimAndNotFatal(t *testing.T) {
	e := newEnv(t)
	e.fake.Fail(http.MethodGet, "/loans/overdue", http.StatusInternalServerError, "overdue query failed")

	d := view.NewDashboard(e.client)
	err := d.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, "overdue query failed", d.Banner().Error)
	assert.Zero(t, d.Summary().Total)
}
