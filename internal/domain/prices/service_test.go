package prices

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/graindesk/internal/fetch"
	"github.com/Spok95/graindesk/internal/form"
	"github.com/Spok95/graindesk/internal/query"
)

func newService(t *testing.T) *Service {
	t.Helper()
	seed, err := Fixtures()
	require.NoError(t, err)
	s := NewService(NewMemory(seed...), fetch.Options{StaleAfter: time.Hour, Backoff: time.Millisecond},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(s.Close)
	return s
}

func TestFixturesLoad(t *testing.T) {
	ps, err := Fixtures()
	require.NoError(t, err)
	require.Len(t, ps, 10)
	assert.Equal(t, "Wheat", ps[0].Commodity)
	assert.Equal(t, time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC), ps[0].Date)
	assert.True(t, decimal.RequireFromString("318.5").Equal(ps[0].Price))

	again, err := Fixtures()
	require.NoError(t, err)
	assert.Equal(t, ps[3].ID, again[3].ID, "fixture ids are stable")
}

func TestListFiltersEagerly(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	p, err := s.List(ctx, query.List{Search: "wheat"})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Total)

	p, err = s.List(ctx, query.List{Search: "can1", SearchFields: []string{"quality"}, SortBy: "price", SortOrder: query.Desc})
	require.NoError(t, err)
	require.Equal(t, 2, p.Total)
	assert.Equal(t, "702.5", p.Data[0].Price.String())

	all, err := s.List(ctx, query.List{Limit: 100, SortBy: "date"})
	require.NoError(t, err)
	assert.Equal(t, 10, all.Total)
	assert.Equal(t, "Wheat", all.Data[0].Commodity)

	// сортировка не портит закэшированный порядок
	again, err := s.List(ctx, query.List{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, "Wheat", again.Data[0].Commodity)
	assert.Equal(t, "ASW1", again.Data[2].Quality)
}

func TestImportIsAllOrNothing(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	good := Price{Commodity: "Oats", Date: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), Price: decimal.NewFromInt(250)}

	_, err := s.Import(ctx, []Line{{N: 2, Price: good}, {N: 4, Price: Price{Commodity: "Oats"}}})
	fields, ok := form.FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "must be greater than 0", fields["row 4: price"])
	assert.Equal(t, "is required", fields["row 4: date"])

	p, err := s.List(ctx, query.List{Search: "oats"})
	require.NoError(t, err)
	assert.Zero(t, p.Total)

	n, err := s.Import(ctx, []Line{{N: 2, Price: good}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	p, err = s.List(ctx, query.List{Search: "oats"})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Total)
	assert.NotEmpty(t, p.Data[0].ID)
}
