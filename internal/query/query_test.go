package query

import (
	"cmp"
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/graindesk/internal/fault"
)

func TestFromValues(t *testing.T) {
	v := url.Values{}
	v.Set("page", "2")
	v.Set("limit", "25")
	v.Set("sortBy", "contractDate")
	v.Set("sortOrder", "DESC")
	v.Set("dateFrom", "2024-01-01")
	v.Set("dateTo", "2024-06-30")
	v.Set("status", "Invoiced")
	v.Set("grower", "smith")
	v.Set("buyer", "smith")

	q, err := FromValues(v, []string{"contractNumber", "grower", "buyer"})
	require.NoError(t, err)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 25, q.Limit)
	assert.Equal(t, "contractDate", q.SortBy)
	assert.Equal(t, Desc, q.SortOrder)
	assert.Equal(t, "Invoiced", q.Status)
	assert.Equal(t, "smith", q.Search)
	assert.Equal(t, []string{"grower", "buyer"}, q.SearchFields)
	require.NotNil(t, q.DateFrom)
	assert.Equal(t, "2024-01-01", q.DateFrom.Format(DateLayout))

	require.NoError(t, q.Validate([]string{"contractDate"}))
}

func TestFromValuesDefaults(t *testing.T) {
	q, err := FromValues(url.Values{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)
	assert.NoError(t, q.Validate(nil))
}

func TestFromValuesRejectsGarbage(t *testing.T) {
	_, err := FromValues(url.Values{"page": {"two"}}, nil)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))

	_, err = FromValues(url.Values{"dateFrom": {"01/02/2024"}}, nil)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))
}

func TestValidate(t *testing.T) {
	sortable := []string{"legalName"}
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		q    List
		ok   bool
	}{
		{"defaults", List{Page: 1, Limit: 10}, true},
		{"zero page", List{Page: 0, Limit: 10}, false},
		{"odd limit", List{Page: 1, Limit: 15}, false},
		{"unknown sort", List{Page: 1, Limit: 10, SortBy: "abn", SortOrder: Asc}, false},
		{"bad order", List{Page: 1, Limit: 10, SortBy: "legalName", SortOrder: "up"}, false},
		{"order without field", List{Page: 1, Limit: 10, SortOrder: Desc}, false},
		{"sorted", List{Page: 3, Limit: 100, SortBy: "legalName", SortOrder: Desc}, true},
		{"inverted range", List{Page: 1, Limit: 10, DateFrom: &from, DateTo: &to}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate(sortable)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, fault.KindValidation, fault.KindOf(err))
			}
		})
	}
}

func TestKeyIsStable(t *testing.T) {
	a := List{Page: 1, Limit: 10, Search: "acme", SearchFields: []string{"legalName"}}
	b := List{Limit: 10, Page: 1, SearchFields: []string{"legalName"}, Search: "acme"}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), List{Page: 2, Limit: 10}.Key())

	back, err := FromValues(a.Values(), []string{"legalName"})
	require.NoError(t, err)
	assert.Equal(t, a.Key(), back.Key())
}

func TestInRangeIsInclusive(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	q := List{DateFrom: &from, DateTo: &to}

	assert.True(t, q.InRange(time.Date(2024, 1, 31, 18, 0, 0, 0, time.UTC)))
	assert.True(t, q.InRange(from))
	assert.False(t, q.InRange(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)))
	assert.False(t, q.InRange(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSortAndPaginate(t *testing.T) {
	rows := []int{5, 3, 9, 1, 7}
	by := map[string]func(a, b int) int{"n": cmp.Compare[int]}

	Sort(rows, List{SortBy: "n", SortOrder: Desc}, by)
	assert.Equal(t, []int{9, 7, 5, 3, 1}, rows)

	p := Paginate(rows, List{Page: 2, Limit: 2})
	assert.Equal(t, []int{5, 3}, p.Data)
	assert.Equal(t, 5, p.Total)

	p = Paginate(rows, List{Page: 4, Limit: 2})
	assert.Empty(t, p.Data)
	assert.NotNil(t, p.Data)
}

func TestCollect(t *testing.T) {
	all := make([]int, 230)
	for i := range all {
		all[i] = i
	}
	calls := 0
	got, err := Collect(context.Background(), List{Search: "x"}, func(_ context.Context, q List) (Page[int], error) {
		calls++
		assert.Equal(t, MaxLimit, q.Limit)
		return Paginate(all, q), nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 230)
	assert.Equal(t, 3, calls)
}
