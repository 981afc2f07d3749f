package search

import (
	"cmp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Spok95/graindesk/internal/query"
)

type dated struct {
	id  string
	day time.Time
}

func TestTablePage(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }
	tbl := Table[dated]{
		Fields:  []Field[dated]{{ID: "id", Value: func(r dated) string { return r.id }}},
		Default: "id",
		Sorters: map[string]func(a, b dated) int{
			"date": func(a, b dated) int { return a.day.Compare(b.day) },
			"id":   func(a, b dated) int { return cmp.Compare(a.id, b.id) },
		},
		Date: func(r dated) time.Time { return r.day },
	}
	rows := []dated{{"a1", day(1)}, {"a2", day(5)}, {"b1", day(3)}, {"a3", day(9)}}

	from, to := day(2), day(9)
	p := tbl.Page(rows, query.List{Page: 1, Limit: 10, Search: "A", SortBy: "date", SortOrder: query.Desc, DateFrom: &from, DateTo: &to})
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, []dated{{"a3", day(9)}, {"a2", day(5)}}, p.Data)

	assert.ElementsMatch(t, []string{"date", "id"}, tbl.Sortable())
}
