package search

import (
	"time"

	"github.com/Spok95/graindesk/internal/query"
)

// Table — описание таблицы в памяти: поля поиска, сортировки и дата для фильтра по периоду.
type Table[T any] struct {
	Fields  []Field[T]
	Default string
	Sorters map[string]func(a, b T) int
	Date    func(T) time.Time
}

// Page — фильтр, период, сортировка и страница над строками в памяти.
func (t Table[T]) Page(rows []T, q query.List) query.Page[T] {
	rows = Filter(rows, t.Fields, t.Default, q.Search, q.SearchFields)
	if t.Date != nil && (q.DateFrom != nil || q.DateTo != nil) {
		kept := make([]T, 0, len(rows))
		for _, r := range rows {
			if q.InRange(t.Date(r)) {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	query.Sort(rows, q, t.Sorters)
	return query.Paginate(rows, q)
}

// Sortable — поля, по которым таблица умеет сортировать.
func (t Table[T]) Sortable() []string {
	out := make([]string, 0, len(t.Sorters))
	for k := range t.Sorters {
		out = append(out, k)
	}
	return out
}
