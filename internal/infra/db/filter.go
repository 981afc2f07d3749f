package db

import (
	"strconv"
	"strings"

	"github.com/Spok95/graindesk/internal/query"
)

// Filter собирает WHERE для списков. Условия пишутся с "?", в SQL они становятся $n.
type Filter struct {
	// ID — колонка для стабильного порядка при равных значениях сортировки ("id" по умолчанию).
	ID    string
	where []string
	args  []any
}

func (f *Filter) Where(cond string, args ...any) *Filter {
	f.where = append(f.where, cond)
	f.args = append(f.args, args...)
	return f
}

// Search — (col1 ILIKE ? OR col2 ILIKE ? ...) по подстроке.
func (f *Filter) Search(term string, cols ...string) *Filter {
	if term == "" || len(cols) == 0 {
		return f
	}
	like := "%" + escapeLike(term) + "%"
	parts := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		parts[i] = c + " ILIKE ?"
		args[i] = like
	}
	return f.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// Count — SELECT count(*) по тем же условиям.
func (f *Filter) Count(from string) (string, []any) {
	return rebind("SELECT count(*) FROM " + from + f.clause()), f.args
}

// Select — выборка страницы: ORDER BY по колонке из sortCols, затем LIMIT/OFFSET.
func (f *Filter) Select(sel string, q query.List, sortCols map[string]string, fallback string) (string, []any) {
	var b strings.Builder
	b.WriteString(sel)
	b.WriteString(f.clause())

	order := fallback
	if col, ok := sortCols[q.SortBy]; ok {
		dir := "ASC"
		if q.SortOrder == query.Desc {
			dir = "DESC"
		}
		id := f.ID
		if id == "" {
			id = "id"
		}
		order = col + " " + dir + ", " + id
	}
	if order != "" {
		b.WriteString(" ORDER BY " + order)
	}
	args := append([]any(nil), f.args...)
	if q.Limit > 0 {
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, q.Limit, q.Offset())
	}
	return rebind(b.String()), args
}

func (f *Filter) clause() string {
	if len(f.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.where, " AND ")
}

func rebind(sql string) string {
	var b strings.Builder
	n := 0
	for _, r := range sql {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
