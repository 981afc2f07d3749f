// Package search — строка поиска по таблицам: текст + набор выбранных полей.
package search

import (
	"slices"
	"strings"

	"github.com/Spok95/graindesk/internal/query"
)

// Field — поле, по которому можно искать. Value может быть как прямым полем
// сущности, так и производным (например, имя продавца внутри контракта).
type Field[T any] struct {
	ID    string
	Label string
	Value func(T) string
}

// IDs возвращает идентификаторы полей в порядке объявления.
func IDs[T any](fields []Field[T]) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.ID)
	}
	return out
}

// Filter оставляет строки, где term — подстрока (без учёта регистра) хотя бы одного
// выбранного поля. Без выбранных полей ищем по полю def. Пустой term — вход без изменений.
func Filter[T any](rows []T, fields []Field[T], def, term string, selected []string) []T {
	term = strings.TrimSpace(term)
	if term == "" {
		return rows
	}
	active := pick(fields, def, selected)
	if len(active) == 0 {
		return rows
	}
	needle := strings.ToLower(term)
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if Match(r, active, needle) {
			out = append(out, r)
		}
	}
	return out
}

// Match — needle уже в нижнем регистре.
func Match[T any](row T, fields []Field[T], needle string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f.Value(row)), needle) {
			return true
		}
	}
	return false
}

func pick[T any](fields []Field[T], def string, selected []string) []Field[T] {
	var out []Field[T]
	for _, f := range fields {
		if slices.Contains(selected, f.ID) {
			out = append(out, f)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, f := range fields {
		if f.ID == def {
			return []Field[T]{f}
		}
	}
	return nil
}

// Mode — когда применяется фильтр.
type Mode int

const (
	// Eager фильтрует на каждое изменение ввода, в памяти.
	Eager Mode = iota
	// Deferred применяет ввод только по Commit (blur / Enter) и уходит на сервер параметрами запроса.
	Deferred
)

type Bar[T any] struct {
	mode   Mode
	fields []Field[T]
	def    string

	input    string
	selected []string

	appliedTerm   string
	appliedFields []string
}

func NewBar[T any](mode Mode, def string, fields ...Field[T]) *Bar[T] {
	return &Bar[T]{mode: mode, fields: fields, def: def}
}

func (b *Bar[T]) Mode() Mode { return b.mode }

// Type меняет ввод. Возвращает true, если применённый фильтр изменился.
func (b *Bar[T]) Type(term string) bool {
	b.input = term
	if b.mode == Eager {
		return b.apply()
	}
	return false
}

// Select задаёт выбранные поля; неизвестные идентификаторы отбрасываются.
func (b *Bar[T]) Select(ids ...string) bool {
	b.selected = b.selected[:0]
	for _, id := range ids {
		for _, f := range b.fields {
			if f.ID == id && !slices.Contains(b.selected, id) {
				b.selected = append(b.selected, id)
			}
		}
	}
	if b.mode == Eager {
		return b.apply()
	}
	return false
}

// Commit применяет отложенный ввод. В режиме Eager ввод уже применён.
func (b *Bar[T]) Commit() bool {
	return b.apply()
}

func (b *Bar[T]) apply() bool {
	term := strings.TrimSpace(b.input)
	changed := term != b.appliedTerm || !slices.Equal(b.selected, b.appliedFields)
	b.appliedTerm = term
	b.appliedFields = slices.Clone(b.selected)
	return changed
}

// Applied — текущий применённый фильтр.
func (b *Bar[T]) Applied() (string, []string) {
	return b.appliedTerm, slices.Clone(b.appliedFields)
}

// Pending — есть ли ввод, ещё не применённый (только для Deferred).
func (b *Bar[T]) Pending() bool {
	return strings.TrimSpace(b.input) != b.appliedTerm || !slices.Equal(b.selected, b.appliedFields)
}

func (b *Bar[T]) Apply(rows []T) []T {
	return Filter(rows, b.fields, b.def, b.appliedTerm, b.appliedFields)
}

// Query переносит применённый фильтр в серверный запрос. Страница сбрасывается на первую.
func (b *Bar[T]) Query(q query.List) query.List {
	q.Search = b.appliedTerm
	q.SearchFields = nil
	if b.appliedTerm != "" {
		q.SearchFields = IDs(pick(b.fields, b.def, b.appliedFields))
	}
	q.Page = 1
	return q
}
