package listview

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/query"
)

type Action string

const (
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
)

var ErrActionNotAllowed = errors.New("action not allowed for current selection")

// Selection — явное множество выбранных id строк.
type Selection struct {
	ids map[string]struct{}
}

func NewSelection(ids ...string) Selection {
	s := Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
	return s
}

func (s *Selection) Toggle(id string) {
	if s.ids == nil {
		s.ids = map[string]struct{}{}
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

func (s *Selection) Clear() { clear(s.ids) }

func (s Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s Selection) Len() int { return len(s.ids) }

// IDs — отсортированы, чтобы порядок не зависел от map.
func (s Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Allows: редактирование — ровно одна строка, удаление — одна и больше,
// выгрузка доступна всегда (без выбора выгружается весь отфильтрованный набор).
func (s Selection) Allows(a Action) bool {
	switch a {
	case ActionEdit:
		return s.Len() == 1
	case ActionDelete:
		return s.Len() >= 1
	case ActionExport:
		return true
	}
	return false
}

func Check(a Action, s Selection) error {
	if s.Allows(a) {
		return nil
	}
	return fault.Validation("listview", fmt.Errorf("%w: %s with %d selected", ErrActionNotAllowed, a, s.Len()))
}

// ExportScope: выбранные id, либо all=true — весь отфильтрованный набор.
func ExportScope(s Selection) (ids []string, all bool) {
	if s.Len() == 0 {
		return nil, true
	}
	return s.IDs(), false
}

// ExportRows применяет ExportScope к уже загруженному набору, сохраняя его порядок.
func ExportRows[T any](s Selection, filtered []T, id func(T) string) []T {
	if s.Len() == 0 {
		return filtered
	}
	out := make([]T, 0, s.Len())
	for _, r := range filtered {
		if s.Has(id(r)) {
			out = append(out, r)
		}
	}
	return out
}

// State — запрос таблицы и выбор. Любая смена страницы, фильтра или сортировки сбрасывает выбор.
type State struct {
	q   query.List
	sel Selection
}

func NewState(q query.List) *State {
	return &State{q: q, sel: NewSelection()}
}

func (st *State) Query() query.List { return st.q }

func (st *State) Selection() *Selection { return &st.sel }

// SetQuery возвращает true, если запрос поменялся (и выбор очищен).
func (st *State) SetQuery(q query.List) bool {
	if q.Key() == st.q.Key() {
		return false
	}
	st.q = q
	st.sel.Clear()
	return true
}

type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusEmpty   Status = "empty"
	StatusReady   Status = "ready"
)

// View — то, что получает таблица: одно из состояний плюс данные.
type View[T any] struct {
	Status Status `json:"status"`
	Data   []T    `json:"data"`
	Total  int    `json:"total"`
	Error  string `json:"error,omitempty"`
	// Retry — показывать ли кнопку «повторить».
	Retry bool `json:"retry,omitempty"`
}

func Ready[T any](p query.Page[T]) View[T] {
	st := StatusReady
	if p.Total == 0 {
		st = StatusEmpty
	}
	data := p.Data
	if data == nil {
		data = []T{}
	}
	return View[T]{Status: st, Data: data, Total: p.Total}
}

func Failed[T any](err error) View[T] {
	return View[T]{
		Status: StatusError,
		Data:   []T{},
		Error:  fault.Message(err, "Something went wrong while loading data"),
		Retry:  fault.KindOf(err) != fault.KindNotFound,
	}
}
