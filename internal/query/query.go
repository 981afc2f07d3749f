package query

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/graindesk/internal/fault"
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

const DateLayout = "2006-01-02"

// PageSizes — допустимые размеры страницы.
var PageSizes = []int{10, 25, 50, 100}

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// List — параметры запроса списка. Страницы считаются с 1.
type List struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder Order
	// Search применяется к SearchFields (OR). Пустой SearchFields — поле по умолчанию.
	Search       string
	SearchFields []string
	DateFrom     *time.Time
	DateTo       *time.Time
	Status       string
}

// Page — конверт ответа { data, total }.
type Page[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

func (q List) Normalize() List {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.SortBy != "" && q.SortOrder == "" {
		q.SortOrder = Asc
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

func (q List) Validate(sortable []string) error {
	if q.Page < 1 {
		return invalid("page must be 1 or greater, got %d", q.Page)
	}
	if !slices.Contains(PageSizes, q.Limit) {
		return invalid("limit must be one of %v, got %d", PageSizes, q.Limit)
	}
	if q.SortBy == "" {
		if q.SortOrder != "" {
			return invalid("sortOrder given without sortBy")
		}
	} else {
		if !slices.Contains(sortable, q.SortBy) {
			return invalid("cannot sort by %q", q.SortBy)
		}
		if q.SortOrder != Asc && q.SortOrder != Desc {
			return invalid("sortOrder must be asc or desc, got %q", q.SortOrder)
		}
	}
	if q.DateFrom != nil && q.DateTo != nil && q.DateFrom.After(*q.DateTo) {
		return invalid("dateFrom is after dateTo")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fault.Validation("query", fmt.Errorf(format, args...))
}

func (q List) Offset() int { return (q.Page - 1) * q.Limit }

// InRange — попадает ли дата в [DateFrom, DateTo], DateTo включительно.
func (q List) InRange(t time.Time) bool {
	if q.DateFrom != nil && t.Before(*q.DateFrom) {
		return false
	}
	if q.DateTo != nil && !t.Before(q.DateTo.AddDate(0, 0, 1)) {
		return false
	}
	return true
}

// FromValues разбирает query string. searchable — поля, по которым разрешён поиск
// (каждое поле приходит отдельным параметром со строкой поиска).
func FromValues(v url.Values, searchable []string) (List, error) {
	var q List
	var err error
	if s := v.Get("page"); s != "" {
		if q.Page, err = strconv.Atoi(s); err != nil {
			return q, invalid("page must be a number, got %q", s)
		}
	}
	if s := v.Get("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil {
			return q, invalid("limit must be a number, got %q", s)
		}
	}
	q.SortBy = v.Get("sortBy")
	q.SortOrder = Order(strings.ToLower(v.Get("sortOrder")))
	q.Status = v.Get("status")
	if q.DateFrom, err = parseDate(v.Get("dateFrom")); err != nil {
		return q, err
	}
	if q.DateTo, err = parseDate(v.Get("dateTo")); err != nil {
		return q, err
	}
	q.Search = v.Get("search")
	for _, f := range searchable {
		if term := strings.TrimSpace(v.Get(f)); term != "" {
			q.Search = term
			q.SearchFields = append(q.SearchFields, f)
		}
	}
	return q.Normalize(), nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, invalid("bad date %q, expected YYYY-MM-DD", s)
	}
	return &t, nil
}

func (q List) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
		v.Set("sortOrder", string(q.SortOrder))
	}
	if q.DateFrom != nil {
		v.Set("dateFrom", q.DateFrom.Format(DateLayout))
	}
	if q.DateTo != nil {
		v.Set("dateTo", q.DateTo.Format(DateLayout))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Search != "" {
		if len(q.SearchFields) == 0 {
			v.Set("search", q.Search)
		}
		for _, f := range q.SearchFields {
			v.Set(f, q.Search)
		}
	}
	return v
}

// Key — канонический ключ запроса для кэша.
func (q List) Key() string { return q.Values().Encode() }

// Sort сортирует строки на месте по объявленному полю.
func Sort[T any](rows []T, q List, by map[string]func(a, b T) int) {
	cmpf, ok := by[q.SortBy]
	if !ok {
		return
	}
	slices.SortStableFunc(rows, func(a, b T) int {
		if q.SortOrder == Desc {
			return cmpf(b, a)
		}
		return cmpf(a, b)
	})
}

func Paginate[T any](rows []T, q List) Page[T] {
	total := len(rows)
	start := q.Offset()
	if start >= total || start < 0 {
		return Page[T]{Data: []T{}, Total: total}
	}
	end := min(start+q.Limit, total)
	return Page[T]{Data: slices.Clone(rows[start:end]), Total: total}
}

// Collect выбирает все страницы запроса (для выгрузки полного отфильтрованного набора).
func Collect[T any](ctx context.Context, q List, fetch func(context.Context, List) (Page[T], error)) ([]T, error) {
	q.Page = 1
	q.Limit = MaxLimit
	var out []T
	for {
		p, err := fetch(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Data...)
		if len(p.Data) == 0 || len(out) >= p.Total {
			return out, nil
		}
		q.Page++
	}
}
