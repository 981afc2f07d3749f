package fetch

import (
	"net/url"

	"github.com/Spok95/graindesk/internal/query"
)

// Prepend — оптимистичная вставка после создания: во все закэшированные первые страницы
// без фильтров и сортировки новая запись ставится в начало, остальные страницы выбрасываются.
func Prepend[T any](c *Cache[query.Page[T]], v T) {
	c.Update(func(key string, p query.Page[T]) (query.Page[T], bool) {
		q, ok := unfilteredFirstPage(key)
		if !ok {
			return p, false
		}
		data := make([]T, 0, len(p.Data)+1)
		data = append(data, v)
		data = append(data, p.Data...)
		if len(data) > q.Limit {
			data = data[:q.Limit]
		}
		return query.Page[T]{Data: data, Total: p.Total + 1}, true
	})
}

func unfilteredFirstPage(key string) (query.List, bool) {
	vals, err := url.ParseQuery(key)
	if err != nil {
		return query.List{}, false
	}
	for k := range vals {
		switch k {
		case "page", "limit":
		default:
			return query.List{}, false
		}
	}
	q, err := query.FromValues(vals, nil)
	if err != nil || q.Page != 1 {
		return query.List{}, false
	}
	return q, true
}
