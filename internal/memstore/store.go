// Package memstore — потокобезопасное хранилище в памяти для тестов и фикстур.
package memstore

import (
	"slices"
	"sync"
)

type Store[T any] struct {
	mu   sync.RWMutex
	id   func(T) string
	rows []T
}

func New[T any](id func(T) string, seed ...T) *Store[T] {
	return &Store[T]{id: id, rows: slices.Clone(seed)}
}

// All — копия строк, прошедших фильтр (nil — все), в порядке хранения.
func (s *Store[T]) All(keep func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.rows))
	for _, r := range s.rows {
		if keep == nil || keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.rows[i], true
	}
	var zero T
	return zero, false
}

// Insert добавляет в начало: новые записи первыми.
func (s *Store[T]) Insert(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = slices.Insert(s.rows, 0, v)
}

// Replace заменяет строку с тем же id; false — такой нет.
func (s *Store[T]) Replace(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(s.id(v))
	if i < 0 {
		return false
	}
	s.rows[i] = v
	return true
}

// Update меняет строку на месте, возвращает новое значение.
func (s *Store[T]) Update(id string, fn func(*T)) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	fn(&s.rows[i])
	return s.rows[i], true
}

// Remove удаляет строки, возвращает сколько удалено.
func (s *Store[T]) Remove(ids ...string) int {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.rows)
	s.rows = slices.DeleteFunc(s.rows, func(r T) bool {
		_, ok := set[s.id(r)]
		return ok
	})
	return before - len(s.rows)
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *Store[T]) index(id string) int {
	return slices.IndexFunc(s.rows, func(r T) bool { return s.id(r) == id })
}
