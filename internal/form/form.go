package form

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Edit держит снимок, загруженный с сервера, и текущее состояние формы.
// Save/Cancel доступны только когда текущее состояние отличается от снимка по значению.
type Edit[T any] struct {
	original T
	current  T
}

func NewEdit[T any](original T) *Edit[T] {
	return &Edit[T]{original: original, current: original}
}

// Set заменяет текущее состояние целиком.
func (e *Edit[T]) Set(v T) { e.current = v }

func (e *Edit[T]) Current() T  { return e.current }
func (e *Edit[T]) Original() T { return e.original }

// Dirty: nil и пустой срез считаем одинаковыми — форма не различает их.
func (e *Edit[T]) Dirty() bool {
	return !cmp.Equal(e.original, e.current, cmpopts.EquateEmpty())
}

func (e *Edit[T]) CanSave() bool   { return e.Dirty() }
func (e *Edit[T]) CanCancel() bool { return e.Dirty() }

// Cancel возвращает форму к снимку.
func (e *Edit[T]) Cancel() { e.current = e.original }

// Commit — после успешного сохранения сохранённое становится новым снимком.
func (e *Edit[T]) Commit(saved T) {
	e.original = saved
	e.current = saved
}
