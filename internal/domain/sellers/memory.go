package sellers

import (
	"context"
	"fmt"

	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/memstore"
	"github.com/Spok95/graindesk/internal/query"
)

type Memory struct {
	rows *memstore.Store[Seller]
	// InUse сообщает, ссылаются ли контракты на кого-то из ids. nil — не проверяем.
	InUse func(ctx context.Context, ids ...string) (bool, error)
}

func NewMemory(seed ...Seller) *Memory {
	return &Memory{rows: memstore.New(Seller.Key, seed...)}
}

func (m *Memory) List(_ context.Context, q query.List) (query.Page[Seller], error) {
	return Table.Page(m.rows.All(nil), q), nil
}

func (m *Memory) Get(_ context.Context, id string) (Seller, error) {
	s, ok := m.rows.Get(id)
	if !ok {
		return Seller{}, fault.NotFound("get seller")
	}
	return s, nil
}

func (m *Memory) Create(_ context.Context, s Seller) (Seller, error) {
	m.rows.Insert(s)
	return s, nil
}

func (m *Memory) Update(_ context.Context, s Seller) (Seller, error) {
	if !m.rows.Replace(s) {
		return Seller{}, fault.NotFound("update seller")
	}
	return s, nil
}

func (m *Memory) Delete(ctx context.Context, ids ...string) error {
	if m.InUse != nil {
		used, err := m.InUse(ctx, ids...)
		if err != nil {
			return fmt.Errorf("delete seller: %w", err)
		}
		if used {
			return fault.Validation("delete seller", ErrHasContracts)
		}
	}
	m.rows.Remove(ids...)
	return nil
}

func (m *Memory) CountAll(context.Context) (int, error) { return m.rows.Len(), nil }
