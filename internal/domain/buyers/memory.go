package buyers

import (
	"context"

	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/memstore"
	"github.com/Spok95/graindesk/internal/query"
)

type Memory struct {
	rows *memstore.Store[Buyer]
}

func NewMemory(seed ...Buyer) *Memory {
	return &Memory{rows: memstore.New(Buyer.Key, seed...)}
}

func active(b Buyer) bool { return !b.Deleted }

func (m *Memory) List(_ context.Context, q query.List) (query.Page[Buyer], error) {
	return Table.Page(m.rows.All(active), q), nil
}

func (m *Memory) Get(_ context.Context, id string) (Buyer, error) {
	b, ok := m.rows.Get(id)
	if !ok {
		return Buyer{}, fault.NotFound("get buyer")
	}
	return b, nil
}

func (m *Memory) Create(_ context.Context, b Buyer) (Buyer, error) {
	m.rows.Insert(b)
	return b, nil
}

func (m *Memory) Update(_ context.Context, b Buyer) (Buyer, error) {
	cur, ok := m.rows.Get(b.ID)
	if !ok || cur.Deleted {
		return Buyer{}, fault.NotFound("update buyer")
	}
	m.rows.Replace(b)
	return b, nil
}

func (m *Memory) SoftDelete(_ context.Context, ids ...string) error {
	for _, id := range ids {
		m.rows.Update(id, func(b *Buyer) { b.Deleted = true })
	}
	return nil
}

func (m *Memory) CountAll(context.Context) (int, error) { return m.rows.Len(), nil }
