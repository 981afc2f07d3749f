package contracts

import (
	"context"

	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/memstore"
	"github.com/Spok95/graindesk/internal/query"
)

type Memory struct {
	rows *memstore.Store[Contract]
}

func NewMemory(seed ...Contract) *Memory {
	return &Memory{rows: memstore.New(Contract.Key, seed...)}
}

func (m *Memory) List(_ context.Context, q query.List) (query.Page[Contract], error) {
	var keep func(Contract) bool
	if q.Status != "" {
		keep = func(c Contract) bool { return string(c.Status) == q.Status }
	}
	return Table.Page(m.rows.All(keep), q), nil
}

func (m *Memory) Get(_ context.Context, id string) (Contract, error) {
	c, ok := m.rows.Get(id)
	if !ok {
		return Contract{}, fault.NotFound("get contract")
	}
	return c, nil
}

func (m *Memory) taken(number, exceptID string) bool {
	dup := m.rows.All(func(c Contract) bool { return c.Number == number && c.ID != exceptID })
	return len(dup) > 0
}

func (m *Memory) Create(_ context.Context, c Contract) (Contract, error) {
	if m.taken(c.Number, "") {
		return Contract{}, fault.Validation("insert contract", ErrDuplicateNumber)
	}
	m.rows.Insert(c)
	return c, nil
}

func (m *Memory) Update(_ context.Context, c Contract) (Contract, error) {
	if m.taken(c.Number, c.ID) {
		return Contract{}, fault.Validation("update contract", ErrDuplicateNumber)
	}
	if !m.rows.Replace(c) {
		return Contract{}, fault.NotFound("update contract")
	}
	return c, nil
}

func (m *Memory) Delete(_ context.Context, ids ...string) error {
	m.rows.Remove(ids...)
	return nil
}

// SellersInUse — есть ли контракты хотя бы с одним из продавцов.
func (m *Memory) SellersInUse(_ context.Context, sellerIDs ...string) (bool, error) {
	ids := make(map[string]struct{}, len(sellerIDs))
	for _, id := range sellerIDs {
		ids[id] = struct{}{}
	}
	used := m.rows.All(func(c Contract) bool {
		_, ok := ids[c.Seller.ID]
		return ok
	})
	return len(used) > 0, nil
}

func (m *Memory) SetStatus(_ context.Context, status Status, ids ...string) error {
	for _, id := range ids {
		m.rows.Update(id, func(c *Contract) { c.Status = status })
	}
	return nil
}

func (m *Memory) CountAll(context.Context) (int, error) { return m.rows.Len(), nil }

func (m *Memory) Stats(context.Context) (Stats, error) {
	st := Stats{ByStatus: map[Status]int{}}
	for _, c := range m.rows.All(nil) {
		st.Total++
		st.ByStatus[c.Status]++
		st.Tonnes = st.Tonnes.Add(c.Tonnes)
		st.Value = st.Value.Add(c.Value())
	}
	return st, nil
}
