package contracts

import (
	"context"

	"github.com/Spok95/graindesk/internal/query"
	"github.com/Spok95/graindesk/internal/remote"
)

type Remote struct {
	res *remote.Resource[Contract]
}

func NewRemote(c *remote.Client) *Remote {
	return &Remote{res: remote.NewResource[Contract](c, "/contracts")}
}

func (r *Remote) List(ctx context.Context, q query.List) (query.Page[Contract], error) {
	return r.res.List(ctx, q)
}

func (r *Remote) Get(ctx context.Context, id string) (Contract, error) { return r.res.Get(ctx, id) }

func (r *Remote) Create(ctx context.Context, c Contract) (Contract, error) {
	return r.res.Create(ctx, c)
}

func (r *Remote) Update(ctx context.Context, c Contract) (Contract, error) {
	return r.res.Update(ctx, c.ID, c)
}

func (r *Remote) Delete(ctx context.Context, ids ...string) error { return r.res.Delete(ctx, ids...) }

func (r *Remote) SetStatus(ctx context.Context, status Status, ids ...string) error {
	return r.res.Post(ctx, "/status", map[string]any{"ids": ids, "status": status}, nil)
}

func (r *Remote) CountAll(ctx context.Context) (int, error) { return r.res.Count(ctx) }

func (r *Remote) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	err := r.res.Fetch(ctx, "/stats", nil, &out)
	return out, err
}
