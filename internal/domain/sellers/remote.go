package sellers

import (
	"context"

	"github.com/Spok95/graindesk/internal/query"
	"github.com/Spok95/graindesk/internal/remote"
)

type Remote struct {
	res *remote.Resource[Seller]
}

func NewRemote(c *remote.Client) *Remote {
	return &Remote{res: remote.NewResource[Seller](c, "/sellers")}
}

func (r *Remote) List(ctx context.Context, q query.List) (query.Page[Seller], error) {
	return r.res.List(ctx, q)
}

func (r *Remote) Get(ctx context.Context, id string) (Seller, error)   { return r.res.Get(ctx, id) }
func (r *Remote) Create(ctx context.Context, s Seller) (Seller, error) { return r.res.Create(ctx, s) }

func (r *Remote) Update(ctx context.Context, s Seller) (Seller, error) {
	return r.res.Update(ctx, s.ID, s)
}

func (r *Remote) Delete(ctx context.Context, ids ...string) error { return r.res.Delete(ctx, ids...) }
func (r *Remote) CountAll(ctx context.Context) (int, error)       { return r.res.Count(ctx) }
