package buyers

import (
	"context"
	"net/http"

	"github.com/Spok95/graindesk/internal/query"
	"github.com/Spok95/graindesk/internal/remote"
)

// Remote — покупатели во внешнем Data API. DELETE там мягкий.
type Remote struct {
	res *remote.Resource[Buyer]
	c   *remote.Client
}

func NewRemote(c *remote.Client) *Remote {
	return &Remote{res: remote.NewResource[Buyer](c, "/buyers"), c: c}
}

func (r *Remote) List(ctx context.Context, q query.List) (query.Page[Buyer], error) {
	return r.res.List(ctx, q)
}

func (r *Remote) Get(ctx context.Context, id string) (Buyer, error) { return r.res.Get(ctx, id) }

func (r *Remote) Create(ctx context.Context, b Buyer) (Buyer, error) { return r.res.Create(ctx, b) }

func (r *Remote) Update(ctx context.Context, b Buyer) (Buyer, error) {
	return r.res.Update(ctx, b.ID, b)
}

func (r *Remote) SoftDelete(ctx context.Context, ids ...string) error {
	return r.c.Do(ctx, http.MethodPatch, "/buyers/delete", nil, map[string]any{"ids": ids, "isDeleted": true}, nil)
}

func (r *Remote) CountAll(ctx context.Context) (int, error) { return r.res.Count(ctx) }
