package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Spok95/graindesk/internal/domain/contracts"
)

type dashboard struct {
	ActiveBuyers int             `json:"activeBuyers"`
	Sellers      int             `json:"sellers"`
	Contracts    contracts.Stats `json:"contracts"`
}

// dashboard — сводные цифры; три запроса идут параллельно.
func (h *handler) dashboard(c *gin.Context) {
	var out dashboard
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		out.ActiveBuyers, err = h.Buyers.Active(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.Sellers, err = h.Sellers.CountAll(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.Contracts, err = h.Contracts.Stats(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
