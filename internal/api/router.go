// Package api — JSON API на gin поверх доменных сервисов.
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/graindesk/internal/accounting"
	"github.com/Spok95/graindesk/internal/authgate"
	"github.com/Spok95/graindesk/internal/domain/bids"
	"github.com/Spok95/graindesk/internal/domain/buyers"
	"github.com/Spok95/graindesk/internal/domain/contracts"
	"github.com/Spok95/graindesk/internal/domain/notes"
	"github.com/Spok95/graindesk/internal/domain/prices"
	"github.com/Spok95/graindesk/internal/domain/sellers"
	"github.com/Spok95/graindesk/internal/infra/metrics"
)

type Deps struct {
	Buyers    *buyers.Service
	Sellers   *sellers.Service
	Contracts *contracts.Service
	Prices    *prices.Service
	Notes     *notes.Service
	Bids      bids.Book

	Sessions *authgate.Sessions
	// SecureCookies — ставить Secure на cookie (за HTTPS).
	SecureCookies bool

	// Handoff и Invoicer nil, если Xero не настроен.
	Handoff     *accounting.Handoff
	Invoicer    *accounting.Invoicer
	Credentials accounting.CredentialStore

	Log *slog.Logger
	Now func() time.Time
}

type handler struct {
	Deps
}

func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handler{Deps: d}

	r := gin.New()
	r.Use(gin.Recovery(), requestLog(d.Log), observe(), authgate.Middleware())

	session := authgate.RequireSession(d.Sessions)
	r.GET("/accounting/connect", session, h.accountingConnect)
	r.GET("/accounting/callback", session, h.accountingCallback)

	auth := r.Group("/api/auth")
	auth.POST("/login", h.login)
	auth.POST("/logout", h.logout)
	auth.GET("/me", h.me)

	// всё остальное под /api — только с действительным токеном
	a := r.Group("/api", session)

	(&entity[buyers.Buyer]{
		svc: h.Buyers, table: buyers.Table, redirect: "/buyers", log: d.Log,
		setID: func(b *buyers.Buyer, id string) { b.ID = id },
	}).register(a, "/buyers")
	(&entity[sellers.Seller]{
		svc: h.Sellers, table: sellers.Table, redirect: "/sellers", log: d.Log,
		setID: func(s *sellers.Seller, id string) { s.ID = id },
	}).register(a, "/sellers")

	a.GET("/contracts/invoiced", h.invoicedContracts)
	a.PATCH("/contracts", h.contractCells)
	a.POST("/contracts/status", h.contractStatus)
	a.POST("/contracts/export", h.exportContracts)
	(&entity[contracts.Contract]{
		svc: h.Contracts, table: contracts.Table, redirect: "/contracts", log: d.Log,
		setID: func(c *contracts.Contract, id string) { c.ID = id },
	}).register(a, "/contracts")

	a.GET("/bids/port-zone", h.portZoneBids)
	a.GET("/bids/port-zone/export", h.exportPortZoneBids)
	a.GET("/bids/delivered", h.deliveredBids)
	a.GET("/bids/delivered/export", h.exportDeliveredBids)

	a.GET("/prices", h.listPrices)
	a.POST("/prices", h.createPrice)
	a.POST("/prices/import", h.importPrices)
	a.GET("/prices/export", h.exportPrices)

	a.GET("/notes", h.listNotes)
	a.POST("/notes", h.createNote)
	a.DELETE("/notes", h.deleteNotes)
	a.GET("/notes/:id", h.getNote)
	a.PUT("/notes/:id", h.updateNote)

	a.GET("/dashboard", h.dashboard)
	a.GET("/accounting/status", h.accountingStatus)
	a.POST("/invoices", h.createInvoices)

	return r
}

func requestLog(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("http request", attrs...)
			return
		}
		log.Debug("http request", attrs...)
	}
}

// observe — счётчики по шаблону маршрута, а не по сырому пути.
func observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
