package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/graindesk/internal/listview"
	"github.com/Spok95/graindesk/internal/query"
	"github.com/Spok95/graindesk/internal/search"
)

type entityService[T any] interface {
	List(ctx context.Context, q query.List) (query.Page[T], error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, v T) (T, bool, error)
	Delete(ctx context.Context, ids ...string) error
}

// entity — CRUD-маршруты справочника (покупатели, продавцы, контракты).
type entity[T any] struct {
	svc      entityService[T]
	table    search.Table[T]
	setID    func(*T, string)
	redirect string
	log      *slog.Logger
}

func (e *entity[T]) register(g *gin.RouterGroup, path string) {
	g.GET(path, e.list)
	g.POST(path, e.create)
	g.DELETE(path, e.remove)
	g.POST(path+"/bulk", e.bulk)
	g.GET(path+"/:id", e.get)
	g.PUT(path+"/:id", e.update)
}

// listQuery разбирает параметры и применяет поиск как отправленный (Deferred):
// без явных полей ищем по полю по умолчанию.
func listQuery[T any](c *gin.Context, t search.Table[T]) (query.List, error) {
	q, err := query.FromValues(c.Request.URL.Query(), search.IDs(t.Fields))
	if err != nil {
		return q, err
	}
	bar := search.NewBar(search.Deferred, t.Default, t.Fields...)
	bar.Type(q.Search)
	bar.Select(q.SearchFields...)
	bar.Commit()
	page := q.Page
	q = bar.Query(q)
	q.Page = page
	return q, nil
}

func (e *entity[T]) list(c *gin.Context) {
	q, err := listQuery(c, e.table)
	if err != nil {
		respondError(c, e.log, err)
		return
	}
	p, err := e.svc.List(c.Request.Context(), q)
	if err != nil {
		listFailed[T](c, e.log, err)
		return
	}
	c.JSON(http.StatusOK, listview.Ready(p))
}

func (e *entity[T]) get(c *gin.Context) {
	v, err := e.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, e.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": v})
}

func (e *entity[T]) create(c *gin.Context) {
	var v T
	if err := c.ShouldBindJSON(&v); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	saved, err := e.svc.Create(c.Request.Context(), v)
	if err != nil {
		respondError(c, e.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": saved, "redirect": e.redirect})
}

func (e *entity[T]) update(c *gin.Context) {
	var v T
	if err := c.ShouldBindJSON(&v); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	e.setID(&v, c.Param("id"))
	saved, changed, err := e.svc.Update(c.Request.Context(), v)
	if err != nil {
		respondError(c, e.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": saved, "changed": changed})
}

func (e *entity[T]) remove(c *gin.Context) {
	var body idsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	sel := listview.NewSelection(body.IDs...)
	if err := listview.Check(listview.ActionDelete, sel); err != nil {
		respondError(c, e.log, err)
		return
	}
	if err := e.svc.Delete(c.Request.Context(), sel.IDs()...); err != nil {
		respondError(c, e.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": sel.Len()})
}

type bulkBody struct {
	Action listview.Action `json:"action"`
	IDs    []string        `json:"ids"`
}

// bulk — проверка, доступно ли действие для текущего выбора строк.
func (e *entity[T]) bulk(c *gin.Context) {
	var body bulkBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	sel := listview.NewSelection(body.IDs...)
	if err := listview.Check(body.Action, sel); err != nil {
		respondError(c, e.log, err)
		return
	}
	ids, all := []string(nil), false
	if body.Action == listview.ActionExport {
		ids, all = listview.ExportScope(sel)
	} else {
		ids = sel.IDs()
	}
	c.JSON(http.StatusOK, gin.H{"action": body.Action, "ids": ids, "all": all})
}
