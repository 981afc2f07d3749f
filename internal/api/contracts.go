package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/graindesk/internal/domain/contracts"
	"github.com/Spok95/graindesk/internal/export"
	"github.com/Spok95/graindesk/internal/form"
	"github.com/Spok95/graindesk/internal/listview"
	"github.com/Spok95/graindesk/internal/query"
)

func (h *handler) invoicedContracts(c *gin.Context) {
	q, err := listQuery(c, contracts.Table)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	p, err := h.Contracts.Invoiced(c.Request.Context(), q)
	if err != nil {
		listFailed[contracts.Contract](c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, listview.Ready(p))
}

type cellEdit struct {
	Row    string `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// contractCells сохраняет правки ячеек. Не сохранившиеся правки возвращаются в pending.
func (h *handler) contractCells(c *gin.Context) {
	var body struct {
		Cells []cellEdit `json:"cells"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	cells := listview.NewCells()
	for _, e := range body.Cells {
		cells.Set(e.Row, e.Column, e.Value)
	}
	saved, err := h.Contracts.ApplyCells(c.Request.Context(), cells)
	if saved == nil {
		saved = []contracts.Contract{}
	}
	if fe, ok := form.FieldErrors(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"fields":  fe,
			"data":    saved,
			"pending": pending(cells),
		})
		return
	}
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": saved})
}

func pending(cells *listview.Cells) []cellEdit {
	out := make([]cellEdit, 0, cells.Len())
	for _, row := range cells.Rows() {
		for col, v := range cells.Row(row) {
			out = append(out, cellEdit{Row: row, Column: col, Value: v})
		}
	}
	return out
}

func (h *handler) contractStatus(c *gin.Context) {
	var body struct {
		IDs    []string         `json:"ids"`
		Status contracts.Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	sel := listview.NewSelection(body.IDs...)
	if sel.Len() == 0 {
		badRequest(c, "select at least one contract")
		return
	}
	if err := h.Contracts.SetStatus(c.Request.Context(), body.Status, sel.IDs()...); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": sel.Len()})
}

// exportContracts: выбранные строки, а без выбора — весь отфильтрованный набор.
func (h *handler) exportContracts(c *gin.Context) {
	var body idsBody
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, "invalid JSON body")
			return
		}
	}
	ctx := c.Request.Context()
	ids, all := listview.ExportScope(listview.NewSelection(body.IDs...))

	var rows []contracts.Contract
	if all {
		q, err := listQuery(c, contracts.Table)
		if err != nil {
			respondError(c, h.Log, err)
			return
		}
		if rows, err = query.Collect(ctx, q, h.Contracts.List); err != nil {
			respondError(c, h.Log, err)
			return
		}
	} else {
		for _, id := range ids {
			v, err := h.Contracts.Get(ctx, id)
			if err != nil {
				respondError(c, h.Log, err)
				return
			}
			rows = append(rows, v)
		}
	}
	writeExport(c, h, export.Contracts, rows)
}
