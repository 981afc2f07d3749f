package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/graindesk/internal/domain/notes"
	"github.com/Spok95/graindesk/internal/domain/prices"
	"github.com/Spok95/graindesk/internal/export"
	"github.com/Spok95/graindesk/internal/listview"
	"github.com/Spok95/graindesk/internal/query"
	"github.com/Spok95/graindesk/internal/search"
)

// maxImportSize — предел размера файла импорта цен.
const maxImportSize = 5 << 20

func (h *handler) listPrices(c *gin.Context) {
	q, err := query.FromValues(c.Request.URL.Query(), search.IDs(prices.Table.Fields))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	p, err := h.Prices.List(c.Request.Context(), q)
	if err != nil {
		listFailed[prices.Price](c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, listview.Ready(p))
}

func (h *handler) createPrice(c *gin.Context) {
	var p prices.Price
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	saved, err := h.Prices.Create(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": saved})
}

// importPrices принимает multipart-поле "file": .xlsx или CSV.
func (h *handler) importPrices(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	if fh.Size > maxImportSize {
		badRequest(c, "file is too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	defer func() { _ = f.Close() }()

	var lines []prices.Line
	if strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		data, rerr := io.ReadAll(f)
		if rerr != nil {
			respondError(c, h.Log, rerr)
			return
		}
		lines, err = export.ReadPricesXLSX(data)
	} else {
		lines, err = export.ReadPricesCSV(f)
	}
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	n, err := h.Prices.Import(c.Request.Context(), lines)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n})
}

func (h *handler) exportPrices(c *gin.Context) {
	q, err := query.FromValues(c.Request.URL.Query(), search.IDs(prices.Table.Fields))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	rows, err := query.Collect(c.Request.Context(), q, h.Prices.List)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	writeExport(c, h, export.Prices, rows)
}

func (h *handler) listNotes(c *gin.Context) {
	q, err := query.FromValues(c.Request.URL.Query(), search.IDs(notes.Table.Fields))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	p, err := h.Notes.List(c.Request.Context(), q)
	if err != nil {
		listFailed[notes.Note](c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, listview.Ready(p))
}

func (h *handler) getNote(c *gin.Context) {
	n, err := h.Notes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": n})
}

func (h *handler) createNote(c *gin.Context) {
	var n notes.Note
	if err := c.ShouldBindJSON(&n); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	saved, err := h.Notes.Create(c.Request.Context(), n)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": saved})
}

func (h *handler) updateNote(c *gin.Context) {
	var n notes.Note
	if err := c.ShouldBindJSON(&n); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	n.ID = c.Param("id")
	saved, changed, err := h.Notes.Update(c.Request.Context(), n)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": saved, "changed": changed})
}

func (h *handler) deleteNotes(c *gin.Context) {
	var body idsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	sel := listview.NewSelection(body.IDs...)
	if err := listview.Check(listview.ActionDelete, sel); err != nil {
		respondError(c, h.Log, err)
		return
	}
	if err := h.Notes.Delete(c.Request.Context(), sel.IDs()...); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": sel.Len()})
}

func (h *handler) portZoneBids(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": nonNil(h.Bids.PortZone), "total": len(h.Bids.PortZone)})
}

func (h *handler) deliveredBids(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": nonNil(h.Bids.Delivered), "total": len(h.Bids.Delivered)})
}

func (h *handler) exportPortZoneBids(c *gin.Context) {
	writeExport(c, h, export.PortZoneBids, h.Bids.PortZone)
}

func (h *handler) exportDeliveredBids(c *gin.Context) {
	writeExport(c, h, export.DeliveredBids, h.Bids.Delivered)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
