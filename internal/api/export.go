package api

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/graindesk/internal/export"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// writeExport отдаёт файл в формате из ?format= (csv по умолчанию).
func writeExport[T any](c *gin.Context, h *handler, s export.Schema[T], rows []T) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	var (
		buf   bytes.Buffer
		err   error
		ctype string
	)
	switch format {
	case "csv":
		ctype = "text/csv; charset=utf-8"
		err = export.WriteCSV(&buf, s, rows)
	case "xlsx":
		ctype = xlsxType
		err = export.WriteXLSX(&buf, s, rows)
	default:
		badRequest(c, "format must be csv or xlsx")
		return
	}
	if errors.Is(err, export.ErrNoData) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No data to export"})
		return
	}
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(s.Name, format, h.Now())+`"`)
	c.Data(http.StatusOK, ctype, buf.Bytes())
}
