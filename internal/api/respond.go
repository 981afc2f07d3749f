package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/form"
	"github.com/Spok95/graindesk/internal/listview"
)

const genericError = "Something went wrong, please try again"

func statusOf(err error) int {
	switch fault.KindOf(err) {
	case fault.KindValidation:
		return http.StatusBadRequest
	case fault.KindNotFound:
		return http.StatusNotFound
	case fault.KindNetwork, fault.KindProvider:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError: validation → 400 с картой полей, not found → 404,
// сеть и провайдер → 502 с текстом провайдера, остальное → 500 без подробностей.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	status := statusOf(err)
	switch status {
	case http.StatusBadRequest:
		if fe, ok := form.FieldErrors(err); ok {
			c.JSON(status, gin.H{"error": "validation failed", "fields": fe})
			return
		}
		c.JSON(status, gin.H{"error": err.Error()})
	case http.StatusNotFound:
		c.JSON(status, gin.H{"error": "not found"})
	case http.StatusBadGateway:
		log.Warn("upstream failed", "path", c.Request.URL.Path, "err", err)
		c.JSON(status, gin.H{"error": fault.Message(err, "Upstream service is unavailable")})
	default:
		log.Error("request failed", "path", c.Request.URL.Path, "err", err)
		c.JSON(status, gin.H{"error": genericError})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// listFailed отдаёт таблице состояние ошибки с флагом повтора.
func listFailed[T any](c *gin.Context, log *slog.Logger, err error) {
	if fault.KindOf(err) == fault.KindValidation {
		respondError(c, log, err)
		return
	}
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Error("list failed", "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(status, listview.Failed[T](err))
}

type idsBody struct {
	IDs []string `json:"ids"`
}
