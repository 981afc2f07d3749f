package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Spok95/graindesk/internal/accounting"
	"github.com/Spok95/graindesk/internal/infra/metrics"
	"github.com/Spok95/graindesk/internal/listview"
)

const stateCookie = "xero_state"

func (h *handler) accountingReady(c *gin.Context) bool {
	if h.Handoff == nil || h.Invoicer == nil || !h.Handoff.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Xero is not configured"})
		return false
	}
	return true
}

// accountingConnect уводит пользователя на страницу согласия провайдера.
func (h *handler) accountingConnect(c *gin.Context) {
	if !h.accountingReady(c) {
		return
	}
	state := uuid.NewString()
	h.setCookie(c, stateCookie, state, "/accounting", 300)
	c.Redirect(http.StatusTemporaryRedirect, h.Handoff.ConsentURL(state))
}

func (h *handler) accountingCallback(c *gin.Context) {
	if !h.accountingReady(c) {
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": accounting.ErrMissingCode.Error()})
		return
	}
	saved, err := c.Cookie(stateCookie)
	h.setCookie(c, stateCookie, "", "/accounting", -1)
	if err != nil || saved == "" || saved != c.Query("state") {
		h.Log.Warn("accounting callback state mismatch")
		metrics.AccountingCallbacks.WithLabelValues("failed").Inc()
		c.Redirect(http.StatusFound, accounting.RedirectFailed)
		return
	}
	to, err := h.Handoff.Complete(c.Request.Context(), h.Handoff.OrgKey(), code)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.Redirect(http.StatusFound, to)
}

func (h *handler) accountingStatus(c *gin.Context) {
	if h.Credentials == nil || h.Handoff == nil {
		c.JSON(http.StatusOK, gin.H{"configured": false, "connected": false})
		return
	}
	cred, err := h.Credentials.Load(c.Request.Context(), h.Handoff.OrgKey())
	if errors.Is(err, accounting.ErrNotConnected) {
		c.JSON(http.StatusOK, gin.H{"configured": h.Handoff.Configured(), "connected": false})
		return
	}
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"configured": h.Handoff.Configured(),
		"connected":  true,
		"tenantId":   cred.TenantID,
		"updatedAt":  cred.UpdatedAt,
	})
}

func (h *handler) createInvoices(c *gin.Context) {
	if !h.accountingReady(c) {
		return
	}
	var body idsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	sel := listview.NewSelection(body.IDs...)
	out, err := h.Invoicer.Create(c.Request.Context(), h.Handoff.OrgKey(), sel.IDs()...)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": out})
}
