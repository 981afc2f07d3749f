package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/graindesk/internal/authgate"
)

type loginBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handler) setCookie(c *gin.Context, name, value, path string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, path, "", h.SecureCookies, true)
}

func (h *handler) login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "username and password are required")
		return
	}
	tok, u, err := h.Sessions.Login(c.Request.Context(), body.Username, body.Password)
	if errors.Is(err, authgate.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	h.setCookie(c, authgate.CookieName, tok, "/", int(h.Sessions.TTL().Seconds()))
	h.Log.Info("user logged in", "username", u.Username)
	c.JSON(http.StatusOK, gin.H{"username": u.Username, "role": u.Role, "redirect": authgate.DashboardPath})
}

func (h *handler) logout(c *gin.Context) {
	h.setCookie(c, authgate.CookieName, "", "/", -1)
	c.JSON(http.StatusOK, gin.H{"redirect": authgate.LoginPath})
}

// me — кто вошёл; токен проверяется по подписи и сроку.
func (h *handler) me(c *gin.Context) {
	tok, err := c.Cookie(authgate.CookieName)
	if err != nil || tok == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	sub, err := h.Sessions.Subject(tok)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": sub})
}
