// Package authgate решает, пускать ли запрос дальше, по наличию cookie сессии и пути.
package authgate

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const CookieName = "token"

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

var authRoutes = []string{"/login", "/register", "/verify-email", "/reset-password"}

var assetPrefixes = []string{"/static/", "/assets/", "/_next/"}

var assetFiles = []string{"/favicon.ico", "/robots.txt"}

// Decision: Pass — пропустить, иначе редирект на Redirect.
type Decision struct {
	Pass     bool
	Redirect string
}

func pass() Decision              { return Decision{Pass: true} }
func redirect(to string) Decision { return Decision{Redirect: to} }

func IsAuthRoute(path string) bool { return matchRoute(path, authRoutes) }

func IsAsset(path string) bool {
	for _, pre := range assetPrefixes {
		if strings.HasPrefix(path, pre) {
			return true
		}
	}
	return contains(assetFiles, path)
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// matchRoute — точное совпадение или вложенный путь (/reset-password/abc).
func matchRoute(path string, routes []string) bool {
	for _, r := range routes {
		if path == r || strings.HasPrefix(path, r+"/") {
			return true
		}
	}
	return false
}

// Decide — чистая функция. Токен не проверяется, важно только наличие.
func Decide(hasSession bool, path string) Decision {
	switch {
	case IsAsset(path), strings.HasPrefix(path, "/api/auth/"):
		return pass()
	case path == "/" || path == "":
		if hasSession {
			return redirect(DashboardPath)
		}
		return redirect(LoginPath)
	case IsAuthRoute(path):
		if hasSession {
			return redirect(DashboardPath)
		}
		return pass()
	case hasSession:
		return pass()
	default:
		return redirect(LoginPath)
	}
}

// Middleware применяет Decide к каждому запросу. Для /api/ вместо редиректа — 401.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie(CookieName)
		d := Decide(err == nil && tok != "", c.Request.URL.Path)
		if d.Pass {
			c.Next()
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Redirect(http.StatusFound, d.Redirect)
		c.Abort()
	}
}
