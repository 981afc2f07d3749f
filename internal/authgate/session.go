package authgate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Spok95/graindesk/internal/domain/users"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// Sessions выпускает JWT для cookie "token" после проверки пароля.
type Sessions struct {
	users  users.Repository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(repo users.Repository, secret string, ttl time.Duration) (*Sessions, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Sessions{users: repo, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (s *Sessions) TTL() time.Duration { return s.ttl }

// Login возвращает подписанный токен; subject — имя пользователя.
func (s *Sessions) Login(ctx context.Context, username, password string) (string, *users.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil || !users.CheckPassword(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   u.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// Subject проверяет подпись и срок и отдаёт имя пользователя.
func (s *Sessions) Subject(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// SubjectKey — ключ gin.Context с именем пользователя после RequireSession.
const SubjectKey = "username"

// RequireSession пропускает дальше только запросы с действительным токеном.
// Для /api/ отвечает 401, для страниц сбрасывает cookie и ведёт на /login.
func RequireSession(s *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie(CookieName)
		if err == nil && tok != "" && s != nil {
			if sub, err := s.Subject(tok); err == nil {
				c.Set(SubjectKey, sub)
				c.Next()
				return
			}
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.SetCookie(CookieName, "", -1, "/", "", false, true)
		c.Redirect(http.StatusFound, LoginPath)
		c.Abort()
	}
}
