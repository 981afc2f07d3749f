package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Upsert(ctx context.Context, username, passwordHash string, role Role) (*User, error)
}

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// GetByUsername — nil, nil если пользователя нет.
func (r *Repo) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, role, created_at, updated_at
		FROM users WHERE username = $1
	`, normalize(username))

	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Upsert создаёт пользователя или меняет пароль существующему. Админа не понижаем.
func (r *Repo) Upsert(ctx context.Context, username, passwordHash string, role Role) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1,$2,$3)
		ON CONFLICT (username)
		DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			role          = CASE WHEN users.role = 'admin' THEN users.role ELSE EXCLUDED.role END,
			updated_at    = now()
		RETURNING id, username, password_hash, role, created_at, updated_at
	`, normalize(username), passwordHash, role)

	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &u, nil
}

func normalize(username string) string { return strings.ToLower(strings.TrimSpace(username)) }

// HashPassword — bcrypt с cost по умолчанию.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword — true, если пароль подходит к хэшу.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type Memory struct {
	mu    sync.Mutex
	next  int64
	users map[string]*User
}

func NewMemory() *Memory { return &Memory{users: map[string]*User{}} }

func (m *Memory) GetByUsername(_ context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[normalize(username)]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) Upsert(_ context.Context, username, passwordHash string, role Role) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := normalize(username)
	now := time.Now()
	u, ok := m.users[key]
	if !ok {
		m.next++
		u = &User{ID: m.next, Username: key, Role: role, CreatedAt: now}
		m.users[key] = u
	} else if u.Role != RoleAdmin {
		u.Role = role
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = now
	cp := *u
	return &cp, nil
}
