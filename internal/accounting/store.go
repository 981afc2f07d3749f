package accounting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"
)

// ErrNotConnected — для ключа нет сохранённого токена.
var ErrNotConnected = errors.New("accounting is not connected")

type Credential struct {
	Token     *oauth2.Token
	TenantID  string
	UpdatedAt time.Time
}

// CredentialStore — всё, что handoff'у нужно знать о хранении токенов.
type CredentialStore interface {
	Save(ctx context.Context, key string, c Credential) error
	Load(ctx context.Context, key string) (Credential, error)
	RefreshIfExpired(ctx context.Context, key string) (Credential, error)
}

// Backend — где физически лежат токены.
type Backend interface {
	Put(ctx context.Context, key string, c Credential) error
	Get(ctx context.Context, key string) (Credential, error)
}

type Store struct {
	backend Backend
	oauth   *oauth2.Config
	now     func() time.Time
	leeway  time.Duration
}

func NewStore(backend Backend, oauth *oauth2.Config) *Store {
	return &Store{backend: backend, oauth: oauth, now: time.Now, leeway: time.Minute}
}

func (s *Store) Save(ctx context.Context, key string, c Credential) error {
	if c.Token == nil || c.Token.AccessToken == "" {
		return errors.New("save credential: empty token")
	}
	c.UpdatedAt = s.now().UTC()
	return s.backend.Put(ctx, key, c)
}

func (s *Store) Load(ctx context.Context, key string) (Credential, error) {
	return s.backend.Get(ctx, key)
}

// RefreshIfExpired обновляет токен по refresh token, если до истечения меньше leeway.
func (s *Store) RefreshIfExpired(ctx context.Context, key string) (Credential, error) {
	c, err := s.backend.Get(ctx, key)
	if err != nil {
		return Credential{}, err
	}
	if c.Token.Expiry.IsZero() || s.now().Add(s.leeway).Before(c.Token.Expiry) {
		return c, nil
	}
	if c.Token.RefreshToken == "" {
		return Credential{}, fmt.Errorf("token expired and no refresh token: %w", ErrNotConnected)
	}
	// токен без access_token — TokenSource сразу пойдёт за новым
	tok, err := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: c.Token.RefreshToken}).Token()
	if err != nil {
		return Credential{}, fmt.Errorf("refresh token: %w", err)
	}
	c.Token = tok
	if err := s.Save(ctx, key, c); err != nil {
		return Credential{}, err
	}
	return c, nil
}

type PgBackend struct {
	pool *pgxpool.Pool
}

func NewPgBackend(pool *pgxpool.Pool) *PgBackend { return &PgBackend{pool: pool} }

func (b *PgBackend) Put(ctx context.Context, key string, c Credential) error {
	var expires *time.Time
	if !c.Token.Expiry.IsZero() {
		expires = &c.Token.Expiry
	}
	_, err := b.pool.Exec(ctx, `
		INSERT INTO accounting_credentials (key, access_token, refresh_token, token_type, expires_at, tenant_id, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (key) DO UPDATE SET
			access_token  = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_type    = EXCLUDED.token_type,
			expires_at    = EXCLUDED.expires_at,
			tenant_id     = EXCLUDED.tenant_id,
			updated_at    = EXCLUDED.updated_at
	`, key, c.Token.AccessToken, c.Token.RefreshToken, c.Token.TokenType, expires, c.TenantID, c.UpdatedAt)
	return err
}

func (b *PgBackend) Get(ctx context.Context, key string) (Credential, error) {
	var c Credential
	var tok oauth2.Token
	var expires *time.Time
	err := b.pool.QueryRow(ctx, `
		SELECT access_token, refresh_token, token_type, expires_at, tenant_id, updated_at
		FROM accounting_credentials WHERE key = $1
	`, key).Scan(&tok.AccessToken, &tok.RefreshToken, &tok.TokenType, &expires, &c.TenantID, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credential{}, ErrNotConnected
	}
	if err != nil {
		return Credential{}, err
	}
	if expires != nil {
		tok.Expiry = *expires
	}
	c.Token = &tok
	return c, nil
}

type MemoryBackend struct {
	mu sync.Mutex
	m  map[string]Credential
}

func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{m: map[string]Credential{}} }

func (b *MemoryBackend) Put(_ context.Context, key string, c Credential) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	tok := *c.Token
	c.Token = &tok
	b.m[key] = c
	return nil
}

func (b *MemoryBackend) Get(_ context.Context, key string) (Credential, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.m[key]
	if !ok {
		return Credential{}, ErrNotConnected
	}
	tok := *c.Token
	c.Token = &tok
	return c, nil
}
