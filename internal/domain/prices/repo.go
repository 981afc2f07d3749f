package prices

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Spok95/graindesk/internal/memstore"
)

type Repository interface {
	All(ctx context.Context) ([]Price, error)
	Create(ctx context.Context, ps ...Price) error
}

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) All(ctx context.Context) ([]Price, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, commodity, price_date, price::text, quality, comment
		FROM historical_prices ORDER BY price_date DESC, commodity
	`)
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	defer rows.Close()

	var out []Price
	for rows.Next() {
		var p Price
		var price string
		if err := rows.Scan(&p.ID, &p.Commodity, &p.Date, &price, &p.Quality, &p.Comment); err != nil {
			return nil, err
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("price %s: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create — пачкой в одной транзакции (импорт либо весь, либо ничего).
func (r *Repo) Create(ctx context.Context, ps ...Price) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, p := range ps {
		batch.Queue(`
			INSERT INTO historical_prices (id, commodity, price_date, price, quality, comment)
			VALUES ($1,$2,$3,$4::text::numeric,$5,$6)
		`, p.ID, p.Commodity, p.Date, p.Price.String(), p.Quality, p.Comment)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert prices: %w", err)
	}
	return tx.Commit(ctx)
}

type Memory struct {
	rows *memstore.Store[Price]
}

func NewMemory(seed ...Price) *Memory {
	return &Memory{rows: memstore.New(Price.Key, seed...)}
}

func (m *Memory) All(context.Context) ([]Price, error) { return m.rows.All(nil), nil }

func (m *Memory) Create(_ context.Context, ps ...Price) error {
	for _, p := range ps {
		m.rows.Insert(p)
	}
	return nil
}
