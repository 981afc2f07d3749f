package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/memstore"
)

type Repository interface {
	All(ctx context.Context) ([]Note, error)
	Get(ctx context.Context, id string) (Note, error)
	Create(ctx context.Context, n Note) (Note, error)
	Update(ctx context.Context, n Note) (Note, error)
	Delete(ctx context.Context, ids ...string) error
}

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const selectCols = `SELECT id, notebook, broker_ref, body, noted_at FROM notes`

func scan(row pgx.Row) (Note, error) {
	var n Note
	var at time.Time
	if err := row.Scan(&n.ID, &n.Notebook, &n.BrokerRef, &n.Body, &at); err != nil {
		return n, err
	}
	at = at.UTC()
	n.Date = at.Format(DateLayout)
	n.Time = at.Format(TimeLayout)
	return n, nil
}

func (r *Repo) All(ctx context.Context) ([]Note, error) {
	rows, err := r.pool.Query(ctx, selectCols+` ORDER BY noted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()
	var out []Note
	for rows.Next() {
		n, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Note, error) {
	n, err := scan(r.pool.QueryRow(ctx, selectCols+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Note{}, fault.NotFound("get note")
	}
	return n, err
}

func (r *Repo) Create(ctx context.Context, n Note) (Note, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO notes (id, notebook, broker_ref, body, noted_at) VALUES ($1,$2,$3,$4,$5)`,
		n.ID, n.Notebook, n.BrokerRef, n.Body, n.At())
	if err != nil {
		return Note{}, fmt.Errorf("insert note: %w", err)
	}
	return n, nil
}

func (r *Repo) Update(ctx context.Context, n Note) (Note, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE notes SET notebook=$2, broker_ref=$3, body=$4, noted_at=$5 WHERE id = $1`,
		n.ID, n.Notebook, n.BrokerRef, n.Body, n.At())
	if err != nil {
		return Note{}, fmt.Errorf("update note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Note{}, fault.NotFound("update note")
	}
	return n, nil
}

func (r *Repo) Delete(ctx context.Context, ids ...string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = ANY($1)`, ids)
	return err
}

type Memory struct {
	rows *memstore.Store[Note]
}

func NewMemory(seed ...Note) *Memory {
	return &Memory{rows: memstore.New(Note.Key, seed...)}
}

func (m *Memory) All(context.Context) ([]Note, error) { return m.rows.All(nil), nil }

func (m *Memory) Get(_ context.Context, id string) (Note, error) {
	n, ok := m.rows.Get(id)
	if !ok {
		return Note{}, fault.NotFound("get note")
	}
	return n, nil
}

func (m *Memory) Create(_ context.Context, n Note) (Note, error) {
	m.rows.Insert(n)
	return n, nil
}

func (m *Memory) Update(_ context.Context, n Note) (Note, error) {
	if !m.rows.Replace(n) {
		return Note{}, fault.NotFound("update note")
	}
	return n, nil
}

func (m *Memory) Delete(_ context.Context, ids ...string) error {
	m.rows.Remove(ids...)
	return nil
}
