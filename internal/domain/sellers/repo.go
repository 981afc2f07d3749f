package sellers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/infra/db"
	"github.com/Spok95/graindesk/internal/query"
)

type Repository interface {
	List(ctx context.Context, q query.List) (query.Page[Seller], error)
	Get(ctx context.Context, id string) (Seller, error)
	Create(ctx context.Context, s Seller) (Seller, error)
	Update(ctx context.Context, s Seller) (Seller, error)
	Delete(ctx context.Context, ids ...string) error
	CountAll(ctx context.Context) (int, error)
}

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const selectCols = `SELECT id, legal_name, abn, main_ngr, additional_ngrs, address, contact_name,
	email, phone_number, credentials, created_at FROM sellers`

func scan(row pgx.Row) (Seller, error) {
	var s Seller
	err := row.Scan(&s.ID, &s.LegalName, &s.ABN, &s.MainNGR, &s.AdditionalNGRs, &s.Address,
		&s.ContactName, &s.Email, &s.PhoneNumber, &s.Credentials, &s.CreatedAt)
	return s, err
}

func (r *Repo) List(ctx context.Context, q query.List) (query.Page[Seller], error) {
	var f db.Filter
	f.Search(q.Search, searchColumns(q.SearchFields)...)
	if q.DateFrom != nil {
		f.Where("created_at >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		f.Where("created_at < ?", q.DateTo.AddDate(0, 0, 1))
	}

	countSQL, countArgs := f.Count("sellers")
	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return query.Page[Seller]{}, fmt.Errorf("count sellers: %w", err)
	}

	sql, args := f.Select(selectCols, q, columns, "created_at DESC, id")
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return query.Page[Seller]{}, fmt.Errorf("list sellers: %w", err)
	}
	defer rows.Close()

	out := make([]Seller, 0, q.Limit)
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return query.Page[Seller]{}, err
		}
		out = append(out, s)
	}
	return query.Page[Seller]{Data: out, Total: total}, rows.Err()
}

func searchColumns(fields []string) []string {
	if len(fields) == 0 {
		fields = []string{DefaultSearchField}
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if c, ok := columns[f]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (r *Repo) Get(ctx context.Context, id string) (Seller, error) {
	s, err := scan(r.pool.QueryRow(ctx, selectCols+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Seller{}, fault.NotFound("get seller")
	}
	return s, err
}

func (r *Repo) Create(ctx context.Context, s Seller) (Seller, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sellers (id, legal_name, abn, main_ngr, additional_ngrs, address, contact_name,
			email, phone_number, credentials, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, s.ID, s.LegalName, s.ABN, s.MainNGR, orEmpty(s.AdditionalNGRs), s.Address, s.ContactName,
		s.Email, s.PhoneNumber, orEmpty(s.Credentials), s.CreatedAt)
	if err != nil {
		return Seller{}, fmt.Errorf("insert seller: %w", err)
	}
	return s, nil
}

func (r *Repo) Update(ctx context.Context, s Seller) (Seller, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sellers SET legal_name=$2, abn=$3, main_ngr=$4, additional_ngrs=$5, address=$6,
			contact_name=$7, email=$8, phone_number=$9, credentials=$10
		WHERE id = $1
	`, s.ID, s.LegalName, s.ABN, s.MainNGR, orEmpty(s.AdditionalNGRs), s.Address, s.ContactName,
		s.Email, s.PhoneNumber, orEmpty(s.Credentials))
	if err != nil {
		return Seller{}, fmt.Errorf("update seller: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Seller{}, fault.NotFound("update seller")
	}
	return s, nil
}

func (r *Repo) Delete(ctx context.Context, ids ...string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sellers WHERE id = ANY($1)`, ids)
	return mapDeleteErr(err)
}

// mapDeleteErr: 23503 — на продавца ссылаются контракты.
func mapDeleteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return fault.Validation("delete seller", ErrHasContracts)
	}
	return fmt.Errorf("delete seller: %w", err)
}

func (r *Repo) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM sellers`).Scan(&n)
	return n, err
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
