package buyers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/infra/db"
	"github.com/Spok95/graindesk/internal/query"
)

// Repository — хранилище покупателей. Удаление мягкое: запись остаётся и учитывается в CountAll.
type Repository interface {
	List(ctx context.Context, q query.List) (query.Page[Buyer], error)
	Get(ctx context.Context, id string) (Buyer, error)
	Create(ctx context.Context, b Buyer) (Buyer, error)
	Update(ctx context.Context, b Buyer) (Buyer, error)
	SoftDelete(ctx context.Context, ids ...string) error
	CountAll(ctx context.Context) (int, error)
}

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const selectCols = `SELECT id, legal_name, abn, office_address, contact_name, email, phone_number,
	account_number, contacts, deleted, created_at FROM buyers`

func scan(row pgx.Row) (Buyer, error) {
	var b Buyer
	err := row.Scan(&b.ID, &b.LegalName, &b.ABN, &b.OfficeAddress, &b.ContactName, &b.Email,
		&b.PhoneNumber, &b.AccountNumber, &b.Contacts, &b.Deleted, &b.CreatedAt)
	return b, err
}

func (r *Repo) List(ctx context.Context, q query.List) (query.Page[Buyer], error) {
	var f db.Filter
	f.Where("NOT deleted")
	f.Search(q.Search, searchColumns(q.SearchFields)...)
	if q.DateFrom != nil {
		f.Where("created_at >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		f.Where("created_at < ?", q.DateTo.AddDate(0, 0, 1))
	}

	countSQL, countArgs := f.Count("buyers")
	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return query.Page[Buyer]{}, fmt.Errorf("count buyers: %w", err)
	}

	sql, args := f.Select(selectCols, q, columns, "created_at DESC, id")
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return query.Page[Buyer]{}, fmt.Errorf("list buyers: %w", err)
	}
	defer rows.Close()

	out := make([]Buyer, 0, q.Limit)
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return query.Page[Buyer]{}, err
		}
		out = append(out, b)
	}
	return query.Page[Buyer]{Data: out, Total: total}, rows.Err()
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

func (r *Repo) Get(ctx context.Context, id string) (Buyer, error) {
	b, err := scan(r.pool.QueryRow(ctx, selectCols+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Buyer{}, fault.NotFound("get buyer")
	}
	return b, err
}

func (r *Repo) Create(ctx context.Context, b Buyer) (Buyer, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO buyers (id, legal_name, abn, office_address, contact_name, email, phone_number,
			account_number, contacts, deleted, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,false,$10)
	`, b.ID, b.LegalName, b.ABN, b.OfficeAddress, b.ContactName, b.Email, b.PhoneNumber,
		b.AccountNumber, contactsOrEmpty(b.Contacts), b.CreatedAt)
	if err != nil {
		return Buyer{}, fmt.Errorf("insert buyer: %w", err)
	}
	return b, nil
}

func (r *Repo) Update(ctx context.Context, b Buyer) (Buyer, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE buyers SET legal_name=$2, abn=$3, office_address=$4, contact_name=$5, email=$6,
			phone_number=$7, account_number=$8, contacts=$9
		WHERE id = $1 AND NOT deleted
	`, b.ID, b.LegalName, b.ABN, b.OfficeAddress, b.ContactName, b.Email, b.PhoneNumber,
		b.AccountNumber, contactsOrEmpty(b.Contacts))
	if err != nil {
		return Buyer{}, fmt.Errorf("update buyer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Buyer{}, fault.NotFound("update buyer")
	}
	return b, nil
}

func (r *Repo) SoftDelete(ctx context.Context, ids ...string) error {
	_, err := r.pool.Exec(ctx, `UPDATE buyers SET deleted = true WHERE id = ANY($1)`, ids)
	return err
}

func (r *Repo) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM buyers`).Scan(&n)
	return n, err
}

func contactsOrEmpty(c []ContactDetail) []ContactDetail {
	if c == nil {
		return []ContactDetail{}
	}
	return c
}
