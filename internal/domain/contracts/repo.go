package contracts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/infra/db"
	"github.com/Spok95/graindesk/internal/query"
)

type Repository interface {
	List(ctx context.Context, q query.List) (query.Page[Contract], error)
	Get(ctx context.Context, id string) (Contract, error)
	Create(ctx context.Context, c Contract) (Contract, error)
	Update(ctx context.Context, c Contract) (Contract, error)
	Delete(ctx context.Context, ids ...string) error
	SetStatus(ctx context.Context, status Status, ids ...string) error
	CountAll(ctx context.Context) (int, error)
	Stats(ctx context.Context) (Stats, error)
}

// ErrDuplicateNumber — номер контракта уже занят.
var ErrDuplicateNumber = errors.New("contract number already exists")

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const fromJoined = `contracts c
	JOIN sellers s ON s.id = c.seller_id
	JOIN buyers b ON b.id = c.buyer_id`

// numeric читаем как text — так точность decimal не теряется
const selectCols = `SELECT c.id, c.contract_number, c.season, c.seller_id, s.legal_name, s.main_ngr,
	c.buyer_id, b.legal_name, c.commodity, c.grade, c.tonnes::text, c.price::text, c.destination,
	c.conveyance, c.contract_date, c.status, c.notes, c.created_at FROM ` + fromJoined

func scan(row pgx.Row) (Contract, error) {
	var c Contract
	var tonnes, price string
	err := row.Scan(&c.ID, &c.Number, &c.Season, &c.Seller.ID, &c.Seller.Name, &c.Seller.NGR,
		&c.Buyer.ID, &c.Buyer.Name, &c.Commodity, &c.Grade, &tonnes, &price, &c.Destination,
		&c.Conveyance, &c.Date, &c.Status, &c.Notes, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	if c.Tonnes, err = decimal.NewFromString(tonnes); err != nil {
		return c, fmt.Errorf("tonnes: %w", err)
	}
	if c.Price, err = decimal.NewFromString(price); err != nil {
		return c, fmt.Errorf("price: %w", err)
	}
	return c, nil
}

func (r *Repo) List(ctx context.Context, q query.List) (query.Page[Contract], error) {
	f := db.Filter{ID: "c.id"}
	f.Search(q.Search, searchColumns(q.SearchFields)...)
	if q.Status != "" {
		f.Where("c.status = ?", q.Status)
	}
	if q.DateFrom != nil {
		f.Where("c.contract_date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		f.Where("c.contract_date <= ?", *q.DateTo)
	}

	countSQL, countArgs := f.Count(fromJoined)
	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return query.Page[Contract]{}, fmt.Errorf("count contracts: %w", err)
	}

	sql, args := f.Select(selectCols, q, columns, "c.contract_date DESC, c.id")
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return query.Page[Contract]{}, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	out := make([]Contract, 0, q.Limit)
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return query.Page[Contract]{}, err
		}
		out = append(out, c)
	}
	return query.Page[Contract]{Data: out, Total: total}, rows.Err()
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

func (r *Repo) Get(ctx context.Context, id string) (Contract, error) {
	c, err := scan(r.pool.QueryRow(ctx, selectCols+` WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Contract{}, fault.NotFound("get contract")
	}
	return c, err
}

func (r *Repo) Create(ctx context.Context, c Contract) (Contract, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO contracts (id, contract_number, season, seller_id, buyer_id, commodity, grade,
			tonnes, price, destination, conveyance, contract_date, status, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8::text::numeric,$9::text::numeric,$10,$11,$12,$13,$14,$15)
	`, c.ID, c.Number, c.Season, c.Seller.ID, c.Buyer.ID, c.Commodity, c.Grade,
		c.Tonnes.String(), c.Price.String(), c.Destination, c.Conveyance, c.Date, c.Status, c.Notes, c.CreatedAt)
	if err != nil {
		return Contract{}, mapWriteErr("insert contract", err)
	}
	return r.Get(ctx, c.ID)
}

func (r *Repo) Update(ctx context.Context, c Contract) (Contract, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contracts SET contract_number=$2, season=$3, seller_id=$4, buyer_id=$5, commodity=$6,
			grade=$7, tonnes=$8::text::numeric, price=$9::text::numeric, destination=$10, conveyance=$11,
			contract_date=$12, status=$13, notes=$14
		WHERE id = $1
	`, c.ID, c.Number, c.Season, c.Seller.ID, c.Buyer.ID, c.Commodity, c.Grade,
		c.Tonnes.String(), c.Price.String(), c.Destination, c.Conveyance, c.Date, c.Status, c.Notes)
	if err != nil {
		return Contract{}, mapWriteErr("update contract", err)
	}
	if tag.RowsAffected() == 0 {
		return Contract{}, fault.NotFound("update contract")
	}
	return r.Get(ctx, c.ID)
}

func mapWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fault.Validation(op, ErrDuplicateNumber)
		case "23503":
			return fault.Validation(op, errors.New("grower or buyer does not exist"))
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *Repo) Delete(ctx context.Context, ids ...string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM contracts WHERE id = ANY($1)`, ids)
	return err
}

func (r *Repo) SetStatus(ctx context.Context, status Status, ids ...string) error {
	_, err := r.pool.Exec(ctx, `UPDATE contracts SET status = $1 WHERE id = ANY($2)`, status, ids)
	return err
}

func (r *Repo) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM contracts`).Scan(&n)
	return n, err
}

func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, count(*), coalesce(sum(tonnes), 0)::text, coalesce(sum(tonnes * price), 0)::text
		FROM contracts GROUP BY status
	`)
	if err != nil {
		return Stats{}, fmt.Errorf("contract stats: %w", err)
	}
	defer rows.Close()

	st := Stats{ByStatus: map[Status]int{}}
	for rows.Next() {
		var status Status
		var n int
		var tonnes, value string
		if err := rows.Scan(&status, &n, &tonnes, &value); err != nil {
			return Stats{}, err
		}
		st.ByStatus[status] = n
		st.Total += n
		st.Tonnes = st.Tonnes.Add(decimal.RequireFromString(tonnes))
		st.Value = st.Value.Add(decimal.RequireFromString(value))
	}
	return st, rows.Err()
}
