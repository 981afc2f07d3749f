package prices

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Spok95/graindesk/internal/fetch"
	"github.com/Spok95/graindesk/internal/form"
	"github.com/Spok95/graindesk/internal/query"
	"github.com/Spok95/graindesk/internal/search"
)

type Service struct {
	repo Repository
	all  *fetch.Cache[[]Price]
	log  *slog.Logger
}

func NewService(repo Repository, opts fetch.Options, log *slog.Logger) *Service {
	return &Service{repo: repo, all: fetch.New[[]Price]("prices", opts, log), log: log}
}

func (s *Service) load(ctx context.Context) ([]Price, error) {
	return s.all.Get(ctx, "all", s.repo.All)
}

// List — поиск применяется сразу (как при вводе в строку поиска), дальше период, сортировка, страница.
func (s *Service) List(ctx context.Context, q query.List) (query.Page[Price], error) {
	q = q.Normalize()
	if err := q.Validate(Table.Sortable()); err != nil {
		return query.Page[Price]{}, err
	}
	all, err := s.load(ctx)
	if err != nil {
		return query.Page[Price]{}, err
	}
	bar := search.NewBar(search.Eager, DefaultSearchField, Table.Fields...)
	bar.Select(q.SearchFields...)
	bar.Type(q.Search)
	rows := append([]Price(nil), bar.Apply(all)...)

	q.Search, q.SearchFields = "", nil
	return Table.Page(rows, q), nil
}

func Validate(p Price) error {
	errs := form.Validate(p)
	if !p.Price.IsPositive() {
		errs.Add("price", "must be greater than 0")
	}
	return errs.Err()
}

func (s *Service) Create(ctx context.Context, p Price) (Price, error) {
	if err := Validate(p); err != nil {
		return Price{}, err
	}
	p.ID = uuid.NewString()
	if err := s.repo.Create(ctx, p); err != nil {
		return Price{}, err
	}
	s.all.Invalidate()
	return p, nil
}

// Line — строка импорта с номером строки в файле.
type Line struct {
	N     int
	Price Price
}

// Import сохраняет все строки или ни одной. Ошибки — по номеру строки файла.
func (s *Service) Import(ctx context.Context, lines []Line) (int, error) {
	errs := form.Errors{}
	rows := make([]Price, 0, len(lines))
	for _, l := range lines {
		if err := Validate(l.Price); err != nil {
			fe, _ := form.FieldErrors(err)
			for k, v := range fe {
				errs.Add(fmt.Sprintf("row %d: %s", l.N, k), v)
			}
			continue
		}
		p := l.Price
		p.ID = uuid.NewString()
		rows = append(rows, p)
	}
	if err := errs.Err(); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := s.repo.Create(ctx, rows...); err != nil {
		return 0, err
	}
	s.all.Invalidate()
	s.log.Info("prices imported", "rows", len(rows))
	return len(rows), nil
}

func (s *Service) Close() { s.all.Close() }
