package notes

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/graindesk/internal/fetch"
	"github.com/Spok95/graindesk/internal/form"
	"github.com/Spok95/graindesk/internal/query"
	"github.com/Spok95/graindesk/internal/search"
)

type Service struct {
	repo Repository
	all  *fetch.Cache[[]Note]
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo Repository, opts fetch.Options, log *slog.Logger) *Service {
	return &Service{repo: repo, all: fetch.New[[]Note]("notes", opts, log), log: log, now: time.Now}
}

func (s *Service) List(ctx context.Context, q query.List) (query.Page[Note], error) {
	q = q.Normalize()
	if err := q.Validate(Table.Sortable()); err != nil {
		return query.Page[Note]{}, err
	}
	all, err := s.all.Get(ctx, "all", s.repo.All)
	if err != nil {
		return query.Page[Note]{}, err
	}
	bar := search.NewBar(search.Eager, DefaultSearchField, Table.Fields...)
	bar.Select(q.SearchFields...)
	bar.Type(q.Search)
	rows := append([]Note(nil), bar.Apply(all)...)

	q.Search, q.SearchFields = "", nil
	return Table.Page(rows, q), nil
}

func (s *Service) Get(ctx context.Context, id string) (Note, error) { return s.repo.Get(ctx, id) }

func Validate(n Note) error {
	errs := form.Validate(n)
	if n.Date != "" {
		if _, err := time.Parse(DateLayout, n.Date); err != nil {
			errs.Add("date", "must be a date (YYYY-MM-DD)")
		}
	}
	if n.Time != "" {
		if _, err := time.Parse(TimeLayout, n.Time); err != nil {
			errs.Add("time", "must be a time (HH:MM)")
		}
	}
	return errs.Err()
}

func (s *Service) Create(ctx context.Context, n Note) (Note, error) {
	now := s.now()
	if n.Date == "" {
		n.Date = now.Format(DateLayout)
	}
	if n.Time == "" {
		n.Time = now.Format(TimeLayout)
	}
	if err := Validate(n); err != nil {
		return Note{}, err
	}
	n.ID = uuid.NewString()
	saved, err := s.repo.Create(ctx, n)
	if err != nil {
		return Note{}, err
	}
	s.all.Invalidate()
	return saved, nil
}

func (s *Service) Update(ctx context.Context, n Note) (saved Note, changed bool, err error) {
	orig, err := s.repo.Get(ctx, n.ID)
	if err != nil {
		return Note{}, false, err
	}
	edit := form.NewEdit(orig)
	edit.Set(n)
	if !edit.CanSave() {
		return orig, false, nil
	}
	if err := Validate(n); err != nil {
		return Note{}, false, err
	}
	if saved, err = s.repo.Update(ctx, n); err != nil {
		return Note{}, false, err
	}
	s.all.Invalidate()
	return saved, true, nil
}

func (s *Service) Delete(ctx context.Context, ids ...string) error {
	if err := s.repo.Delete(ctx, ids...); err != nil {
		return err
	}
	s.all.Invalidate()
	return nil
}

func (s *Service) Close() { s.all.Close() }
