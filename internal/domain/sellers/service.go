package sellers

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/graindesk/internal/fetch"
	"github.com/Spok95/graindesk/internal/form"
	"github.com/Spok95/graindesk/internal/query"
)

type Service struct {
	repo  Repository
	lists *fetch.Cache[query.Page[Seller]]
	items *fetch.Cache[Seller]
	log   *slog.Logger
	now   func() time.Time
}

func NewService(repo Repository, opts fetch.Options, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		lists: fetch.New[query.Page[Seller]]("sellers", opts, log),
		items: fetch.New[Seller]("seller", opts, log),
		log:   log,
		now:   time.Now,
	}
}

// load — учётки всегда приходят полным набором handler'ов
func load(s Seller) Seller {
	s.Credentials = MergeCredentials(s.Credentials)
	return s
}

func (s *Service) List(ctx context.Context, q query.List) (query.Page[Seller], error) {
	q = q.Normalize()
	if err := q.Validate(Table.Sortable()); err != nil {
		return query.Page[Seller]{}, err
	}
	return s.lists.Get(ctx, q.Key(), func(ctx context.Context) (query.Page[Seller], error) {
		p, err := s.repo.List(ctx, q)
		for i := range p.Data {
			p.Data[i] = load(p.Data[i])
		}
		return p, err
	})
}

func (s *Service) Get(ctx context.Context, id string) (Seller, error) {
	return s.items.Get(ctx, id, func(ctx context.Context) (Seller, error) {
		v, err := s.repo.Get(ctx, id)
		return load(v), err
	})
}

func Validate(v Seller) error {
	return form.Validate(v).Err()
}

func (s *Service) Create(ctx context.Context, v Seller) (Seller, error) {
	if err := Validate(v); err != nil {
		return Seller{}, err
	}
	v.ID = uuid.NewString()
	v.CreatedAt = s.now().UTC()
	v = load(v)

	saved, err := s.repo.Create(ctx, v)
	if err != nil {
		return Seller{}, err
	}
	fetch.Prepend(s.lists, saved)
	s.items.Set(saved.ID, saved)
	s.log.Info("seller created", "id", saved.ID, "legal_name", saved.LegalName)
	return saved, nil
}

func (s *Service) Update(ctx context.Context, v Seller) (saved Seller, changed bool, err error) {
	orig, err := s.repo.Get(ctx, v.ID)
	if err != nil {
		return Seller{}, false, err
	}
	orig = load(orig)
	v.CreatedAt = orig.CreatedAt
	v = load(v)

	edit := form.NewEdit(orig)
	edit.Set(v)
	if !edit.CanSave() {
		return orig, false, nil
	}
	if err := Validate(edit.Current()); err != nil {
		return Seller{}, false, err
	}
	saved, err = s.repo.Update(ctx, edit.Current())
	if err != nil {
		return Seller{}, false, err
	}
	s.items.Set(saved.ID, saved)
	s.lists.Invalidate()
	return saved, true, nil
}

func (s *Service) Delete(ctx context.Context, ids ...string) error {
	if err := s.repo.Delete(ctx, ids...); err != nil {
		return err
	}
	for _, id := range ids {
		s.items.Delete(id)
	}
	s.lists.Invalidate()
	s.log.Info("sellers deleted", "count", len(ids))
	return nil
}

func (s *Service) CountAll(ctx context.Context) (int, error) { return s.repo.CountAll(ctx) }

func (s *Service) Close() {
	s.lists.Close()
	s.items.Close()
}
