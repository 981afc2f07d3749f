package buyers

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Spok95/graindesk/internal/fetch"
	"github.com/Spok95/graindesk/internal/form"
	"github.com/Spok95/graindesk/internal/query"
)

// Service — проверки перед записью и кэш чтений поверх Repository.
type Service struct {
	repo  Repository
	lists *fetch.Cache[query.Page[Buyer]]
	items *fetch.Cache[Buyer]
	log   *slog.Logger
	now   func() time.Time
}

func NewService(repo Repository, opts fetch.Options, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		lists: fetch.New[query.Page[Buyer]]("buyers", opts, log),
		items: fetch.New[Buyer]("buyer", opts, log),
		log:   log,
		now:   time.Now,
	}
}

func (s *Service) List(ctx context.Context, q query.List) (query.Page[Buyer], error) {
	q = q.Normalize()
	if err := q.Validate(Table.Sortable()); err != nil {
		return query.Page[Buyer]{}, err
	}
	return s.lists.Get(ctx, q.Key(), func(ctx context.Context) (query.Page[Buyer], error) {
		return s.repo.List(ctx, q)
	})
}

func (s *Service) Get(ctx context.Context, id string) (Buyer, error) {
	return s.items.Get(ctx, id, func(ctx context.Context) (Buyer, error) {
		return s.repo.Get(ctx, id)
	})
}

// Validate — ошибки по полям; до хранилища такой покупатель не доходит.
func Validate(b Buyer) error {
	errs := form.Validate(b)
	errs.Merge(form.UniqueNames("contactDetails", b.contactNames()))
	return errs.Err()
}

func (s *Service) Create(ctx context.Context, b Buyer) (Buyer, error) {
	if err := Validate(b); err != nil {
		return Buyer{}, err
	}
	b.ID = uuid.NewString()
	b.Deleted = false
	b.CreatedAt = s.now().UTC()

	saved, err := s.repo.Create(ctx, b)
	if err != nil {
		return Buyer{}, err
	}
	fetch.Prepend(s.lists, saved)
	s.items.Set(saved.ID, saved)
	s.log.Info("buyer created", "id", saved.ID, "legal_name", saved.LegalName)
	return saved, nil
}

// Update пишет только если форма отличается от сохранённой версии. changed=false — записи не было.
func (s *Service) Update(ctx context.Context, b Buyer) (saved Buyer, changed bool, err error) {
	orig, err := s.repo.Get(ctx, b.ID)
	if err != nil {
		return Buyer{}, false, err
	}
	b.Deleted = orig.Deleted
	b.CreatedAt = orig.CreatedAt

	edit := form.NewEdit(orig)
	edit.Set(b)
	if !edit.CanSave() {
		return orig, false, nil
	}
	if err := Validate(edit.Current()); err != nil {
		return Buyer{}, false, err
	}
	saved, err = s.repo.Update(ctx, edit.Current())
	if err != nil {
		return Buyer{}, false, err
	}
	edit.Commit(saved)
	s.items.Set(saved.ID, saved)
	s.lists.Invalidate()
	return saved, true, nil
}

func (s *Service) Delete(ctx context.Context, ids ...string) error {
	if err := s.repo.SoftDelete(ctx, ids...); err != nil {
		return err
	}
	for _, id := range ids {
		s.items.Delete(id)
	}
	s.lists.Invalidate()
	s.log.Info("buyers deleted", "count", len(ids))
	return nil
}

func (s *Service) CountAll(ctx context.Context) (int, error) { return s.repo.CountAll(ctx) }

// Active — число активных (не удалённых) покупателей.
func (s *Service) Active(ctx context.Context) (int, error) {
	p, err := s.List(ctx, query.List{Page: 1, Limit: query.DefaultLimit})
	return p.Total, err
}

func (s *Service) Close() {
	s.lists.Close()
	s.items.Close()
}
