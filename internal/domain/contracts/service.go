package contracts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/fetch"
	"github.com/Spok95/graindesk/internal/form"
	"github.com/Spok95/graindesk/internal/listview"
	"github.com/Spok95/graindesk/internal/query"
)

// Parties подставляет имена продавца и покупателя по id. nil-функция — без проверки.
type Parties struct {
	Seller func(ctx context.Context, id string) (PartyRef, error)
	Buyer  func(ctx context.Context, id string) (PartyRef, error)
}

type Service struct {
	repo    Repository
	parties Parties
	lists   *fetch.Cache[query.Page[Contract]]
	items   *fetch.Cache[Contract]
	log     *slog.Logger
	now     func() time.Time
}

func NewService(repo Repository, parties Parties, opts fetch.Options, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		parties: parties,
		lists:   fetch.New[query.Page[Contract]]("contracts", opts, log),
		items:   fetch.New[Contract]("contract", opts, log),
		log:     log,
		now:     time.Now,
	}
}

func (s *Service) List(ctx context.Context, q query.List) (query.Page[Contract], error) {
	q = q.Normalize()
	if err := q.Validate(Table.Sortable()); err != nil {
		return query.Page[Contract]{}, err
	}
	if q.Status != "" && !Status(q.Status).Valid() {
		return query.Page[Contract]{}, fault.Validation("list contracts", fmt.Errorf("unknown status %q", q.Status))
	}
	return s.lists.Get(ctx, q.Key(), func(ctx context.Context) (query.Page[Contract], error) {
		return s.repo.List(ctx, q)
	})
}

// Invoiced — вид «выставленные счета»: только контракты со статусом Invoiced.
func (s *Service) Invoiced(ctx context.Context, q query.List) (query.Page[Contract], error) {
	q.Status = string(StatusInvoiced)
	return s.List(ctx, q)
}

func (s *Service) Get(ctx context.Context, id string) (Contract, error) {
	return s.items.Get(ctx, id, func(ctx context.Context) (Contract, error) {
		return s.repo.Get(ctx, id)
	})
}

// Validate проверяет поля формы контракта.
func Validate(c Contract) error {
	errs := form.Validate(c)
	if !c.Tonnes.IsPositive() {
		errs.Add("tonnes", "must be greater than 0")
	}
	if c.Price.IsNegative() {
		errs.Add("contractPrice", "must not be negative")
	}
	if c.Status != "" && !c.Status.Valid() {
		errs.Add("status", "must be one of: Not done, Complete, Invoiced")
	}
	return errs.Err()
}

func (s *Service) resolve(ctx context.Context, c Contract) (Contract, error) {
	errs := form.Errors{}
	lookup := func(field string, ref *PartyRef, fn func(context.Context, string) (PartyRef, error)) error {
		if fn == nil {
			return nil
		}
		p, err := fn(ctx, ref.ID)
		if fault.KindOf(err) == fault.KindNotFound {
			errs.Add(field+".id", "does not exist")
			return nil
		}
		if err != nil {
			return err
		}
		*ref = p
		return nil
	}
	if err := lookup("grower", &c.Seller, s.parties.Seller); err != nil {
		return c, err
	}
	if err := lookup("buyer", &c.Buyer, s.parties.Buyer); err != nil {
		return c, err
	}
	return c, errs.Err()
}

func (s *Service) Create(ctx context.Context, c Contract) (Contract, error) {
	if c.Status == "" {
		c.Status = StatusNotDone
	}
	if err := Validate(c); err != nil {
		return Contract{}, err
	}
	c, err := s.resolve(ctx, c)
	if err != nil {
		return Contract{}, err
	}
	c.ID = uuid.NewString()
	c.CreatedAt = s.now().UTC()

	saved, err := s.repo.Create(ctx, c)
	if err != nil {
		return Contract{}, err
	}
	fetch.Prepend(s.lists, saved)
	s.items.Set(saved.ID, saved)
	s.log.Info("contract created", "id", saved.ID, "number", saved.Number)
	return saved, nil
}

func (s *Service) Update(ctx context.Context, c Contract) (saved Contract, changed bool, err error) {
	orig, err := s.repo.Get(ctx, c.ID)
	if err != nil {
		return Contract{}, false, err
	}
	c.CreatedAt = orig.CreatedAt
	if c.Status == "" {
		c.Status = orig.Status
	}
	// имена сторон в форме не редактируются
	if c.Seller.ID == orig.Seller.ID {
		c.Seller = orig.Seller
	}
	if c.Buyer.ID == orig.Buyer.ID {
		c.Buyer = orig.Buyer
	}

	edit := form.NewEdit(orig)
	edit.Set(c)
	if !edit.CanSave() {
		return orig, false, nil
	}
	if err := Validate(edit.Current()); err != nil {
		return Contract{}, false, err
	}
	next, err := s.resolve(ctx, edit.Current())
	if err != nil {
		return Contract{}, false, err
	}
	saved, err = s.repo.Update(ctx, next)
	if err != nil {
		return Contract{}, false, err
	}
	s.items.Set(saved.ID, saved)
	s.lists.Invalidate()
	return saved, true, nil
}

func (s *Service) Delete(ctx context.Context, ids ...string) error {
	if err := s.repo.Delete(ctx, ids...); err != nil {
		return err
	}
	s.forget(ids)
	s.log.Info("contracts deleted", "count", len(ids))
	return nil
}

func (s *Service) SetStatus(ctx context.Context, status Status, ids ...string) error {
	if !status.Valid() {
		return fault.Validation("set status", fmt.Errorf("unknown status %q", status))
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.repo.SetStatus(ctx, status, ids...); err != nil {
		return err
	}
	s.forget(ids)
	s.log.Info("contract status changed", "status", status, "count", len(ids))
	return nil
}

func (s *Service) forget(ids []string) {
	for _, id := range ids {
		s.items.Delete(id)
	}
	s.lists.Invalidate()
}

func (s *Service) CountAll(ctx context.Context) (int, error) { return s.repo.CountAll(ctx) }

func (s *Service) Stats(ctx context.Context) (Stats, error) { return s.repo.Stats(ctx) }

// ErrReadOnlyColumn — колонку нельзя править из таблицы.
var ErrReadOnlyColumn = errors.New("column is not editable")

// редактируемые из таблицы колонки
var cellSetters = map[string]func(c *Contract, v string) error{
	"season":              func(c *Contract, v string) error { c.Season = v; return nil },
	"grade":               func(c *Contract, v string) error { c.Grade = v; return nil },
	"notes":               func(c *Contract, v string) error { c.Notes = v; return nil },
	"deliveryDestination": func(c *Contract, v string) error { c.Destination = v; return nil },
	"conveyanceType":      func(c *Contract, v string) error { c.Conveyance = v; return nil },
	"status": func(c *Contract, v string) error {
		c.Status = Status(v)
		return nil
	},
	"tonnes": func(c *Contract, v string) (err error) {
		c.Tonnes, err = decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(v), ",", ""))
		return err
	},
	"contractPrice": func(c *Contract, v string) (err error) {
		c.Price, err = decimal.NewFromString(strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), "$"))
		return err
	},
}

// ApplyCells сохраняет правки ячеек таблицы: по строке — одно обновление.
// Успешно сохранённые строки убираются из cells, с ошибками — остаются.
func (s *Service) ApplyCells(ctx context.Context, cells *listview.Cells) ([]Contract, error) {
	var saved []Contract
	errs := form.Errors{}
	for _, row := range cells.Rows() {
		orig, err := s.repo.Get(ctx, row)
		if err != nil {
			return saved, err
		}
		next := orig
		bad := false
		for col, v := range cells.Row(row) {
			set, ok := cellSetters[col]
			if !ok {
				errs.Add(row+"."+col, ErrReadOnlyColumn.Error())
				bad = true
				continue
			}
			if err := set(&next, v); err != nil {
				errs.Add(row+"."+col, "is invalid")
				bad = true
			}
		}
		if bad {
			continue
		}
		c, changed, err := s.Update(ctx, next)
		if fe, ok := form.FieldErrors(err); ok {
			for k, v := range fe {
				errs.Add(row+"."+k, v)
			}
			continue
		}
		if err != nil {
			return saved, err
		}
		cells.Reset(row)
		if changed {
			saved = append(saved, c)
		}
	}
	return saved, errs.Err()
}

func (s *Service) Close() {
	s.lists.Close()
	s.items.Close()
}
