package buyers

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/fetch"
	"github.com/Spok95/graindesk/internal/form"
	"github.com/Spok95/graindesk/internal/query"
)

type spyRepo struct {
	Repository
	lists   atomic.Int32
	creates atomic.Int32
	updates atomic.Int32
}

func (s *spyRepo) List(ctx context.Context, q query.List) (query.Page[Buyer], error) {
	s.lists.Add(1)
	return s.Repository.List(ctx, q)
}

func (s *spyRepo) Create(ctx context.Context, b Buyer) (Buyer, error) {
	s.creates.Add(1)
	return s.Repository.Create(ctx, b)
}

func (s *spyRepo) Update(ctx context.Context, b Buyer) (Buyer, error) {
	s.updates.Add(1)
	return s.Repository.Update(ctx, b)
}

func seed() []Buyer {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []Buyer{
		{ID: "b2", LegalName: "Riverina Mills", ABN: "98 765 432 109", OfficeAddress: "1 Mill Rd", Email: "a@riverina.example", PhoneNumber: "0400 000 001", CreatedAt: base.AddDate(0, 0, 2)},
		{ID: "b1", LegalName: "Coastal Feeds", ABN: "11 222 333 444", OfficeAddress: "2 Port St", Email: "b@coastal.example", PhoneNumber: "0400 000 002", CreatedAt: base},
	}
}

func newService(t *testing.T) (*Service, *spyRepo) {
	t.Helper()
	repo := &spyRepo{Repository: NewMemory(seed()...)}
	s := NewService(repo, fetch.Options{StaleAfter: time.Hour, MaxRetries: 3, Backoff: time.Millisecond},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(s.Close)
	return s, repo
}

func acme() Buyer {
	return Buyer{
		LegalName:     "Acme Grain Co",
		ABN:           "12 345 678 901",
		OfficeAddress: "10 Silo Lane, Dubbo NSW",
		ContactName:   "Sam Lee",
		Email:         "sam@acme.example",
		PhoneNumber:   "0400 123 456",
	}
}

func TestCreatePrependsToCachedList(t *testing.T) {
	s, repo := newService(t)
	ctx := context.Background()

	p, err := s.List(ctx, query.List{})
	require.NoError(t, err)
	require.Equal(t, 2, p.Total)
	require.EqualValues(t, 1, repo.lists.Load())

	created, err := s.Create(ctx, acme())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	p, err = s.List(ctx, query.List{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, repo.lists.Load(), "served from the patched cache")
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, "Acme Grain Co", p.Data[0].LegalName)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreateRejectsInvalidEmailWithoutTouchingStore(t *testing.T) {
	s, repo := newService(t)
	b := acme()
	b.Email = "not-an-email"

	_, err := s.Create(context.Background(), b)
	require.Error(t, err)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))
	fields, ok := form.FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Zero(t, repo.creates.Load())
}

func TestCreateRejectsDuplicateContacts(t *testing.T) {
	s, repo := newService(t)
	b := acme()
	b.Contacts = []ContactDetail{{Name: "Sam"}, {Name: "sam"}}

	_, err := s.Create(context.Background(), b)
	fields, ok := form.FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, "duplicate contact name", fields["contactDetails[1].name"])
	assert.Zero(t, repo.creates.Load())
}

func TestSoftDeleteKeepsStoreCount(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	before, err := s.CountAll(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "b1"))

	p, err := s.List(ctx, query.List{})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Total)
	assert.Equal(t, "b2", p.Data[0].ID)

	after, err := s.CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	active, err := s.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, active)
}

func TestUpdateSkipsUnchangedForm(t *testing.T) {
	s, repo := newService(t)
	ctx := context.Background()
	orig, err := s.Get(ctx, "b1")
	require.NoError(t, err)

	same := orig
	same.Contacts = []ContactDetail{}
	_, changed, err := s.Update(ctx, same)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Zero(t, repo.updates.Load())

	edited := orig
	edited.AccountNumber = "ACC-77"
	saved, changed, err := s.Update(ctx, edited)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "ACC-77", saved.AccountNumber)
	assert.Equal(t, orig.CreatedAt, saved.CreatedAt)

	got, err := s.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "ACC-77", got.AccountNumber)
}

func TestListSearchAndValidation(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	p, err := s.List(ctx, query.List{Search: "coastal"})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Total)

	p, err = s.List(ctx, query.List{Search: "0400 000 002", SearchFields: []string{"email", "abn"}})
	require.NoError(t, err)
	assert.Zero(t, p.Total)

	p, err = s.List(ctx, query.List{SortBy: "legalName"})
	require.NoError(t, err)
	assert.Equal(t, "Coastal Feeds", p.Data[0].LegalName)

	_, err = s.List(ctx, query.List{Limit: 7})
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))

	_, err = s.Get(ctx, "missing")
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}
