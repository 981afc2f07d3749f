package accounting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Spok95/graindesk/internal/domain/contracts"
	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/infra/notify"
)

type provider struct {
	mu       sync.Mutex
	tokenReq url.Values
	invoices xeroInvoices
	tenantHd string
	failCode bool
}

func newProvider(t *testing.T) (*provider, Config) {
	t.Helper()
	p := &provider{}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client", user)
		assert.Equal(t, "secret", pass)
		p.mu.Lock()
		p.tokenReq = r.PostForm
		fail := p.failCode
		p.mu.Unlock()
		if fail {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-2","refresh_token":"rt-2","token_type":"Bearer","expires_in":1800}`))
	})
	mux.HandleFunc("/connections", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-2", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"tenantId":"p1","tenantType":"PRACTICE"},{"tenantId":"org-1","tenantType":"ORGANISATION"}]`))
	})
	mux.HandleFunc("/api/Invoices", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.tenantHd = r.Header.Get("xero-tenant-id")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&p.invoices))
		n := len(p.invoices.Invoices)
		p.mu.Unlock()
		var res xeroResult
		for i := 0; i < n; i++ {
			res.Invoices = append(res.Invoices, struct {
				InvoiceID     string `json:"InvoiceID"`
				InvoiceNumber string `json:"InvoiceNumber"`
				Reference     string `json:"Reference"`
			}{InvoiceID: "inv-" + string(rune('a'+i)), InvoiceNumber: "INV-000" + string(rune('1'+i))})
		}
		_ = json.NewEncoder(w).Encode(res)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return p, Config{
		ClientID:       "client",
		ClientSecret:   "secret",
		RedirectURI:    "http://localhost/accounting/callback",
		Scopes:         "openid offline_access accounting.transactions",
		AuthURL:        srv.URL + "/authorize",
		TokenURL:       srv.URL + "/token",
		APIURL:         srv.URL + "/api/",
		ConnectionsURL: srv.URL + "/connections",
	}
}

func TestConsentURL(t *testing.T) {
	_, cfg := newProvider(t)
	h := NewHandoff(cfg, NewStore(NewMemoryBackend(), cfg.OAuth()), nil, nil, nil)
	u, err := url.Parse(h.ConsentURL("st4te"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "/authorize", u.Path)
	assert.Equal(t, "client", q.Get("client_id"))
	assert.Equal(t, "http://localhost/accounting/callback", q.Get("redirect_uri"))
	assert.Equal(t, "openid offline_access accounting.transactions", q.Get("scope"))
	assert.Equal(t, "st4te", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	assert.Equal(t, DefaultTokenURL, cfg.TokenURL)
	assert.Equal(t, "default", cfg.OrgKey)
	assert.False(t, cfg.Configured())
	assert.Contains(t, cfg.OAuth().Scopes, "offline_access")
}

func TestCompleteStoresTokenAndTenant(t *testing.T) {
	p, cfg := newProvider(t)
	store := NewStore(NewMemoryBackend(), cfg.OAuth())
	rec := &notify.Recorder{}
	h := NewHandoff(cfg, store, rec, nil, nil)

	to, err := h.Complete(context.Background(), "default", "the-code")
	require.NoError(t, err)
	assert.Equal(t, RedirectConnected, to)
	assert.Equal(t, "the-code", p.tokenReq.Get("code"))
	assert.Equal(t, "authorization_code", p.tokenReq.Get("grant_type"))

	c, err := store.Load(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "at-2", c.Token.AccessToken)
	assert.Equal(t, "rt-2", c.Token.RefreshToken)
	assert.Equal(t, "org-1", c.TenantID)
	assert.False(t, c.UpdatedAt.IsZero())
	assert.Len(t, rec.Messages(), 1)
}

func TestCompleteMissingCode(t *testing.T) {
	_, cfg := newProvider(t)
	h := NewHandoff(cfg, NewStore(NewMemoryBackend(), cfg.OAuth()), nil, nil, nil)
	_, err := h.Complete(context.Background(), "default", "")
	assert.ErrorIs(t, err, ErrMissingCode)
}

func TestCompleteExchangeFailureRedirects(t *testing.T) {
	p, cfg := newProvider(t)
	p.failCode = true
	store := NewStore(NewMemoryBackend(), cfg.OAuth())
	h := NewHandoff(cfg, store, nil, nil, nil)

	to, err := h.Complete(context.Background(), "default", "bad")
	require.NoError(t, err)
	assert.Equal(t, RedirectFailed, to)
	_, err = store.Load(context.Background(), "default")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestRefreshIfExpired(t *testing.T) {
	p, cfg := newProvider(t)
	store := NewStore(NewMemoryBackend(), cfg.OAuth())
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", Credential{
		Token:    &oauth2.Token{AccessToken: "at-1", RefreshToken: "rt-1", Expiry: now.Add(10 * time.Minute)},
		TenantID: "org-1",
	}))
	c, err := store.RefreshIfExpired(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "at-1", c.Token.AccessToken)
	assert.Nil(t, p.tokenReq)

	now = now.Add(10 * time.Minute)
	c, err = store.RefreshIfExpired(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "at-2", c.Token.AccessToken)
	assert.Equal(t, "org-1", c.TenantID)
	assert.Equal(t, "refresh_token", p.tokenReq.Get("grant_type"))
	assert.Equal(t, "rt-1", p.tokenReq.Get("refresh_token"))

	saved, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "at-2", saved.Token.AccessToken)
}

func TestRefreshWithoutRefreshToken(t *testing.T) {
	_, cfg := newProvider(t)
	store := NewStore(NewMemoryBackend(), cfg.OAuth())
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "k", Credential{
		Token: &oauth2.Token{AccessToken: "at-1", Expiry: time.Now().Add(-time.Hour)},
	}))
	_, err := store.RefreshIfExpired(ctx, "k")
	assert.ErrorIs(t, err, ErrNotConnected)
}

type fakeContracts struct {
	m         map[string]contracts.Contract
	statuses  map[string]contracts.Status
	statusErr error
}

func (f *fakeContracts) Get(_ context.Context, id string) (contracts.Contract, error) {
	c, ok := f.m[id]
	if !ok {
		return contracts.Contract{}, fault.NotFound("get contract")
	}
	return c, nil
}

func (f *fakeContracts) SetStatus(_ context.Context, s contracts.Status, ids ...string) error {
	if f.statusErr != nil {
		return f.statusErr
	}
	for _, id := range ids {
		f.statuses[id] = s
	}
	return nil
}

func newContracts() *fakeContracts {
	return &fakeContracts{
		m: map[string]contracts.Contract{
			"c1": {
				ID: "c1", Number: "GD-1001", Season: "2026/27", Commodity: "Wheat", Grade: "APW1",
				Seller: contracts.PartyRef{ID: "s1", Name: "Wattle Farms"},
				Buyer:  contracts.PartyRef{ID: "b1", Name: "Acme Grain"},
				Tonnes: decimal.RequireFromString("120.5"), Price: decimal.RequireFromString("362.5"),
				Date:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), Status: contracts.StatusComplete,
			},
			"c2": {ID: "c2", Number: "GD-1002", Status: contracts.StatusInvoiced},
		},
		statuses: map[string]contracts.Status{},
	}
}

func connectedStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	store := NewStore(NewMemoryBackend(), cfg.OAuth())
	require.NoError(t, store.Save(context.Background(), "default", Credential{
		Token:    &oauth2.Token{AccessToken: "at-1", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)},
		TenantID: "org-1",
	}))
	return store
}

func TestInvoicerCreatesDraftInvoices(t *testing.T) {
	p, cfg := newProvider(t)
	cs := newContracts()
	rec := &notify.Recorder{}
	iv := NewInvoicer(cfg, connectedStore(t, cfg), cs, rec, nil, nil)

	out, err := iv.Create(context.Background(), "default", "c1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, Invoice{ContractID: "c1", InvoiceID: "inv-a", InvoiceNumber: "INV-0001"}, out[0])
	assert.Equal(t, "org-1", p.tenantHd)

	require.Len(t, p.invoices.Invoices, 1)
	inv := p.invoices.Invoices[0]
	assert.Equal(t, "ACCREC", inv.Type)
	assert.Equal(t, "DRAFT", inv.Status)
	assert.Equal(t, "Acme Grain", inv.Contact.Name)
	assert.Equal(t, "GD-1001", inv.Reference)
	assert.Equal(t, "2026-10-01", inv.Date)
	assert.Equal(t, "120.5", inv.LineItems[0].Quantity)
	assert.Equal(t, "362.50", inv.LineItems[0].UnitAmount)
	assert.Equal(t, "200", inv.LineItems[0].AccountCode)
	assert.Equal(t, "Contract GD-1001: Wheat APW1 2026/27 from Wattle Farms", inv.LineItems[0].Description)

	assert.Equal(t, contracts.StatusInvoiced, cs.statuses["c1"])
	assert.Len(t, rec.Messages(), 1)
}

func TestInvoicerKeepsInvoicesWhenStatusUpdateFails(t *testing.T) {
	p, cfg := newProvider(t)
	cs := newContracts()
	cs.statusErr = errors.New("connection reset")
	rec := &notify.Recorder{}
	iv := NewInvoicer(cfg, connectedStore(t, cfg), cs, rec, nil, nil)

	out, err := iv.Create(context.Background(), "default", "c1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "inv-a", out[0].InvoiceID)
	assert.Len(t, p.invoices.Invoices, 1)
	assert.Empty(t, cs.statuses)

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "c1")
}

func TestInvoicerRejectsAlreadyInvoiced(t *testing.T) {
	p, cfg := newProvider(t)
	cs := newContracts()
	iv := NewInvoicer(cfg, connectedStore(t, cfg), cs, nil, nil, nil)
	_, err := iv.Create(context.Background(), "default", "c1", "c2")
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))
	assert.Empty(t, p.invoices.Invoices)
	assert.Empty(t, cs.statuses)
}

func TestInvoicerNotConnected(t *testing.T) {
	_, cfg := newProvider(t)
	iv := NewInvoicer(cfg, NewStore(NewMemoryBackend(), cfg.OAuth()), newContracts(), nil, nil, nil)
	_, err := iv.Create(context.Background(), "default", "c1")
	assert.Equal(t, fault.KindProvider, fault.KindOf(err))
	assert.Equal(t, "Xero is not connected", fault.Message(err, ""))
	assert.True(t, errors.Is(err, ErrNotConnected))
}
