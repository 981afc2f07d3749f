package accounting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/Spok95/graindesk/internal/infra/metrics"
	"github.com/Spok95/graindesk/internal/infra/notify"
)

// ErrMissingCode — callback пришёл без code, это ошибка клиента.
var ErrMissingCode = errors.New("missing authorization code")

const (
	RedirectConnected = "/settings?xero=connected"
	RedirectFailed    = "/settings?xero=failed"
)

// Handoff проводит OAuth2 подключение: consent URL → обмен code → поиск tenant → сохранение.
type Handoff struct {
	cfg    Config
	oauth  *oauth2.Config
	store  CredentialStore
	notify notify.Notifier
	hc     *http.Client
	log    *slog.Logger
}

func NewHandoff(cfg Config, store CredentialStore, n notify.Notifier, hc *http.Client, log *slog.Logger) *Handoff {
	if hc == nil {
		hc = http.DefaultClient
	}
	if n == nil {
		n = notify.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	cfg = cfg.WithDefaults()
	return &Handoff{cfg: cfg, oauth: cfg.OAuth(), store: store, notify: n, hc: hc, log: log}
}

func (h *Handoff) Configured() bool { return h.cfg.Configured() }

func (h *Handoff) OrgKey() string { return h.cfg.OrgKey }

func (h *Handoff) ConsentURL(state string) string {
	return h.oauth.AuthCodeURL(state)
}

// Complete обменивает code на токен и сохраняет его. Вернёт цель редиректа;
// ошибка обмена не отдаётся пользователю, только логируется.
func (h *Handoff) Complete(ctx context.Context, key, code string) (string, error) {
	if code == "" {
		return "", ErrMissingCode
	}
	if err := h.complete(ctx, key, code); err != nil {
		h.log.Error("accounting handoff failed", "key", key, "err", err)
		metrics.AccountingCallbacks.WithLabelValues("failed").Inc()
		return RedirectFailed, nil
	}
	metrics.AccountingCallbacks.WithLabelValues("connected").Inc()
	h.log.Info("accounting connected", "key", key)
	h.notify.Notify(ctx, "Xero подключён")
	return RedirectConnected, nil
}

func (h *Handoff) complete(ctx context.Context, key, code string) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, h.hc)
	tok, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	tenant, err := h.tenant(ctx, tok)
	if err != nil {
		return err
	}
	if err := h.store.Save(ctx, key, Credential{Token: tok, TenantID: tenant}); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

type connection struct {
	TenantID   string `json:"tenantId"`
	TenantType string `json:"tenantType"`
}

// tenant — первая организация среди подключений токена.
func (h *Handoff) tenant(ctx context.Context, tok *oauth2.Token) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.cfg.ConnectionsURL, nil)
	if err != nil {
		return "", err
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := h.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("list connections: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("list connections: status %d", resp.StatusCode)
	}
	var conns []connection
	if err := json.NewDecoder(resp.Body).Decode(&conns); err != nil {
		return "", fmt.Errorf("decode connections: %w", err)
	}
	for _, c := range conns {
		if c.TenantType == "ORGANISATION" && c.TenantID != "" {
			return c.TenantID, nil
		}
	}
	return "", errors.New("no organisation connected")
}
