package accounting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Spok95/graindesk/internal/domain/contracts"
	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/form"
	"github.com/Spok95/graindesk/internal/infra/metrics"
	"github.com/Spok95/graindesk/internal/infra/notify"
)

// Contracts — то, что нужно Invoicer'у от сервиса контрактов.
type Contracts interface {
	Get(ctx context.Context, id string) (contracts.Contract, error)
	SetStatus(ctx context.Context, status contracts.Status, ids ...string) error
}

type Invoicer struct {
	cfg       Config
	store     CredentialStore
	contracts Contracts
	notify    notify.Notifier
	hc        *http.Client
	log       *slog.Logger
}

func NewInvoicer(cfg Config, store CredentialStore, cs Contracts, n notify.Notifier, hc *http.Client, log *slog.Logger) *Invoicer {
	if hc == nil {
		hc = http.DefaultClient
	}
	if n == nil {
		n = notify.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Invoicer{cfg: cfg.WithDefaults(), store: store, contracts: cs, notify: n, hc: hc, log: log}
}

type Invoice struct {
	ContractID    string `json:"contractId"`
	InvoiceID     string `json:"invoiceId"`
	InvoiceNumber string `json:"invoiceNumber"`
}

type xeroContact struct {
	Name string `json:"Name"`
}

type xeroLine struct {
	Description string `json:"Description"`
	Quantity    string `json:"Quantity"`
	UnitAmount  string `json:"UnitAmount"`
	AccountCode string `json:"AccountCode"`
}

type xeroInvoice struct {
	Type            string      `json:"Type"`
	Contact         xeroContact `json:"Contact"`
	Date            string      `json:"Date"`
	Reference       string      `json:"Reference"`
	Status          string      `json:"Status"`
	LineAmountTypes string      `json:"LineAmountTypes"`
	LineItems       []xeroLine  `json:"LineItems"`
}

type xeroInvoices struct {
	Invoices []xeroInvoice `json:"Invoices"`
}

type xeroResult struct {
	Invoices []struct {
		InvoiceID     string `json:"InvoiceID"`
		InvoiceNumber string `json:"InvoiceNumber"`
		Reference     string `json:"Reference"`
	} `json:"Invoices"`
}

// Create выставляет по черновику счёта ACCREC на каждый контракт и переводит их в Invoiced.
func (iv *Invoicer) Create(ctx context.Context, key string, ids ...string) ([]Invoice, error) {
	const op = "create invoices"
	if len(ids) == 0 {
		return nil, fault.Validation(op, form.Errors{"ids": "select at least one contract"})
	}
	list := make([]contracts.Contract, 0, len(ids))
	for _, id := range ids {
		c, err := iv.contracts.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if c.Status == contracts.StatusInvoiced {
			return nil, fault.Validation(op, form.Errors{"ids": fmt.Sprintf("contract %s is already invoiced", c.Number)})
		}
		list = append(list, c)
	}

	cred, err := iv.store.RefreshIfExpired(ctx, key)
	if err != nil {
		return nil, fault.Provider(op, "Xero is not connected", err)
	}

	body := xeroInvoices{Invoices: make([]xeroInvoice, len(list))}
	for i, c := range list {
		body.Invoices[i] = iv.invoice(c)
	}
	res, err := iv.post(ctx, cred, body)
	if err != nil {
		return nil, err
	}

	out := make([]Invoice, len(list))
	for i, c := range list {
		out[i] = Invoice{ContractID: c.ID}
		if i < len(res.Invoices) {
			out[i].InvoiceID = res.Invoices[i].InvoiceID
			out[i].InvoiceNumber = res.Invoices[i].InvoiceNumber
		}
	}
	metrics.InvoicesCreated.Add(float64(len(out)))
	iv.log.Info("invoices created", "count", len(out))

	// счета в Xero уже созданы: ошибка статуса только логируется
	if err := iv.contracts.SetStatus(context.WithoutCancel(ctx), contracts.StatusInvoiced, ids...); err != nil {
		iv.log.Error("mark invoiced failed", "ids", ids, "invoices", out, "err", err)
		iv.notify.Notify(ctx, fmt.Sprintf("Счета выставлены в Xero, но контракты не отмечены как Invoiced: %s", strings.Join(ids, ", ")))
		return out, nil
	}
	iv.notify.Notify(ctx, fmt.Sprintf("Выставлено счетов в Xero: %d", len(out)))
	return out, nil
}

func (iv *Invoicer) invoice(c contracts.Contract) xeroInvoice {
	desc := strings.Join(nonEmpty(c.Commodity, c.Grade, c.Season), " ")
	if c.Seller.Name != "" {
		desc += " from " + c.Seller.Name
	}
	return xeroInvoice{
		Type:            "ACCREC",
		Contact:         xeroContact{Name: c.Buyer.Name},
		Date:            c.Date.Format("2006-01-02"),
		Reference:       c.Number,
		Status:          "DRAFT",
		LineAmountTypes: "Exclusive",
		LineItems: []xeroLine{{
			Description: "Contract " + c.Number + ": " + desc,
			Quantity:    c.Tonnes.String(),
			UnitAmount:  c.Price.StringFixed(2),
			AccountCode: iv.cfg.AccountCode,
		}},
	}
}

func (iv *Invoicer) post(ctx context.Context, cred Credential, body xeroInvoices) (xeroResult, error) {
	const op = "post invoices"
	var res xeroResult
	buf, err := json.Marshal(body)
	if err != nil {
		return res, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(iv.cfg.APIURL, "/")+"/Invoices", bytes.NewReader(buf))
	if err != nil {
		return res, err
	}
	cred.Token.SetAuthHeader(req)
	req.Header.Set("xero-tenant-id", cred.TenantID)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := iv.hc.Do(req)
	if err != nil {
		return res, fault.Network(op, err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return res, fault.Network(op, err)
	}
	if resp.StatusCode >= 300 {
		var e struct {
			Message string `json:"Message"`
			Detail  string `json:"Detail"`
		}
		_ = json.Unmarshal(data, &e)
		msg := e.Message
		if msg == "" {
			msg = e.Detail
		}
		return res, fault.Provider(op, msg, fmt.Errorf("status %d", resp.StatusCode))
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return res, fmt.Errorf("decode invoices: %w", err)
	}
	return res, nil
}

func nonEmpty(ss ...string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
