package contracts

import (
	"cmp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/graindesk/internal/search"
)

type Status string

const (
	StatusNotDone  Status = "Not done"
	StatusComplete Status = "Complete"
	StatusInvoiced Status = "Invoiced"
)

var Statuses = []Status{StatusNotDone, StatusComplete, StatusInvoiced}

func (s Status) Valid() bool {
	switch s {
	case StatusNotDone, StatusComplete, StatusInvoiced:
		return true
	}
	return false
}

// PartyRef — ссылка на продавца или покупателя с именем для таблиц.
type PartyRef struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"legalName"`
	NGR  string `json:"ngr,omitempty"`
}

type Contract struct {
	ID          string          `json:"id"`
	Number      string          `json:"contractNumber" validate:"required"`
	Season      string          `json:"season"`
	Seller      PartyRef        `json:"grower"`
	Buyer       PartyRef        `json:"buyer"`
	Commodity   string          `json:"commodity" validate:"required"`
	Grade       string          `json:"grade"`
	Tonnes      decimal.Decimal `json:"tonnes"`
	Price       decimal.Decimal `json:"contractPrice"`
	Destination string          `json:"deliveryDestination"`
	Conveyance  string          `json:"conveyanceType"`
	Date        time.Time       `json:"contractDate" validate:"required"`
	Status      Status          `json:"status"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (c Contract) Key() string { return c.ID }

// Value — сумма контракта без GST.
func (c Contract) Value() decimal.Decimal { return c.Tonnes.Mul(c.Price) }

const DefaultSearchField = "contractNumber"

var Table = search.Table[Contract]{
	Fields: []search.Field[Contract]{
		{ID: "contractNumber", Label: "Contract Number", Value: func(c Contract) string { return c.Number }},
		{ID: "grower", Label: "Grower", Value: func(c Contract) string { return c.Seller.Name }},
		{ID: "buyer", Label: "Buyer", Value: func(c Contract) string { return c.Buyer.Name }},
		{ID: "commodity", Label: "Commodity", Value: func(c Contract) string { return c.Commodity }},
		{ID: "grade", Label: "Grade", Value: func(c Contract) string { return c.Grade }},
		{ID: "season", Label: "Season", Value: func(c Contract) string { return c.Season }},
		{ID: "ngr", Label: "NGR", Value: func(c Contract) string { return c.Seller.NGR }},
	},
	Default: DefaultSearchField,
	Sorters: map[string]func(a, b Contract) int{
		"contractDate":   func(a, b Contract) int { return a.Date.Compare(b.Date) },
		"contractNumber": func(a, b Contract) int { return cmp.Compare(a.Number, b.Number) },
		"grower":         func(a, b Contract) int { return cmp.Compare(strings.ToLower(a.Seller.Name), strings.ToLower(b.Seller.Name)) },
		"buyer":          func(a, b Contract) int { return cmp.Compare(strings.ToLower(a.Buyer.Name), strings.ToLower(b.Buyer.Name)) },
		"commodity":      func(a, b Contract) int { return cmp.Compare(a.Commodity, b.Commodity) },
		"tonnes":         func(a, b Contract) int { return a.Tonnes.Cmp(b.Tonnes) },
		"contractPrice":  func(a, b Contract) int { return a.Price.Cmp(b.Price) },
		"status":         func(a, b Contract) int { return cmp.Compare(a.Status, b.Status) },
		"createdAt":      func(a, b Contract) int { return a.CreatedAt.Compare(b.CreatedAt) },
	},
	Date: func(c Contract) time.Time { return c.Date },
}

func SearchFields() []string { return search.IDs(Table.Fields) }

var columns = map[string]string{
	"contractDate":   "c.contract_date",
	"contractNumber": "c.contract_number",
	"grower":         "s.legal_name",
	"buyer":          "b.legal_name",
	"commodity":      "c.commodity",
	"grade":          "c.grade",
	"season":         "c.season",
	"ngr":            "s.main_ngr",
	"tonnes":         "c.tonnes",
	"contractPrice":  "c.price",
	"status":         "c.status",
	"createdAt":      "c.created_at",
}

// Stats — сводка для дашборда.
type Stats struct {
	Total    int             `json:"total"`
	ByStatus map[Status]int  `json:"byStatus"`
	Tonnes   decimal.Decimal `json:"tonnes"`
	Value    decimal.Decimal `json:"value"`
}
