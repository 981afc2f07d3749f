package buyers

import (
	"cmp"
	"strings"
	"time"

	"github.com/Spok95/graindesk/internal/search"
)

type ContactDetail struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

type Buyer struct {
	ID            string          `json:"id"`
	LegalName     string          `json:"legalName" validate:"required"`
	ABN           string          `json:"abn" validate:"required,abn"`
	OfficeAddress string          `json:"officeAddress" validate:"required"`
	ContactName   string          `json:"contactName"`
	Email         string          `json:"email" validate:"required,email"`
	PhoneNumber   string          `json:"phoneNumber" validate:"required"`
	AccountNumber string          `json:"accountNumber"`
	Contacts      []ContactDetail `json:"contactDetails" validate:"dive"`
	Deleted       bool            `json:"isDeleted"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (b Buyer) Key() string { return b.ID }

func (b Buyer) contactNames() []string {
	out := make([]string, len(b.Contacts))
	for i, c := range b.Contacts {
		out[i] = c.Name
	}
	return out
}

const DefaultSearchField = "legalName"

var Table = search.Table[Buyer]{
	Fields: []search.Field[Buyer]{
		{ID: "legalName", Label: "Legal Name", Value: func(b Buyer) string { return b.LegalName }},
		{ID: "abn", Label: "ABN", Value: func(b Buyer) string { return b.ABN }},
		{ID: "contactName", Label: "Contact Name", Value: func(b Buyer) string { return b.ContactName }},
		{ID: "email", Label: "Email", Value: func(b Buyer) string { return b.Email }},
		{ID: "accountNumber", Label: "Account Number", Value: func(b Buyer) string { return b.AccountNumber }},
	},
	Default: DefaultSearchField,
	Sorters: map[string]func(a, b Buyer) int{
		"legalName":   func(a, b Buyer) int { return cmp.Compare(strings.ToLower(a.LegalName), strings.ToLower(b.LegalName)) },
		"abn":         func(a, b Buyer) int { return cmp.Compare(a.ABN, b.ABN) },
		"contactName": func(a, b Buyer) int { return cmp.Compare(strings.ToLower(a.ContactName), strings.ToLower(b.ContactName)) },
		"email":       func(a, b Buyer) int { return cmp.Compare(a.Email, b.Email) },
		"createdAt":   func(a, b Buyer) int { return a.CreatedAt.Compare(b.CreatedAt) },
	},
	Date: func(b Buyer) time.Time { return b.CreatedAt },
}

// SearchFields — id полей поиска, они же имена параметров запроса.
func SearchFields() []string { return search.IDs(Table.Fields) }

// колонки Postgres для поиска и сортировки
var columns = map[string]string{
	"legalName":     "legal_name",
	"abn":           "abn",
	"contactName":   "contact_name",
	"email":         "email",
	"accountNumber": "account_number",
	"createdAt":     "created_at",
}
