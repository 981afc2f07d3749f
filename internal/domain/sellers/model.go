package sellers

import (
	"cmp"
	"errors"
	"strings"
	"time"

	"github.com/Spok95/graindesk/internal/search"
)

// ErrHasContracts — продавца нельзя удалить, пока на него ссылаются контракты.
var ErrHasContracts = errors.New("seller has contracts")

// Handlers — известные bulk handler'ы; у каждого продавца есть строка на каждого.
var Handlers = []string{"CBH", "GrainCorp", "GrainFlow", "Viterra", "Emerald", "Louis Dreyfus"}

type Credential struct {
	Handler    string `json:"handlerName"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type Seller struct {
	ID             string       `json:"id"`
	LegalName      string       `json:"legalName" validate:"required"`
	ABN            string       `json:"abn" validate:"required,abn"`
	MainNGR        string       `json:"mainNgr" validate:"required"`
	AdditionalNGRs []string     `json:"additionalNgrs" validate:"dive,required"`
	Address        string       `json:"address" validate:"required"`
	ContactName    string       `json:"contactName"`
	Email          string       `json:"email" validate:"required,email"`
	PhoneNumber    string       `json:"phoneNumber" validate:"required"`
	Credentials    []Credential `json:"bulkHandlerCredentials"`
	CreatedAt      time.Time    `json:"createdAt"`
}

func (s Seller) Key() string { return s.ID }

// MergeCredentials раскладывает сохранённые учётки по фиксированному списку handler'ов.
// Отсутствующие — пустые строки; неизвестные handler'ы идут в конец.
func MergeCredentials(saved []Credential) []Credential {
	byName := make(map[string]Credential, len(saved))
	for _, c := range saved {
		byName[strings.ToLower(strings.TrimSpace(c.Handler))] = c
	}
	out := make([]Credential, 0, len(Handlers)+len(saved))
	for _, h := range Handlers {
		key := strings.ToLower(h)
		c := byName[key]
		delete(byName, key)
		out = append(out, Credential{Handler: h, Identifier: c.Identifier, Password: c.Password})
	}
	for _, c := range saved {
		if _, ok := byName[strings.ToLower(strings.TrimSpace(c.Handler))]; ok {
			out = append(out, c)
		}
	}
	return out
}

const DefaultSearchField = "legalName"

var Table = search.Table[Seller]{
	Fields: []search.Field[Seller]{
		{ID: "legalName", Label: "Legal Name", Value: func(s Seller) string { return s.LegalName }},
		{ID: "abn", Label: "ABN", Value: func(s Seller) string { return s.ABN }},
		{ID: "mainNgr", Label: "NGR", Value: func(s Seller) string { return s.MainNGR }},
		{ID: "contactName", Label: "Contact Name", Value: func(s Seller) string { return s.ContactName }},
		{ID: "email", Label: "Email", Value: func(s Seller) string { return s.Email }},
	},
	Default: DefaultSearchField,
	Sorters: map[string]func(a, b Seller) int{
		"legalName": func(a, b Seller) int { return cmp.Compare(strings.ToLower(a.LegalName), strings.ToLower(b.LegalName)) },
		"abn":       func(a, b Seller) int { return cmp.Compare(a.ABN, b.ABN) },
		"mainNgr":   func(a, b Seller) int { return cmp.Compare(a.MainNGR, b.MainNGR) },
		"createdAt": func(a, b Seller) int { return a.CreatedAt.Compare(b.CreatedAt) },
	},
	Date: func(s Seller) time.Time { return s.CreatedAt },
}

func SearchFields() []string { return search.IDs(Table.Fields) }

var columns = map[string]string{
	"legalName":   "legal_name",
	"abn":         "abn",
	"mainNgr":     "main_ngr",
	"contactName": "contact_name",
	"email":       "email",
	"createdAt":   "created_at",
}
