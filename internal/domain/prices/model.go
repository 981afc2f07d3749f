package prices

import (
	"cmp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/graindesk/internal/search"
)

// Price — историческая цена по культуре на дату.
type Price struct {
	ID        string          `json:"id"`
	Commodity string          `json:"commodity" validate:"required"`
	Date      time.Time       `json:"date" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	Quality   string          `json:"quality"`
	Comment   string          `json:"comment" validate:"max=500"`
}

func (p Price) Key() string { return p.ID }

const DefaultSearchField = "commodity"

var Table = search.Table[Price]{
	Fields: []search.Field[Price]{
		{ID: "commodity", Label: "Commodity", Value: func(p Price) string { return p.Commodity }},
		{ID: "quality", Label: "Quality", Value: func(p Price) string { return p.Quality }},
		{ID: "comment", Label: "Comment", Value: func(p Price) string { return p.Comment }},
	},
	Default: DefaultSearchField,
	Sorters: map[string]func(a, b Price) int{
		"date":      func(a, b Price) int { return a.Date.Compare(b.Date) },
		"commodity": func(a, b Price) int { return cmp.Compare(strings.ToLower(a.Commodity), strings.ToLower(b.Commodity)) },
		"price":     func(a, b Price) int { return a.Price.Cmp(b.Price) },
		"quality":   func(a, b Price) int { return cmp.Compare(a.Quality, b.Quality) },
	},
	Date: func(p Price) time.Time { return p.Date },
}
