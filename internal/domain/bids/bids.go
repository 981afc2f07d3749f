// Package bids — котировки покупателей (port zone и delivered) из встроенных фикстур.
package bids

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PortZoneBid struct {
	Date      time.Time           `json:"date"`
	PortZone  string              `json:"portZone"`
	Commodity string              `json:"commodity"`
	Grade     string              `json:"grade"`
	Season    string              `json:"season"`
	Price     decimal.NullDecimal `json:"price"`
}

type DeliveredBid struct {
	Date      time.Time           `json:"date"`
	Site      string              `json:"site"`
	Commodity string              `json:"commodity"`
	Grade     string              `json:"grade"`
	Season    string              `json:"season"`
	Price     decimal.NullDecimal `json:"price"`
}

//go:embed fixtures.json
var fixtureJSON []byte

type row struct {
	Date      string `json:"date"`
	PortZone  string `json:"portZone"`
	Site      string `json:"site"`
	Commodity string `json:"commodity"`
	Grade     string `json:"grade"`
	Season    string `json:"season"`
	Price     string `json:"price"`
}

func (r row) parse() (time.Time, decimal.NullDecimal, error) {
	d, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return d, decimal.NullDecimal{}, err
	}
	if r.Price == "" {
		return d, decimal.NullDecimal{}, nil
	}
	p, err := decimal.NewFromString(r.Price)
	return d, decimal.NullDecimal{Decimal: p, Valid: err == nil}, err
}

// Book — все котировки из фикстур.
type Book struct {
	PortZone  []PortZoneBid
	Delivered []DeliveredBid
}

func Load() (Book, error) {
	var raw struct {
		PortZone  []row `json:"portZone"`
		Delivered []row `json:"delivered"`
	}
	if err := json.Unmarshal(fixtureJSON, &raw); err != nil {
		return Book{}, fmt.Errorf("bid fixtures: %w", err)
	}
	var b Book
	for i, r := range raw.PortZone {
		d, p, err := r.parse()
		if err != nil {
			return Book{}, fmt.Errorf("port zone bid %d: %w", i, err)
		}
		b.PortZone = append(b.PortZone, PortZoneBid{Date: d, PortZone: r.PortZone, Commodity: r.Commodity, Grade: r.Grade, Season: r.Season, Price: p})
	}
	for i, r := range raw.Delivered {
		d, p, err := r.parse()
		if err != nil {
			return Book{}, fmt.Errorf("delivered bid %d: %w", i, err)
		}
		b.Delivered = append(b.Delivered, DeliveredBid{Date: d, Site: r.Site, Commodity: r.Commodity, Grade: r.Grade, Season: r.Season, Price: p})
	}
	return b, nil
}
