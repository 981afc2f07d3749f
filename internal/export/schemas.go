package export

import (
	"github.com/Spok95/graindesk/internal/domain/bids"
	"github.com/Spok95/graindesk/internal/domain/contracts"
	"github.com/Spok95/graindesk/internal/domain/prices"
)

var Contracts = Schema[contracts.Contract]{
	Name: "contracts",
	Columns: []Column[contracts.Contract]{
		{"Date", Date, func(c contracts.Contract) any { return c.Date }},
		{"Contract Number", Text, func(c contracts.Contract) any { return c.Number }},
		{"NGR", Text, func(c contracts.Contract) any { return c.Seller.NGR }},
		{"Seller", Text, func(c contracts.Contract) any { return c.Seller.Name }},
		{"Buyer", Text, func(c contracts.Contract) any { return c.Buyer.Name }},
		{"Commodity", Text, func(c contracts.Contract) any { return c.Commodity }},
		{"Grade", Text, func(c contracts.Contract) any { return c.Grade }},
		{"Tonnes", Number, func(c contracts.Contract) any { return c.Tonnes }},
		{"Contract Price", Money, func(c contracts.Contract) any { return c.Price }},
		{"Status", Text, func(c contracts.Contract) any { return string(c.Status) }},
	},
}

var PortZoneBids = Schema[bids.PortZoneBid]{
	Name: "port_zone_bids",
	Columns: []Column[bids.PortZoneBid]{
		{"Date", Date, func(b bids.PortZoneBid) any { return b.Date }},
		{"Port Zone", Text, func(b bids.PortZoneBid) any { return b.PortZone }},
		{"Commodity", Text, func(b bids.PortZoneBid) any { return b.Commodity }},
		{"Grade", Text, func(b bids.PortZoneBid) any { return b.Grade }},
		{"Season", Text, func(b bids.PortZoneBid) any { return b.Season }},
		{"Price", Money, func(b bids.PortZoneBid) any { return b.Price }},
	},
}

var DeliveredBids = Schema[bids.DeliveredBid]{
	Name: "delivered_bids",
	Columns: []Column[bids.DeliveredBid]{
		{"Date", Date, func(b bids.DeliveredBid) any { return b.Date }},
		{"Delivery Site", Text, func(b bids.DeliveredBid) any { return b.Site }},
		{"Commodity", Text, func(b bids.DeliveredBid) any { return b.Commodity }},
		{"Grade", Text, func(b bids.DeliveredBid) any { return b.Grade }},
		{"Season", Text, func(b bids.DeliveredBid) any { return b.Season }},
		{"Price", Money, func(b bids.DeliveredBid) any { return b.Price }},
	},
}

// Prices — та же раскладка читается обратно при импорте.
var Prices = Schema[prices.Price]{
	Name: "prices",
	Columns: []Column[prices.Price]{
		{"Commodity", Text, func(p prices.Price) any { return p.Commodity }},
		{"Date", Date, func(p prices.Price) any { return p.Date }},
		{"Price", Money, func(p prices.Price) any { return p.Price }},
		{"Quality", Text, func(p prices.Price) any { return p.Quality }},
		{"Comment", Text, func(p prices.Price) any { return p.Comment }},
	},
}
