package prices

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:embed fixtures.json
var fixtureJSON []byte

type fixture struct {
	Commodity string          `json:"commodity"`
	Date      string          `json:"date"`
	Price     decimal.Decimal `json:"price"`
	Quality   string          `json:"quality"`
	Comment   string          `json:"comment"`
}

// Fixtures — стартовые данные для хранилища в памяти.
func Fixtures() ([]Price, error) {
	var raw []fixture
	if err := json.Unmarshal(fixtureJSON, &raw); err != nil {
		return nil, fmt.Errorf("price fixtures: %w", err)
	}
	out := make([]Price, 0, len(raw))
	for i, f := range raw {
		d, err := time.Parse(time.DateOnly, f.Date)
		if err != nil {
			return nil, fmt.Errorf("price fixture %d: %w", i, err)
		}
		out = append(out, Price{
			ID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("price/%d", i))).String(),
			Commodity: f.Commodity,
			Date:      d,
			Price:     f.Price,
			Quality:   f.Quality,
			Comment:   f.Comment,
		})
	}
	return out, nil
}
