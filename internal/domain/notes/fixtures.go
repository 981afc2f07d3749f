package notes

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

//go:embed fixtures.json
var fixtureJSON []byte

func Fixtures() ([]Note, error) {
	var out []Note
	if err := json.Unmarshal(fixtureJSON, &out); err != nil {
		return nil, fmt.Errorf("note fixtures: %w", err)
	}
	for i := range out {
		out[i].ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("note/%d", i))).String()
	}
	return out, nil
}
