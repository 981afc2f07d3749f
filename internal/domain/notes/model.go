package notes

import (
	"cmp"
	"time"

	"github.com/Spok95/graindesk/internal/search"
)

const (
	DateLayout = time.DateOnly
	TimeLayout = "15:04"
)

type Note struct {
	ID        string `json:"id"`
	Notebook  string `json:"notebook" validate:"required,max=120"`
	BrokerRef string `json:"brokerRef" validate:"max=60"`
	Body      string `json:"body" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Time      string `json:"time"`
}

func (n Note) Key() string { return n.ID }

// At — дата и время заметки; пустое время — полночь.
func (n Note) At() time.Time {
	d, err := time.Parse(DateLayout, n.Date)
	if err != nil {
		return time.Time{}
	}
	if t, err := time.Parse(TimeLayout, n.Time); err == nil {
		d = d.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
	}
	return d
}

const DefaultSearchField = "notebook"

var Table = search.Table[Note]{
	Fields: []search.Field[Note]{
		{ID: "notebook", Label: "Notebook", Value: func(n Note) string { return n.Notebook }},
		{ID: "brokerRef", Label: "Broker Ref", Value: func(n Note) string { return n.BrokerRef }},
		{ID: "body", Label: "Note", Value: func(n Note) string { return n.Body }},
	},
	Default: DefaultSearchField,
	Sorters: map[string]func(a, b Note) int{
		"date":     func(a, b Note) int { return a.At().Compare(b.At()) },
		"notebook": func(a, b Note) int { return cmp.Compare(a.Notebook, b.Notebook) },
	},
	Date: Note.At,
}
