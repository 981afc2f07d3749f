package form

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/graindesk/internal/fault"
)

type contact struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
}

type party struct {
	Name     string          `json:"legalName" validate:"required"`
	Email    string          `json:"email" validate:"required,email"`
	Price    decimal.Decimal `json:"price"`
	Since    time.Time       `json:"since"`
	Tags     []string        `json:"tags"`
	Contacts []contact       `json:"contactDetails" validate:"dive"`
}

func TestEditDirtyGating(t *testing.T) {
	orig := party{
		Name:  "Acme Grain Co",
		Email: "ops@acme.example",
		Price: decimal.RequireFromString("312.50"),
		Since: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	e := NewEdit(orig)
	assert.False(t, e.CanSave())
	assert.False(t, e.CanCancel())

	changed := orig
	changed.Name = "Acme Grain Co Pty Ltd"
	e.Set(changed)
	assert.True(t, e.CanSave())
	assert.True(t, e.CanCancel())

	// вернули то же значение руками — снова не грязная
	e.Set(orig)
	assert.False(t, e.Dirty())

	// равные по значению, но разные по представлению
	same := orig
	same.Price = decimal.RequireFromString("312.5")
	same.Tags = []string{}
	e.Set(same)
	assert.False(t, e.Dirty())

	e.Set(changed)
	e.Cancel()
	assert.Equal(t, orig, e.Current())

	e.Set(changed)
	e.Commit(changed)
	assert.False(t, e.Dirty())
	assert.Equal(t, changed, e.Original())
}

func TestValidate(t *testing.T) {
	errs := Validate(party{
		Email:    "not-an-email",
		Contacts: []contact{{Name: "", Email: "x@y.example"}},
	})
	assert.Equal(t, "is required", errs["legalName"])
	assert.Equal(t, "must be a valid email address", errs["email"])
	assert.Equal(t, "is required", errs["contactDetails[0].name"])

	err := errs.Err()
	require.Error(t, err)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))
	got, ok := FieldErrors(err)
	require.True(t, ok)
	assert.Equal(t, errs, got)

	assert.Empty(t, Validate(party{Name: "Acme", Email: "ops@acme.example"}))
	assert.NoError(t, Errors{}.Err())
}

func TestValidateBoundMessages(t *testing.T) {
	type load struct {
		Bags   int `json:"bags" validate:"gt=0"`
		Trucks int `json:"trucks" validate:"gte=1"`
	}
	errs := Validate(load{})
	assert.Equal(t, "must be greater than 0", errs["bags"])
	assert.Equal(t, "must be at least 1", errs["trucks"])
	assert.Empty(t, Validate(load{Bags: 1, Trucks: 1}))
}

func TestValidABN(t *testing.T) {
	assert.True(t, ValidABN("12 345 678 901"))
	assert.True(t, ValidABN("12345678901"))
	assert.False(t, ValidABN("12 345 678 90"))
	assert.False(t, ValidABN("12-345-678-901"))
	assert.False(t, ValidABN(""))
}

func TestUniqueNames(t *testing.T) {
	errs := UniqueNames("contactDetails", []string{"Sam", "Alex", " sam ", ""})
	assert.Equal(t, Errors{"contactDetails[2].name": "duplicate contact name"}, errs)
	assert.Empty(t, UniqueNames("contactDetails", []string{"a", "b"}))
}
