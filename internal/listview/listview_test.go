package listview

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/graindesk/internal/fault"
	"github.com/Spok95/graindesk/internal/query"
)

func TestBulkActionGating(t *testing.T) {
	tests := []struct {
		name   string
		sel    Selection
		edit   bool
		delete bool
	}{
		{"none", NewSelection(), false, false},
		{"one", NewSelection("a"), true, true},
		{"two", NewSelection("a", "b"), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.edit, tt.sel.Allows(ActionEdit))
			assert.Equal(t, tt.delete, tt.sel.Allows(ActionDelete))
			assert.True(t, tt.sel.Allows(ActionExport))
		})
	}

	err := Check(ActionEdit, NewSelection("a", "b"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrActionNotAllowed))
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))
}

func TestToggle(t *testing.T) {
	s := NewSelection()
	s.Toggle("b")
	s.Toggle("a")
	s.Toggle("b")
	assert.Equal(t, []string{"a"}, s.IDs())
}

func TestExportScope(t *testing.T) {
	ids, all := ExportScope(NewSelection())
	assert.True(t, all)
	assert.Nil(t, ids)

	ids, all = ExportScope(NewSelection("z", "a"))
	assert.False(t, all)
	assert.Equal(t, []string{"a", "z"}, ids)
}

func TestExportRowsKeepsFilteredOrder(t *testing.T) {
	rows := []string{"c", "a", "b"}
	id := func(s string) string { return s }

	assert.Equal(t, rows, ExportRows(NewSelection(), rows, id))
	assert.Equal(t, []string{"c", "b"}, ExportRows(NewSelection("b", "c"), rows, id))
}

func TestSelectionClearedOnQueryChange(t *testing.T) {
	st := NewState(query.List{Page: 1, Limit: 10})
	st.Selection().Toggle("a")
	st.Selection().Toggle("b")

	assert.False(t, st.SetQuery(query.List{Page: 1, Limit: 10}))
	assert.Equal(t, 2, st.Selection().Len())

	changes := []query.List{
		{Page: 2, Limit: 10},
		{Page: 2, Limit: 10, Search: "acme"},
		{Page: 2, Limit: 10, Search: "acme", SortBy: "legalName", SortOrder: query.Desc},
	}
	for _, q := range changes {
		st.Selection().Toggle("x")
		assert.True(t, st.SetQuery(q))
		assert.Zero(t, st.Selection().Len())
	}
	assert.Equal(t, "acme", st.Query().Search)
}

func TestViewStates(t *testing.T) {
	v := Ready(query.Page[string]{Total: 0})
	assert.Equal(t, StatusEmpty, v.Status)
	assert.NotNil(t, v.Data)

	v = Ready(query.Page[string]{Data: []string{"a"}, Total: 1})
	assert.Equal(t, StatusReady, v.Status)

	f := Failed[string](fault.Provider("remote", "upstream down", nil))
	assert.Equal(t, StatusError, f.Status)
	assert.Equal(t, "upstream down", f.Error)
	assert.True(t, f.Retry)

	f = Failed[string](fault.NotFound("remote"))
	assert.False(t, f.Retry)
}

func TestCells(t *testing.T) {
	c := NewCells()
	c.Set("r1", "status", "Complete")
	c.Set("r1", "notes", "rain delay")
	c.Set("r2", "status", "Invoiced")

	v, ok := c.Get("r1", "status")
	assert.True(t, ok)
	assert.Equal(t, "Complete", v)
	assert.Equal(t, map[string]string{"status": "Complete", "notes": "rain delay"}, c.Row("r1"))
	assert.Equal(t, []string{"r1", "r2"}, c.Rows())

	c.Reset("r1")
	assert.Equal(t, 1, c.Len())
	_, ok = c.Get("r1", "notes")
	assert.False(t, ok)
}
