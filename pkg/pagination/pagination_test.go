package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSortable = map[string]string{
	"createdAt": "created_at",
	"name":      "item_name",
}

func TestNewNormalizes(t *testing.T) {
	p := New(0, 0, 10, nil)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 0, p.Offset())

	p = New(3, 1000, 10, nil)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 2*MaxLimit, p.Offset())
}

func TestParseSort(t *testing.T) {
	fields, err := ParseSort("name,-createdAt", testSortable, "-createdAt")
	require.NoError(t, err)
	assert.Equal(t, []SortField{{Column: "item_name"}, {Column: "created_at", Desc: true}}, fields)
	assert.Equal(t, "item_name ASC, created_at DESC", Params{Sort: fields}.OrderBy())

	fields, err = ParseSort("  ", testSortable, "-createdAt")
	require.NoError(t, err)
	assert.Equal(t, []SortField{{Column: "created_at", Desc: true}}, fields)

	_, err = ParseSort("password", testSortable, "")
	assert.Error(t, err)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}
