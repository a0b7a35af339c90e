package paging

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/betzone-api/internal/api/validate"
)

func TestNewTotalPages(t *testing.T) {
	cases := []struct {
		total, size, pages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 15, 7},
	}
	for _, tc := range cases {
		p := New(tc.total, Params{Page: 2, PageSize: tc.size})
		assert.Equal(t, tc.pages, p.TotalPages, "total=%d size=%d", tc.total, tc.size)
		assert.Equal(t, 2, p.Page)
	}
}

func TestParseDefaults(t *testing.T) {
	p, err := Parse(httptest.NewRequest("GET", "/api/bets", nil), 10)
	require.NoError(t, err)
	assert.Equal(t, Params{Page: 1, PageSize: 10}, p)
	assert.Equal(t, 0, p.Offset())
	assert.Equal(t, 20, Params{Page: 3, PageSize: 10}.Offset())
}

func TestParseExplicit(t *testing.T) {
	p, err := Parse(httptest.NewRequest("GET", "/api/bets?page=4&pageSize=25", nil), 10)
	require.NoError(t, err)
	assert.Equal(t, Params{Page: 4, PageSize: 25}, p)
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, q := range []string{"page=0", "page=abc", "pageSize=0", "pageSize=101", "page=-1&pageSize=x", "page=100001", "page=184467440737095517&pageSize=100"} {
		_, err := Parse(httptest.NewRequest("GET", "/api/bets?"+q, nil), 10)
		var errs validate.Errs
		assert.ErrorAs(t, err, &errs, q)
	}
}

func TestLimit(t *testing.T) {
	n, err := Limit(httptest.NewRequest("GET", "/x", nil), "limit", 5, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = Limit(httptest.NewRequest("GET", "/x?limit=3", nil), "limit", 5, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = Limit(httptest.NewRequest("GET", "/x?limit=51", nil), "limit", 5, 1, 50)
	assert.Error(t, err)
}

func TestLargestPageOffsetIsPositive(t *testing.T) {
	p, err := Parse(httptest.NewRequest("GET", "/api/bets?page=100000&pageSize=100", nil), 10)
	require.NoError(t, err)
	assert.Equal(t, 9999900, p.Offset())
}
