package request

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageFromQuery(t *testing.T) {
	cases := []struct {
		query         string
		page, perPage int
		offset        int
	}{
		{"", 1, DefaultPerPage, 0},
		{"page=3&per_page=20", 3, 20, 40},
		{"page=0&per_page=0", 1, DefaultPerPage, 0},
		{"page=2&per_page=500", 2, MaxPerPage, MaxPerPage},
		{"page=abc", 1, DefaultPerPage, 0},
	}
	for _, tc := range cases {
		q, _ := url.ParseQuery(tc.query)
		p := PageFromQuery(q)
		assert.Equal(t, tc.page, p.Page, tc.query)
		assert.Equal(t, tc.perPage, p.PerPage, tc.query)
		assert.Equal(t, tc.offset, p.Offset(), tc.query)
	}
}
