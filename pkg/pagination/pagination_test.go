package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		query    string
		expected Params
	}{
		{name: "defaults", query: "", expected: Params{Page: 1, Limit: 10, Offset: 0}},
		{name: "explicit", query: "?page=3&limit=5", expected: Params{Page: 3, Limit: 5, Offset: 10}},
		{name: "invalid values", query: "?page=-2&limit=abc", expected: Params{Page: 1, Limit: 10, Offset: 0}},
		{name: "limit capped", query: "?page=2&limit=500", expected: Params{Page: 2, Limit: 100, Offset: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/api/requests"+tt.query, nil)
			assert.Equal(t, tt.expected, Parse(c))
		})
	}
}

func TestNewMeta(t *testing.T) {
	assert.Equal(t, Meta{Page: 1, Limit: 10, Total: 0, Pages: 0}, NewMeta(New(1, 10), 0))
	assert.Equal(t, Meta{Page: 1, Limit: 10, Total: 10, Pages: 1}, NewMeta(New(1, 10), 10))
	assert.Equal(t, Meta{Page: 2, Limit: 10, Total: 21, Pages: 3}, NewMeta(New(2, 10), 21))
}
