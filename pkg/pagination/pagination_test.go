package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest_Defaults(t *testing.T) {
	p := FromRequest(httptest.NewRequest("GET", "/api/v1/wishlist", nil))

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_ExplicitParams(t *testing.T) {
	p := FromRequest(httptest.NewRequest("GET", "/api/v1/wishlist?page=3&per_page=10", nil))

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 10, p.PerPage)
	assert.Equal(t, 20, p.Offset)
}

func TestFromRequest_InvalidParamsFallBack(t *testing.T) {
	p := FromRequest(httptest.NewRequest("GET", "/api/v1/wishlist?page=-1&per_page=500", nil))

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
}

func TestSlice_Windows(t *testing.T) {
	p := Params{Page: 2, PerPage: 3, Offset: 3}

	start, end := p.Slice(10)
	assert.Equal(t, 3, start)
	assert.Equal(t, 6, end)

	start, end = p.Slice(4)
	assert.Equal(t, 3, start)
	assert.Equal(t, 4, end)

	start, end = p.Slice(2)
	assert.Equal(t, 2, start)
	assert.Equal(t, 2, end)
}
