package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vipioko/vaxdog-commerce/internal/storage/memory"
	"github.com/vipioko/vaxdog-commerce/pkg/httputil"
)

func decodeWishlist(t *testing.T, env envelope) []wishlistItemView {
	t.Helper()
	var items []wishlistItemView
	require.NoError(t, json.Unmarshal(env.Data, &items))
	return items
}

func TestWishlist_AddItem(t *testing.T) {
	router := newTestRouter(t, memory.NewStore())

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items",
		`{"productId": "p1", "name": "Flea Collar", "unitPrice": "12.50"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeWishlist(t, env)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID.String())
	assert.True(t, items[0].InStock)
}

func TestWishlist_AddDuplicateConflicts(t *testing.T) {
	router := newTestRouter(t, memory.NewStore())
	body := `{"productId": "p1", "name": "Flea Collar", "unitPrice": "12.50"}`
	_, _ = doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items", body)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items", body)

	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ALREADY_EXISTS", env.Error.Code)
}

func TestWishlist_OutOfStockItemKeepsOrder(t *testing.T) {
	router := newTestRouter(t, memory.NewStore())
	_, _ = doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items",
		`{"productId": "p1", "name": "Flea Collar", "unitPrice": "12.50", "stockLimit": 0}`)
	_, _ = doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items",
		`{"productId": "p2", "name": "Dog Shampoo", "unitPrice": "8.00"}`)

	rec, _ := doRequest(t, router, http.MethodGet, "/api/v1/wishlist", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page httputil.PaginatedResponse[wishlistItemView]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 2)
	assert.Equal(t, "p1", page.Data[0].ProductID.String())
	assert.False(t, page.Data[0].InStock)
	assert.True(t, page.Data[1].InStock)
}

func TestWishlist_Pagination(t *testing.T) {
	router := newTestRouter(t, memory.NewStore())
	for i := 1; i <= 5; i++ {
		_, _ = doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items",
			fmt.Sprintf(`{"productId": "p%d", "name": "Product %d", "unitPrice": "1.00"}`, i, i))
	}

	rec, _ := doRequest(t, router, http.MethodGet, "/api/v1/wishlist?page=2&per_page=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page httputil.PaginatedResponse[wishlistItemView]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 2)
	assert.Equal(t, "p3", page.Data[0].ProductID.String())
	assert.Equal(t, "p4", page.Data[1].ProductID.String())
	assert.Equal(t, 5, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
}

func TestWishlist_RemoveItem(t *testing.T) {
	router := newTestRouter(t, memory.NewStore())
	_, _ = doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items",
		`{"productId": "p1", "name": "Flea Collar", "unitPrice": "12.50"}`)

	rec, env := doRequest(t, router, http.MethodDelete, "/api/v1/wishlist/items/p1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeWishlist(t, env))
}

func TestWishlist_Clear(t *testing.T) {
	router := newTestRouter(t, memory.NewStore())
	_, _ = doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items",
		`{"productId": "p1", "name": "Flea Collar", "unitPrice": "12.50"}`)
	_, _ = doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items",
		`{"productId": "p2", "name": "Dog Shampoo", "unitPrice": "8.00"}`)

	rec, env := doRequest(t, router, http.MethodDelete, "/api/v1/wishlist", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeWishlist(t, env))
}

func TestWishlist_GetItemMembership(t *testing.T) {
	router := newTestRouter(t, memory.NewStore())
	_, _ = doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items",
		`{"productId": "p1", "name": "Flea Collar", "unitPrice": "12.50"}`)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/wishlist/items/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view wishlistMembershipView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.True(t, view.InWishlist)

	rec, env = doRequest(t, router, http.MethodGet, "/api/v1/wishlist/items/ghost", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.False(t, view.InWishlist)
}

type moveResponse struct {
	Cart     cartView           `json:"cart"`
	Wishlist []wishlistItemView `json:"wishlist"`
}

func TestWishlist_MoveToCart(t *testing.T) {
	router := newTestRouter(t, memory.NewStore())
	_, _ = doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items",
		`{"productId": "p1", "name": "Flea Collar", "unitPrice": "12.50"}`)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items/p1/move", `{"quantity": 2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp moveResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Cart.Items, 1)
	assert.Equal(t, 2, resp.Cart.Items[0].Quantity)
	assert.Empty(t, resp.Wishlist)
}

func TestWishlist_MoveToCart_DefaultQuantity(t *testing.T) {
	router := newTestRouter(t, memory.NewStore())
	_, _ = doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items",
		`{"productId": "p1", "name": "Flea Collar", "unitPrice": "12.50"}`)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items/p1/move", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp moveResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Cart.Items, 1)
	assert.Equal(t, 1, resp.Cart.Items[0].Quantity)
}

func TestWishlist_MoveToCart_StockExceededLeavesBoth(t *testing.T) {
	router := newTestRouter(t, memory.NewStore())
	_, _ = doRequest(t, router, http.MethodPost, "/api/v1/cart/items",
		`{"productId": "p1", "name": "Flea Collar", "unitPrice": "12.50", "stockLimit": 3, "quantity": 3}`)
	_, _ = doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items",
		`{"productId": "p1", "name": "Flea Collar", "unitPrice": "12.50", "stockLimit": 3}`)

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/wishlist/items/p1/move", "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "STOCK_EXCEEDED", env.Error.Code)

	// Neither collection changed.
	_, cartEnv := doRequest(t, router, http.MethodGet, "/api/v1/cart", "")
	assert.Equal(t, 3, decodeCart(t, cartEnv).ItemCount)
	_, itemEnv := doRequest(t, router, http.MethodGet, "/api/v1/wishlist/items/p1", "")
	var view wishlistMembershipView
	require.NoError(t, json.Unmarshal(itemEnv.Data, &view))
	assert.True(t, view.InWishlist)
}
