package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := InvalidInput("quantity must be positive")
	assert.Equal(t, "INVALID_INPUT: quantity must be positive", err.Error())

	wrapped := Internal(errors.New("boom"))
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestAppError_Unwrap(t *testing.T) {
	err := StockExceeded("prod-1", 2)
	assert.True(t, errors.Is(err, ErrStockExceeded))

	err = AlreadyExists("wishlist entry", "prod-2")
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestPersistence_WrapsBothSentinelAndCause(t *testing.T) {
	cause := errors.New("redis: connection refused")
	err := Persistence(cause)

	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, cause))
}

func TestStockExceeded_MessageCarriesLimit(t *testing.T) {
	err := StockExceeded("leash-1", 2)
	assert.Equal(t, "only 2 of product leash-1 in stock", err.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NotFound("cart line", "p1"), http.StatusNotFound},
		{AlreadyExists("wishlist entry", "p1"), http.StatusConflict},
		{InvalidInput("bad"), http.StatusBadRequest},
		{StockExceeded("p1", 99), http.StatusUnprocessableEntity},
		{fmt.Errorf("op: %w", ErrStockExceeded), http.StatusUnprocessableEntity},
		{errors.New("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err), "error: %v", tt.err)
	}
}
