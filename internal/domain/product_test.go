package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vipioko/vaxdog-commerce/pkg/errors"
)

// ============================================================================
// ProductID normalization
// ============================================================================

func TestProductID_UnmarshalString(t *testing.T) {
	var id ProductID
	require.NoError(t, json.Unmarshal([]byte(`"leash-1"`), &id))
	assert.Equal(t, ProductID("leash-1"), id)
}

func TestProductID_UnmarshalNumber(t *testing.T) {
	var id ProductID
	require.NoError(t, json.Unmarshal([]byte(`12345`), &id))
	assert.Equal(t, ProductID("12345"), id)
}

func TestProductID_NumberAndStringAgree(t *testing.T) {
	var fromNumber, fromString ProductID
	require.NoError(t, json.Unmarshal([]byte(`42`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`"42"`), &fromString))
	assert.Equal(t, fromString, fromNumber)
}

func TestProductID_TrimsWhitespace(t *testing.T) {
	var id ProductID
	require.NoError(t, json.Unmarshal([]byte(`"  bowl-2  "`), &id))
	assert.Equal(t, ProductID("bowl-2"), id)
}

func TestProductID_RejectsObjects(t *testing.T) {
	var id ProductID
	err := json.Unmarshal([]byte(`{"id": 1}`), &id)
	assert.Error(t, err)
}

// ============================================================================
// ProductSnapshot validation
// ============================================================================

func validSnapshot() ProductSnapshot {
	return ProductSnapshot{
		ProductID: "leash-1",
		Name:      "Dog Leash",
		UnitPrice: decimal.NewFromInt(10),
	}
}

func TestSnapshotValidate_Success(t *testing.T) {
	assert.NoError(t, validSnapshot().Validate())
}

func TestSnapshotValidate_MissingID(t *testing.T) {
	snap := validSnapshot()
	snap.ProductID = "   "

	err := snap.Validate()
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestSnapshotValidate_MissingName(t *testing.T) {
	snap := validSnapshot()
	snap.Name = ""

	err := snap.Validate()
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestSnapshotValidate_NegativePrice(t *testing.T) {
	snap := validSnapshot()
	snap.UnitPrice = decimal.NewFromInt(-1)

	err := snap.Validate()
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestSnapshotValidate_NegativeStockLimit(t *testing.T) {
	snap := validSnapshot()
	limit := -1
	snap.StockLimit = &limit

	err := snap.Validate()
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestEffectiveStockLimit(t *testing.T) {
	snap := validSnapshot()
	assert.Equal(t, DefaultStockLimit, snap.EffectiveStockLimit())

	limit := 2
	snap.StockLimit = &limit
	assert.Equal(t, 2, snap.EffectiveStockLimit())
}

func TestInStock(t *testing.T) {
	snap := validSnapshot()
	assert.True(t, snap.InStock())

	zero := 0
	snap.StockLimit = &zero
	assert.False(t, snap.InStock())

	one := 1
	snap.StockLimit = &one
	assert.True(t, snap.InStock())
}
