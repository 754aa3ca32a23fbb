package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Name     string `validate:"required,max=500"`
	Quantity int    `validate:"gte=0"`
	ImageURL string `validate:"omitempty,url"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(sampleInput{Name: "Dog Leash", Quantity: 1})
	assert.NoError(t, err)
}

func TestValidate_RequiredField(t *testing.T) {
	err := Validate(sampleInput{Quantity: 1})

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "is required", valErr.Fields()["Name"])
	assert.Contains(t, valErr.Error(), "Name")
}

func TestValidate_MultipleFailures(t *testing.T) {
	err := Validate(sampleInput{Quantity: -1, ImageURL: "not-a-url"})

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	fields := valErr.Fields()
	assert.Len(t, fields, 3)
	assert.Equal(t, "must be greater than or equal to 0", fields["Quantity"])
	assert.Equal(t, "must be a valid URL", fields["ImageURL"])
}
