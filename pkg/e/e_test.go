package e

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	err := Wrap("ProductRepo.Create", ErrConflict)

	assert.EqualError(t, err, "ProductRepo.Create: conflict")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestValidationError_IsKind(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		kind error
	}{
		{
			name: "validation",
			err:  NewValidationError(FieldError{Field: "name", Message: "Name cannot be empty!"}),
			kind: ErrValidation,
		},
		{
			name: "not found",
			err:  NewFieldError(ErrNotFound, "products", "Product with ID 7 not found!"),
			kind: ErrNotFound,
		},
		{
			name: "insufficient stock",
			err:  NewFieldError(ErrInsufficientStock, "products", "Not enough stock"),
			kind: ErrInsufficientStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap("op", tt.err)

			assert.ErrorIs(t, wrapped, tt.kind)

			var ve *ValidationError
			assert.True(t, errors.As(wrapped, &ve))
			assert.Equal(t, tt.err.Fields, ve.Fields)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := NewValidationError(
		FieldError{Field: "name", Message: "Name cannot be empty!"},
		FieldError{Field: "price", Message: "Price must be greater than 0!"},
	)

	assert.Equal(t, "validation failed: name: Name cannot be empty!; price: Price must be greater than 0!", err.Error())
}
