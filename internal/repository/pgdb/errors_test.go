package pgdb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapErr(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), e.ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "products_name_key"}, e.ErrConflict},
		{"foreign key", &pgconn.PgError{Code: "23503", ConstraintName: "products_category_id_fkey"}, e.ErrNotFound},
		{"other pg error", &pgconn.PgError{Code: "40001"}, nil},
		{"other", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapErr(tt.err)
			if tt.want == nil {
				assert.Equal(t, tt.err, got)
				return
			}
			assert.True(t, errors.Is(got, tt.want), "got %v", got)
		})
	}

	assert.Nil(t, mapErr(nil))
}
