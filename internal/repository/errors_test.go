package repository

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"duplicate", &mysql.MySQLError{Number: 1062}, ErrDuplicate},
		{"still referenced", &mysql.MySQLError{Number: 1451}, ErrReferenced},
		{"missing parent", &mysql.MySQLError{Number: 1452}, ErrReferenced},
		{"other mysql", &mysql.MySQLError{Number: 1064}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapDBError("op", tt.err)
			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
				return
			}
			assert.False(t, errors.Is(got, ErrDuplicate) || errors.Is(got, ErrReferenced))
			assert.ErrorIs(t, got, tt.err)
		})
	}
	assert.NoError(t, mapDBError("op", nil))
}
