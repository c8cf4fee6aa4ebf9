package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"NotFoundWrapped", fmt.Errorf("user 5: %w", ErrNotFound), KindNotFound},
		{"Forbidden", ErrForbidden, KindForbidden},
		{"Unavailable", fmt.Errorf("item 1: %w", ErrUnavailable), KindUnavailable},
		{"DuplicateAddress", ErrDuplicateAddress, KindDuplicateAddress},
		{"InvalidArgument", ErrInvalidArgument, KindInvalidArgument},
		{"Infrastructure", errors.New("disk I/O error"), KindInternal},
		{"Nil", nil, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestRequireOneOf(t *testing.T) {
	assert.NoError(t, RequireOneOf(1, 1))
	assert.NoError(t, RequireOneOf(2, 1, 2))
	assert.ErrorIs(t, RequireOneOf(3, 1, 2), ErrForbidden)
	assert.ErrorIs(t, RequireOneOf(3), ErrForbidden)
}
