package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "primary image index violation",
			err:  &pq.Error{Code: "23505", Constraint: "unique_primary_image_per_car"},
			want: ErrDuplicatePrimary,
		},
		{
			name: "duplicate username",
			err:  &pq.Error{Code: "23505", Constraint: "users_username_key"},
			want: ErrUsernameTaken,
		},
		{
			name: "duplicate email",
			err:  &pq.Error{Code: "23505", Constraint: "users_email_key"},
			want: ErrEmailTaken,
		},
		{
			name: "unrelated unique violation passes through",
			err:  &pq.Error{Code: "23505", Constraint: "makes_name_key"},
		},
		{
			name: "non-unique pq error passes through",
			err:  &pq.Error{Code: "23503", Constraint: "images_car_id_fkey"},
		},
		{
			name: "plain error passes through",
			err:  errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapConstraintError(tt.err)
			if tt.want != nil {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Equal(t, tt.err, got)
			}
		})
	}
}

func TestMapConstraintError_Wrapped(t *testing.T) {
	inner := &pq.Error{Code: "23505", Constraint: "unique_primary_image_per_car"}
	wrapped := fmt.Errorf("failed to save image: %w", inner)

	assert.Equal(t, ErrDuplicatePrimary, mapConstraintError(wrapped))
}
