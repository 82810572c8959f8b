package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: fmt.Errorf("folder 7: %w", ErrNotFound), want: http.StatusNotFound},
		{name: "invalid argument", err: fmt.Errorf("%w: cycle", ErrInvalidArgument), want: http.StatusBadRequest},
		{name: "internal", err: fmt.Errorf("%w: disk full", ErrInternal), want: http.StatusInternalServerError},
		{name: "outside taxonomy", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}
