package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorUnwrapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"validation error", NewValidationError("isbn", "must not be empty"), ErrInvalidInput},
		{"not found error", NewNotFoundError("work", "10.1000/182"), ErrNotFound},
		{"rate limit error", NewRateLimitError("CrossRef", 2*time.Second), ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "validation error: isbn: must not be empty",
		NewValidationError("isbn", "must not be empty").Error())
	assert.Equal(t, "work not found: 10.1000/182",
		NewNotFoundError("work", "10.1000/182").Error())
	assert.Equal(t, "rate limited by CrossRef: retry after 2s",
		NewRateLimitError("CrossRef", 2*time.Second).Error())
}
