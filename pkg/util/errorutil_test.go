package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStoreUnavailable(cause)

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, CodeStoreUnavailable, domainErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, domainErr.HTTPStatus)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	plain := errors.New("boom")
	converted := ToDomainError(plain)
	assert.Equal(t, CodeInternal, converted.Code)
	assert.Equal(t, http.StatusInternalServerError, converted.HTTPStatus)

	// Wrapped domain errors keep their identity.
	wrapped := fmt.Errorf("handler: %w", NewAlreadyClosed(7))
	recovered := ToDomainError(wrapped)
	assert.Equal(t, CodeAlreadyClosed, recovered.Code)
	assert.Equal(t, http.StatusConflict, recovered.HTTPStatus)
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewLimitExceeded(3, 3), CodeLimitExceeded))
	assert.True(t, HasCode(fmt.Errorf("wrap: %w", NewNotClaimed(1)), CodeNotClaimed))
	assert.False(t, HasCode(NewNotClaimed(1), CodeAlreadyClosed))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestConstructorStatuses(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad", nil), CodeValidation, http.StatusBadRequest},
		{NewForbidden("no"), CodeForbidden, http.StatusForbidden},
		{NewTicketNotFound(nil), CodeNotFound, http.StatusNotFound},
		{NewAlreadyClaimed(1, "s1"), CodeAlreadyClaimed, http.StatusConflict},
		{NewNoRatableTicket(), CodeNoRatableTicket, http.StatusNotFound},
		{NewAlreadyRated(1), CodeAlreadyRated, http.StatusConflict},
	}
	for _, tc := range tests {
		domainErr := ToDomainError(tc.err)
		assert.Equal(t, tc.code, domainErr.Code)
		assert.Equal(t, tc.status, domainErr.HTTPStatus)
	}
}
