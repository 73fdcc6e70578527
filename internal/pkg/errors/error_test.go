package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrHouseholdNoMembership)
	assert.Equal(t, ErrHouseholdNoMembership, err.Code)
	assert.Equal(t, http.StatusForbidden, err.HTTPStatus())
	assert.Contains(t, err.Error(), "No active household membership")

	withDetail := New(ErrItemNotFound, "item abc-123")
	assert.Contains(t, withDetail.Error(), "item abc-123")
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrInternalServer))

	base := stderrors.New("connection refused")
	wrapped := Wrap(base, ErrInternalServer)
	assert.Equal(t, ErrInternalServer, wrapped.Code)
	assert.ErrorIs(t, wrapped, base)

	// Wrapping an AppError keeps its original code.
	rewrapped := Wrap(fmt.Errorf("outer: %w", New(ErrItemNotFound)), ErrInternalServer, "detail")
	assert.Equal(t, ErrItemNotFound, rewrapped.Code)
	assert.Equal(t, "detail", rewrapped.Details)
}

func TestIsAndExtractCode(t *testing.T) {
	err := New(ErrMembershipRevoked)
	assert.True(t, Is(err, ErrMembershipRevoked))
	assert.False(t, Is(err, ErrHouseholdNoMembership))
	assert.False(t, Is(stderrors.New("plain"), ErrMembershipRevoked))

	assert.Equal(t, ErrMembershipRevoked, ExtractCode(err))
	assert.Equal(t, ErrInternalServer, ExtractCode(stderrors.New("plain")))
}

func TestSafeDetails(t *testing.T) {
	// 4xx details are safe to surface.
	assert.Equal(t, "name too short", SafeDetails(New(ErrInvalidParams, "name too short")))

	// 5xx never leaks the underlying error text.
	internal := Wrap(stderrors.New("pq: password authentication failed"), ErrInternalServer)
	assert.Equal(t, "", SafeDetails(internal))
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		code   int
		status int
	}{
		{ErrHouseholdNoMembership, http.StatusForbidden},
		{ErrMembershipRevoked, http.StatusForbidden},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrItemNotFound, http.StatusNotFound},
		{ErrSearchInvalidQuery, http.StatusBadRequest},
		{ErrSearchFailed, http.StatusInternalServerError},
		{999999, http.StatusInternalServerError}, // unknown code
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, GetHTTPStatus(tt.code), "code %d", tt.code)
	}
}
