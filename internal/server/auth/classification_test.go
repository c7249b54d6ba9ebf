package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestClassification_Rejected(t *testing.T) {
	tests := []struct {
		reason Reason
		err    error
		label  string
	}{
		{ReasonMissing, common.ErrTokenMissing, "missing"},
		{ReasonMalformed, common.ErrTokenMalformed, "malformed"},
		{ReasonInvalidSignature, common.ErrTokenInvalidSignature, "invalid_signature"},
		{ReasonExpired, common.ErrTokenExpired, "expired"},
	}
	for _, tt := range tests {
		c := Rejected(tt.reason)
		assert.Equal(t, OutcomeRejected, c.Outcome())
		assert.Equal(t, tt.label, c.String())
		assert.True(t, errors.Is(c.Err(), tt.err))
		assert.True(t, errors.Is(c.Err(), common.ErrorTokenRejected))

		_, ok := c.Principal()
		assert.False(t, ok)
	}
}

func TestClassification_Authenticated(t *testing.T) {
	u := AuthenticatedUser("1", "alice")
	assert.Equal(t, "user", u.String())
	assert.NoError(t, u.Err())
	p, ok := u.Principal()
	assert.True(t, ok)
	assert.False(t, p.IsAdmin)

	a := AuthenticatedAdmin("2", "root")
	assert.Equal(t, "admin", a.String())
	p, ok = a.Principal()
	assert.True(t, ok)
	assert.True(t, p.IsAdmin)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	want := Principal{ID: "9", Username: "zed", IsAdmin: true}
	got, ok := PrincipalFromContext(WithPrincipal(context.Background(), want))
	assert.True(t, ok)
	assert.Equal(t, want, got)
}
