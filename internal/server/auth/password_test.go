package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidateStrength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		password string
		want     bool
	}{
		{"abcd1234", true},
		{"1234abcd", true},
		{"a1b2c3d4e5", true},
		{"pass word 1", true},
		{"abcdefgh", false},
		{"12345678", false},
		{"1234567", false},
		{"short1", false},
		{"", false},
		{"ääääääa1", true},
	}

	for _, tt := range tests {
		if got := ValidateStrength(tt.password); got != tt.want {
			t.Errorf("ValidateStrength(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestCheckStrength_ReturnsValidationError(t *testing.T) {
	t.Parallel()

	err := CheckStrength("abcdefgh")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorValidation))

	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "password", ve.Field)

	assert.NoError(t, CheckStrength("abcd1234"))
}

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNewHasher_RejectsBadCost(t *testing.T) {
	t.Parallel()

	_, err := NewHasher(bcrypt.MinCost - 1)
	assert.Error(t, err)
	_, err = NewHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}

func TestHasher_RoundTrip(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	for _, p := range []string{"abcd1234", "TestPass123", "ünïcødé-9"} {
		hash, err := h.Hash(p)
		require.NoError(t, err)
		assert.NotEqual(t, p, hash)
		assert.True(t, h.Verify(p, hash), "password %q must verify", p)
	}
}

func TestHasher_DifferentPasswordsDoNotVerify(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	hash, err := h.Hash("password123")
	require.NoError(t, err)

	assert.False(t, h.Verify("password124", hash))
	assert.False(t, h.Verify("", hash))
	assert.False(t, h.Verify("password123", "not-a-bcrypt-hash"))
}

func TestHasher_SaltsEachCall(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	a, err := h.Hash("abcd1234")
	require.NoError(t, err)
	b, err := h.Hash("abcd1234")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, b, len(a))
	assert.True(t, h.Verify("abcd1234", a))
	assert.True(t, h.Verify("abcd1234", b))
}

func TestHasher_TooLongIsValidationError(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	_, err := h.Hash(strings.Repeat("a1", 40))
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorValidation))
}

func TestHasher_CompareDummyAlwaysFalse(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	assert.False(t, h.CompareDummy("anything"))
	assert.False(t, h.CompareDummy(""))
}
