package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at self-registration.
const MinPasswordLength = 8

const weakPasswordMessage = "Password must be at least 8 characters long and contain at least one letter and one number"

// ValidateStrength reports whether password has at least MinPasswordLength
// characters, at least one letter and at least one digit.
func ValidateStrength(password string) bool {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return false
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// CheckStrength is ValidateStrength returning a user-facing ValidationError.
func CheckStrength(password string) error {
	if !ValidateStrength(password) {
		return common.NewValidationError("password", weakPasswordMessage)
	}
	return nil
}

// Hasher wraps bcrypt. Every Hash call draws a fresh salt, and the salt and
// cost travel inside the returned string.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher returns a Hasher using the given bcrypt work factor.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	// dummy backs CompareDummy so a lookup miss costs the same as a mismatch.
	seed := make([]byte, 16)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(seed)), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &Hasher{cost: cost, dummy: dummy}, nil
}

// Hash returns the salted bcrypt hash of password. Passwords over bcrypt's
// 72-byte input limit are a validation error rather than silently truncated.
func (h *Hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", common.NewValidationError("password", "Password must be 72 bytes or fewer")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Verify reports whether password reproduces hash. The comparison is
// constant time.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CompareDummy burns one bcrypt comparison and always reports false. Call it
// when the account does not exist.
func (h *Hasher) CompareDummy(password string) bool {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
	return false
}
