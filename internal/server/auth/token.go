// Package auth is the credential core of the server: the password policy and
// hasher, issuance and stateless verification of signed session tokens, and
// the Classification a verified token maps to.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenValidity is the lifetime of a session token unless configured.
const DefaultTokenValidity = 24 * time.Hour

var signingMethod = jwt.SigningMethodHS256

// Claims is the token payload: the registered claims (sub, iat, exp) plus a
// snapshot of the username and role taken at issuance.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Token is an issued credential. Raw is what the client presents back.
type Token struct {
	Raw             string
	SubjectID       string
	SubjectUsername string
	IsAdmin         bool
	IssuedAt        time.Time
	ExpiresAt       time.Time
}

// Issuer mints tokens. It holds no per-session state.
type Issuer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// NewIssuer fails when the secret is empty or the validity is not positive;
// both are startup misconfigurations.
func NewIssuer(secret []byte, validity time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret is not configured")
	}
	if validity <= 0 {
		return nil, fmt.Errorf("token validity must be positive, got %s", validity)
	}
	return &Issuer{secret: secret, validity: validity, now: time.Now}, nil
}

// Validity is the fixed window every issued token is valid for.
func (i *Issuer) Validity() time.Duration { return i.validity }

// Issue signs a token for the given identity snapshot.
func (i *Issuer) Issue(subjectID, subjectUsername string, isAdmin bool) (Token, error) {
	issuedAt := i.now().Truncate(jwt.TimePrecision)
	expiresAt := issuedAt.Add(i.validity)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: subjectUsername,
		IsAdmin:  isAdmin,
	}

	raw, err := jwt.NewWithClaims(signingMethod, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	return Token{
		Raw:             raw,
		SubjectID:       subjectID,
		SubjectUsername: subjectUsername,
		IsAdmin:         isAdmin,
		IssuedAt:        issuedAt,
		ExpiresAt:       expiresAt,
	}, nil
}

// Verifier classifies presented tokens by recomputing the signature and
// checking expiry. It never consults a store, so a demoted or deleted
// identity keeps its old claims until the token expires.
type Verifier struct {
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

// NewVerifier returns a Verifier for tokens signed with secret.
func NewVerifier(secret []byte) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret is not configured")
	}
	v := &Verifier{secret: secret, now: time.Now}
	v.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	return v, nil
}

// Verify classifies raw. The signature is checked over the header and
// payload segments exactly as transmitted, before the payload is decoded,
// so any change to those bytes is an invalid signature.
func (v *Verifier) Verify(raw string) Classification {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Rejected(ReasonMalformed)
	}

	sig, err := v.parser.DecodeSegment(parts[2])
	if err != nil {
		return Rejected(ReasonMalformed)
	}
	if err := signingMethod.Verify(parts[0]+"."+parts[1], sig, v.secret); err != nil {
		return Rejected(ReasonInvalidSignature)
	}

	claims := &Claims{}
	_, err = v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Rejected(ReasonInvalidSignature)
	default:
		return Rejected(ReasonMalformed)
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return Rejected(ReasonMalformed)
	}
	// A token is still valid at the instant it expires.
	now := v.now()
	if now.After(claims.ExpiresAt.Time) {
		return Rejected(ReasonExpired)
	}
	if claims.NotBefore != nil && now.Before(claims.NotBefore.Time) {
		return Rejected(ReasonMalformed)
	}
	if claims.IsAdmin {
		return AuthenticatedAdmin(claims.Subject, claims.Username)
	}
	return AuthenticatedUser(claims.Subject, claims.Username)
}
