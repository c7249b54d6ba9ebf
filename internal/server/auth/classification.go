package auth

import (
	"context"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
)

// Outcome is the kind of a Classification.
type Outcome uint8

const (
	OutcomeRejected Outcome = iota
	OutcomeUser
	OutcomeAdmin
)

// Reason says why a credential was rejected.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonMissing
	ReasonMalformed
	ReasonInvalidSignature
	ReasonExpired
)

func (r Reason) String() string {
	switch r {
	case ReasonMissing:
		return "missing"
	case ReasonMalformed:
		return "malformed"
	case ReasonInvalidSignature:
		return "invalid_signature"
	case ReasonExpired:
		return "expired"
	default:
		return "none"
	}
}

// Err maps the reason onto its common.ErrToken* sentinel.
func (r Reason) Err() error {
	switch r {
	case ReasonMissing:
		return common.ErrTokenMissing
	case ReasonMalformed:
		return common.ErrTokenMalformed
	case ReasonInvalidSignature:
		return common.ErrTokenInvalidSignature
	case ReasonExpired:
		return common.ErrTokenExpired
	default:
		return nil
	}
}

// Principal is the caller identity recovered from a verified token.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Classification is the verdict on a presented credential: rejected with a
// reason, or authenticated as a user or an admin. The zero value is a
// rejection with ReasonNone and should not be produced outside tests.
type Classification struct {
	outcome   Outcome
	reason    Reason
	principal Principal
}

// Rejected is a refusal for reason.
func Rejected(reason Reason) Classification {
	return Classification{outcome: OutcomeRejected, reason: reason}
}

// AuthenticatedUser is a verified non-admin identity.
func AuthenticatedUser(subjectID, subjectUsername string) Classification {
	return Classification{
		outcome:   OutcomeUser,
		principal: Principal{ID: subjectID, Username: subjectUsername},
	}
}

// AuthenticatedAdmin is a verified identity holding the admin role.
func AuthenticatedAdmin(subjectID, subjectUsername string) Classification {
	return Classification{
		outcome:   OutcomeAdmin,
		principal: Principal{ID: subjectID, Username: subjectUsername, IsAdmin: true},
	}
}

// Outcome reports which variant c is.
func (c Classification) Outcome() Outcome { return c.outcome }

// Reason is ReasonNone unless c is a rejection.
func (c Classification) Reason() Reason { return c.reason }

// Principal returns the authenticated identity; ok is false for rejections.
func (c Classification) Principal() (p Principal, ok bool) {
	if c.outcome == OutcomeRejected {
		return Principal{}, false
	}
	return c.principal, true
}

// Err is nil for authenticated classifications.
func (c Classification) Err() error {
	if c.outcome != OutcomeRejected {
		return nil
	}
	if c.reason == ReasonNone {
		return common.ErrorTokenRejected
	}
	return c.reason.Err()
}

// String is a short label used for logs and metrics.
func (c Classification) String() string {
	switch c.outcome {
	case OutcomeUser:
		return "user"
	case OutcomeAdmin:
		return "admin"
	default:
		return c.reason.String()
	}
}

type ctxKey struct{}

// WithPrincipal attaches p to ctx for downstream handlers.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFromContext returns the principal set by a guard, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
