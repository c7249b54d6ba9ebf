package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/garagekeeper/internal/common"
	"github.com/dmitrijs2005/garagekeeper/internal/logging"
	"github.com/dmitrijs2005/garagekeeper/internal/server/auth"
)

// Guard names used in logs and metrics.
const (
	guardUser  = "user"
	guardAdmin = "admin"
)

// TokenVerifier classifies a presented token. *auth.Verifier satisfies it.
type TokenVerifier interface {
	Verify(raw string) auth.Classification
}

// DecisionRecorder is told about every guard decision.
type DecisionRecorder interface {
	ObserveDecision(guard, outcome string)
}

// Guard gates handlers on the caller's bearer token. Every guarded request
// ends in exactly one of two ways: the handler runs with the principal in its
// context, or a rejection is written and the handler is never called.
type Guard struct {
	verifier      TokenVerifier
	allowRawToken bool
	recorder      DecisionRecorder
	logger        logging.Logger
}

func NewGuard(v TokenVerifier, allowRawToken bool, recorder DecisionRecorder, l logging.Logger) *Guard {
	return &Guard{
		verifier:      v,
		allowRawToken: allowRawToken,
		recorder:      recorder,
		logger:        l.With("module", "guard"),
	}
}

// extractToken pulls the credential out of an Authorization header value.
// ok is false when the header is absent or blank; a present header that does
// not carry a usable credential yields ok with an empty token.
func extractToken(header string, allowRaw bool) (token string, ok bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}

	scheme, rest, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, common.BearerScheme) {
		return strings.TrimSpace(rest), true
	}
	if allowRaw && !found {
		return header, true
	}
	return "", true
}

// Classify runs the token extraction and verification step shared by both
// guards. A missing credential never reaches the verifier.
func (g *Guard) Classify(r *http.Request) auth.Classification {
	token, ok := extractToken(r.Header.Get(common.AuthorizationHeaderName), g.allowRawToken)
	if !ok {
		return auth.Rejected(auth.ReasonMissing)
	}
	if token == "" {
		return auth.Rejected(auth.ReasonMalformed)
	}
	return g.verifier.Verify(token)
}

func (g *Guard) record(guard, outcome string) {
	if g.recorder != nil {
		g.recorder.ObserveDecision(guard, outcome)
	}
}

// RequireUser admits any authenticated caller.
func (g *Guard) RequireUser(next http.Handler) http.Handler {
	return g.require(guardUser, next)
}

// RequireAdmin admits only AuthenticatedAdmin callers. A valid non-admin
// token is answered with 403 rather than the 401 used for bad tokens.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return g.require(guardAdmin, next)
}

func (g *Guard) require(guard string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := g.Classify(r)

		p, ok := c.Principal()
		if !ok {
			g.record(guard, c.String())
			g.logger.Debug(r.Context(), "token rejected", "guard", guard, "reason", c.Reason().String(), "path", r.URL.Path)
			writeMessage(w, http.StatusUnauthorized, common.MessageSignInRequired)
			return
		}

		if guard == guardAdmin && c.Outcome() != auth.OutcomeAdmin {
			g.record(guard, "insufficient_privilege")
			g.logger.Info(r.Context(), "admin access denied", "user_id", p.ID, "path", r.URL.Path)
			writeMessage(w, http.StatusForbidden, common.MessageAdminRequired)
			return
		}

		g.record(guard, c.String())
		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

// principal returns the identity a guard attached to r. Handlers mounted
// behind a guard can rely on it being present.
func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}
