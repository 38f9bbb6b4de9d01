package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/tran-hoang-nhan/phone-shop/internal/auth"
	"github.com/tran-hoang-nhan/phone-shop/internal/handlerutils"
	"github.com/tran-hoang-nhan/phone-shop/internal/servererrors"
)

type contextKey struct{}

// claimsKey is the request-context key carrying the verified token claims.
// Credentials travel with the request, never in process-wide state.
var claimsKey contextKey = contextKey{}

// AuthWithContext verifies the bearer token from the Authorization header and
// injects the claims into the request context. When roles are given, the
// token's role must match one of them; no roles means any authenticated user.
func (mw *middleware) AuthWithContext(h handlerutils.APIHandler, roles ...string) handlerutils.APIHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		tokenStr, found := strings.CutPrefix(
			r.Header.Get("Authorization"),
			"Bearer ",
		)
		if !found || tokenStr == "" {
			return servererrors.New(
				http.StatusUnauthorized,
				servererrors.ErrNoBearerToken.Error(),
				nil,
			)
		}

		isValid, claims, err := mw.jwtManager.ValidateAccessToken(tokenStr)
		if err != nil {
			return err
		}

		if !isValid {
			return servererrors.New(
				http.StatusUnauthorized,
				servererrors.ErrUnauthorized.Error(),
				nil,
			)
		}

		if len(roles) > 0 && !roleAllowed(claims.Role, roles) {
			return servererrors.New(
				http.StatusForbidden,
				servererrors.ErrForbidden.Error(),
				nil,
			)
		}

		ctx := context.WithValue(
			r.Context(),
			claimsKey,
			claims,
		)

		return h(w, r.WithContext(ctx))
	}
}

func roleAllowed(role string, roles []string) bool {
	for _, allowed := range roles {
		if role == allowed {
			return true
		}
	}
	return false
}

// GetClaimsFromContext returns the claims stored by AuthWithContext, or nil
// when the request never went through it.
func GetClaimsFromContext(ctx context.Context) *auth.TokenClaims {
	claims, ok := ctx.Value(claimsKey).(*auth.TokenClaims)
	if !ok {
		return nil
	}

	return claims
}

// NewTestContext injects claims the way AuthWithContext does. Only for tests.
func NewTestContext(ctx context.Context, claims *auth.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
