package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

// PrincipalFromContext returns the principal attached by RequireAuth.
func PrincipalFromContext(ctx context.Context) (*entity.Principal, bool) {
	return entity.FromContext(ctx)
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *entity.Principal) context.Context {
	return entity.NewContext(ctx, p)
}

// TokenVerifier verifies bearer tokens; *TokenService satisfies it.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// PrincipalValidator resolves a token subject to a live identity; *Service satisfies it.
type PrincipalValidator interface {
	ValidateByID(ctx context.Context, id string) (*entity.Principal, bool)
}

type Middleware struct {
	tokens    TokenVerifier
	validator PrincipalValidator
	logger    *zap.SugaredLogger
}

func NewMiddleware(tokens TokenVerifier, validator PrincipalValidator, logger *zap.SugaredLogger) *Middleware {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Middleware{tokens: tokens, validator: validator, logger: logger}
}

// RequireAuth rejects requests without a valid bearer token for an existing user.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			utilities.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		claims, err := m.tokens.Verify(token)
		if err != nil {
			utilities.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": ErrInvalidToken.Error()})
			return
		}
		p, ok := m.validator.ValidateByID(r.Context(), claims.Subject)
		if !ok {
			m.logger.Warnw("jwt validation failed", "sub", claims.Subject)
			utilities.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": ErrInvalidToken.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(prefix):])
	return token, token != ""
}
