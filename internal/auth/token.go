package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

// Claims is the access token payload: sub carries the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 access tokens with a process-wide secret.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	audience string
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewTokenService fails closed: an empty secret is never used for signing.
func NewTokenService(cfg Config, logger *zap.SugaredLogger) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &TokenService{
		secret:   []byte(cfg.Secret),
		ttl:      ttl,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Issue signs a token for subject with a fixed TTL.
func (s *TokenService) Issue(subject, email string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}
	now := s.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        utilities.NewKSUID(),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature, expiry and, when configured, issuer and audience.
// Every failure is reported as ErrInvalidToken; the cause is only logged.
func (s *TokenService) Verify(token string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrInvalidToken
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		s.logger.Debugw("token rejected", "err", err)
		return nil, ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" {
		s.logger.Debugw("token rejected", "err", "missing subject")
		return nil, ErrInvalidToken
	}
	return claims, nil
}
