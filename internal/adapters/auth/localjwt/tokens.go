package localjwt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jsricop/vitalgo/internal/ports/auth"
)

var (
	ErrTokenEmpty    = errors.New("token is empty")
	ErrTokenInvalid  = errors.New("token is invalid")
	ErrSecretTooWeak = errors.New("jwt secret must be at least 16 characters")
)

const DefaultTTL = 24 * time.Hour

// Tokens emite y verifica JWTs HS256 firmados localmente.
// Implementa auth.AuthVerifier; no hay servicio de auth externo.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func New(secret string, ttl time.Duration) (*Tokens, error) {
	if len(secret) < 16 {
		return nil, ErrSecretTooWeak
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue firma un token con sub/email/role y expiración ttl.
func (t *Tokens) Issue(claims auth.Claims) (string, time.Time, error) {
	if strings.TrimSpace(claims.UserID) == "" {
		return "", time.Time{}, errors.New("claims missing user id")
	}

	now := t.now()
	expiresAt := now.Add(t.ttl)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   claims.UserID,
		"email": claims.Email,
		"role":  string(claims.Role),
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	})

	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify implementa auth.AuthVerifier.
func (t *Tokens) Verify(_ context.Context, raw string) (auth.Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	parsed, err := jwt.Parse(raw, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return auth.Claims{}, ErrTokenInvalid
	}

	sub, _ := mc["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return auth.Claims{}, errors.New("claims missing user id")
	}
	email, _ := mc["email"].(string)
	role, _ := mc["role"].(string)

	return auth.Claims{
		UserID: sub,
		Email:  email,
		Role:   auth.Role(role),
	}, nil
}
