package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTokenDuration  = 15 * time.Minute
	RefreshTokenDuration = 30 * 24 * time.Hour
)

// Claims represents JWT claims. TenantID is empty for superadmins.
type Claims struct {
	TenantID string `json:"tenant_id,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Tenant parses the tenant claim; ok is false when the token carries none.
func (c *Claims) Tenant() (id uuid.UUID, ok bool) {
	if c.TenantID == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(c.TenantID)
	return id, err == nil
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenIssuer signs and verifies access and refresh tokens with separate
// HS256 secrets.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	now           func() time.Time
}

func NewTokenIssuer(accessSecret, refreshSecret []byte) *TokenIssuer {
	return &TokenIssuer{accessSecret: accessSecret, refreshSecret: refreshSecret, now: time.Now}
}

// GenerateTokens creates an access/refresh pair sharing one token id.
func (t *TokenIssuer) GenerateTokens(userID uuid.UUID, tenantID *uuid.UUID, role string) (*TokenPair, error) {
	jti := uuid.NewString()
	now := t.now()

	tenant := ""
	if tenantID != nil {
		tenant = tenantID.String()
	}

	claims := func(ttl time.Duration) *Claims {
		return &Claims{
			TenantID: tenant,
			Role:     role,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        jti,
				Subject:   userID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			},
		}
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims(AccessTokenDuration)).SignedString(t.accessSecret)
	if err != nil {
		return nil, err
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims(RefreshTokenDuration)).SignedString(t.refreshSecret)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenIssuer) VerifyAccess(token string) (*Claims, error) {
	return verifyJWT(token, t.accessSecret, t.now)
}

func (t *TokenIssuer) VerifyRefresh(token string) (*Claims, error) {
	return verifyJWT(token, t.refreshSecret, t.now)
}

func verifyJWT(tokenStr string, secret []byte, now func() time.Time) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(now))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.ID == "" {
			return nil, errors.New("token has no id")
		}
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
