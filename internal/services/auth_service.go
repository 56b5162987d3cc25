package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"complexcare/internal/models"
	"complexcare/internal/utils"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

type TenantGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

// TokenBlacklist records revoked token ids.
type TokenBlacklist interface {
	Blacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

type AuthService struct {
	users     UserStore
	tenants   TenantGetter
	blacklist TokenBlacklist
	tokens    *utils.TokenIssuer
	log       *zap.Logger
	now       func() time.Time
}

// NewAuthService builds the service. blacklist may be nil, in which case
// logout only clears the client cookie and tokens stay valid until expiry.
func NewAuthService(users UserStore, tenants TenantGetter, blacklist TokenBlacklist, tokens *utils.TokenIssuer, log *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tenants:   tenants,
		blacklist: blacklist,
		tokens:    tokens,
		log:       log,
		now:       time.Now,
	}
}

type LoginResult struct {
	Tokens *utils.TokenPair `json:"tokens"`
	User   *models.User     `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, storeErr("find user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if err := utils.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	return s.issue(ctx, user)
}

// LoginUser issues tokens for an already authenticated user, as after an
// OAuth sign-in.
func (s *AuthService) LoginUser(ctx context.Context, user *models.User) (*LoginResult, error) {
	return s.issue(ctx, user)
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*LoginResult, error) {
	if err := s.checkTenant(ctx, user); err != nil {
		return nil, err
	}

	pair, err := s.tokens.GenerateTokens(user.ID, user.TenantID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return &LoginResult{Tokens: pair, User: user}, nil
}

func (s *AuthService) checkTenant(ctx context.Context, user *models.User) error {
	if user.TenantID == nil {
		if user.IsSuperadmin() {
			return nil
		}
		return fmt.Errorf("%w: user has no tenant", ErrForbidden)
	}
	tenant, err := s.tenants.GetByID(ctx, *user.TenantID)
	if err != nil {
		return storeErr("get tenant", err)
	}
	if tenant == nil || !tenant.IsActive() {
		return fmt.Errorf("%w: tenant is suspended", ErrForbidden)
	}
	return nil
}

// Refresh rotates a refresh token: the old token id is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired refresh token", ErrUnauthorized)
	}

	revoked, err := s.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: refresh token revoked", ErrUnauthorized)
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", ErrUnauthorized)
	}
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, storeErr("find user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
	}
	if err := s.checkTenant(ctx, user); err != nil {
		return nil, err
	}

	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}
	pair, err := s.tokens.GenerateTokens(user.ID, user.TenantID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}
	return pair, nil
}

// Logout revokes the token id shared by the caller's access and refresh
// tokens.
func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	return s.revoke(ctx, claims)
}

func (s *AuthService) revoke(ctx context.Context, claims *utils.Claims) error {
	if s.blacklist == nil {
		return nil
	}
	issued := s.now()
	if claims.IssuedAt != nil {
		issued = claims.IssuedAt.Time
	}
	ttl := issued.Add(utils.RefreshTokenDuration).Sub(s.now())
	if err := s.blacklist.Blacklist(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("%w: revoke token: %w", ErrUnavailable, err)
	}
	return nil
}

func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.blacklist == nil {
		return false, nil
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, jti)
	if err != nil {
		return false, fmt.Errorf("%w: check token: %w", ErrUnavailable, err)
	}
	return revoked, nil
}

func (s *AuthService) VerifyAccess(token string) (*utils.Claims, error) {
	claims, err := s.tokens.VerifyAccess(token)
	if err != nil {
		return nil, errors.Join(ErrUnauthorized, err)
	}
	return claims, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, storeErr("find user", err)
	}
	if user == nil {
		return nil, notFound("user")
	}
	return user, nil
}
