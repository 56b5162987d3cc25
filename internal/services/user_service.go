package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"complexcare/internal/models"
	"complexcare/internal/utils"
)

type UserService struct {
	users UserStore
	log   *zap.Logger
}

func NewUserService(users UserStore, log *zap.Logger) *UserService {
	return &UserService{users: users, log: log}
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// CreateUser adds a user to the actor's tenant. Superadmins cannot be
// created through the API.
func (s *UserService) CreateUser(ctx context.Context, actor Actor, req CreateUserRequest) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins can create users", ErrForbidden)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, invalidf("email %q is not valid", req.Email)
	}
	role := strings.ToLower(req.Role)
	if role == "" {
		role = models.RoleStaff
	}
	if role == models.RoleSuperadmin || !utils.Contains(models.Roles, role) {
		return nil, invalidf("role %q is not allowed", req.Role)
	}
	if len(req.Password) < 8 {
		return nil, invalidf("password must be at least 8 characters")
	}

	existing, err := s.users.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, storeErr("find user", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user already exists", ErrConflict)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	tenantID := actor.TenantID
	user := &models.User{
		TenantID:     &tenantID,
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeErr("create user", err)
	}

	s.log.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("role", role))
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, actor Actor) ([]models.User, error) {
	users, err := s.users.ListByTenant(ctx, actor.TenantID)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, actor Actor, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		return nil, storeErr("find user", err)
	}
	if user == nil || user.TenantID == nil || *user.TenantID != actor.TenantID {
		return nil, notFound("user")
	}
	return user, nil
}

// SuperadminStore adds the count needed to bootstrap the first superadmin.
type SuperadminStore interface {
	UserStore
	CountSuperadmins(ctx context.Context) (int, error)
}

// BootstrapSuperadmin creates a superadmin with no tenant. It refuses when
// one already exists unless force is set.
func BootstrapSuperadmin(ctx context.Context, users SuperadminStore, email, name, password string, force bool, log *zap.Logger) (*models.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalidf("email %q is not valid", email)
	}
	if len(password) < 8 {
		return nil, invalidf("password must be at least 8 characters")
	}
	n, err := users.CountSuperadmins(ctx)
	if err != nil {
		return nil, storeErr("count superadmins", err)
	}
	if n > 0 && !force {
		return nil, fmt.Errorf("%w: a superadmin already exists", ErrConflict)
	}
	existing, err := users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, storeErr("find user", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user already exists", ErrConflict)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Email: email, Name: name, PasswordHash: hash, Role: models.RoleSuperadmin}
	if err := users.Create(ctx, user); err != nil {
		return nil, storeErr("create user", err)
	}
	log.Info("superadmin created", zap.String("user_id", user.ID.String()))
	return user, nil
}
