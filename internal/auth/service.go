package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskward/taskward/internal/shared"
)

// DefaultRoleName is assigned to every self-registered account.
const DefaultRoleName = "user"

// PermissionResolver computes effective permissions; satisfied by
// rbac.Service.
type PermissionResolver interface {
	EffectivePermissions(ctx context.Context, userID int64) ([]string, error)
	HasPermission(ctx context.Context, userID int64, permission string) (bool, error)
}

// LoginResult bundles what the login endpoint returns to the client. The
// effective permission list lets a frontend shape its UI without a second
// round trip.
type LoginResult struct {
	Token       string
	User        *User
	Roles       []string
	Permissions []string
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	resolver PermissionResolver
	denylist *Denylist
	secret   string
	ttl      time.Duration
}

// NewService constructs a new Service.
func NewService(repo Repository, resolver PermissionResolver, denylist *Denylist, secret string, ttl time.Duration) *Service {
	return &Service{repo: repo, resolver: resolver, denylist: denylist, secret: secret, ttl: ttl}
}

// Register creates an account holding the default role and returns a signed
// token.
func (s *Service) Register(ctx context.Context, name, email, password string) (string, *User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}
	roleID, err := s.repo.FindRoleIDByName(ctx, DefaultRoleName)
	if err != nil {
		return "", nil, err
	}
	user, err := s.repo.CreateWithRole(ctx, name, email, string(hash), roleID)
	if err != nil {
		return "", nil, err
	}
	token, err := IssueToken(s.secret, user.ID, s.ttl)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Authenticate validates credentials and issues a token. Invalid email and
// invalid password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", shared.ErrAuthentication)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", shared.ErrAuthentication)
	}
	token, err := IssueToken(s.secret, user.ID, s.ttl)
	if err != nil {
		return nil, err
	}
	roles, err := s.repo.RoleNames(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	permissions, err := s.resolver.EffectivePermissions(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user, Roles: roles, Permissions: permissions}, nil
}

// CheckPermission answers whether the user holds a specific permission.
func (s *Service) CheckPermission(ctx context.Context, userID int64, permission string) (bool, error) {
	if permission == "" {
		return false, fmt.Errorf("%w: permission required", shared.ErrValidation)
	}
	return s.resolver.HasPermission(ctx, userID, permission)
}

// Logout revokes the presented token for its remaining lifetime.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
