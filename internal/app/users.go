package app

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"quizmaster-service/internal/domain"
)

// SyncUser finds or creates the user record for a verified identity. Token
// issuance happens outside this service; this is the materialization step
// that runs after a login. Names are refreshed when the provider reports a
// new one.
func (s *Service) SyncUser(ctx context.Context, email, name string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.User{}, domain.Validationf("email is required")
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		user = domain.User{
			ID:        uuid.NewString(),
			Email:     email,
			Name:      name,
			Role:      domain.RoleStudent,
			CreatedAt: s.now(),
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return domain.User{}, err
		}
		return user, nil
	}
	if err != nil {
		return domain.User{}, err
	}

	if name != "" && user.Name != name {
		user.Name = name
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return domain.User{}, err
		}
	}
	return user, nil
}

// ListUsers returns all users, admin-facing.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

// UpdateRole changes a user's role to student or admin.
func (s *Service) UpdateRole(ctx context.Context, userID string, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, domain.Validationf("invalid role %q", role)
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	user.Role = role
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
