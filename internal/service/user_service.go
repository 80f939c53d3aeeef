package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/saas-backend/internal/domain"
	"github.com/spec-kit/saas-backend/internal/repository"
	apperrors "github.com/spec-kit/saas-backend/pkg/util"
)

const (
	defaultPerPage = 20
	maxPerPage     = 50
)

// UpdateUserInput holds the mutable profile fields.
type UpdateUserInput struct {
	Name     *string
	Username *string
}

// UserService exposes account reads and profile mutations. It is also the
// resource-lookup capability behind the ownership guard on /users routes.
type UserService struct {
	users repository.UserRepository
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// FindOne returns the account or a NOT_FOUND domain error.
func (s *UserService) FindOne(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// FindResource satisfies the ownership guard's lookup contract.
func (s *UserService) FindResource(ctx context.Context, id string) (*domain.User, error) {
	return s.FindOne(ctx, id)
}

// FindAll lists accounts, newest first.
func (s *UserService) FindAll(ctx context.Context, page, perPage int) ([]*domain.User, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	users, err := s.users.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Update applies profile changes and returns the updated account.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Username != nil {
		user.Username = *input.Username
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Remove deletes the account.
func (s *UserService) Remove(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}
