package service

import (
	"context"

	"github.com/MathewAndreiAbao/eguidance-api/internal/models"
	appErrors "github.com/MathewAndreiAbao/eguidance-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListCounselors(ctx context.Context) ([]models.User, error)
}

// UserService exposes the user directory to the API surface.
type UserService struct {
	repo userRepository
}

// NewUserService constructs the service.
func NewUserService(repo userRepository) *UserService {
	return &UserService{repo: repo}
}

// Profile returns the public projection of a user.
func (s *UserService) Profile(ctx context.Context, id string) (*models.UserInfo, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return &models.UserInfo{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}, nil
}

// ListCounselors returns the bookable counselors for the scheduling UI.
func (s *UserService) ListCounselors(ctx context.Context) ([]models.UserInfo, error) {
	users, err := s.repo.ListCounselors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list counselors")
	}
	infos := make([]models.UserInfo, 0, len(users))
	for _, user := range users {
		infos = append(infos, models.UserInfo{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role})
	}
	return infos, nil
}
