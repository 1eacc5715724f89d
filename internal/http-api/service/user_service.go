package service

import (
	"context"
	"strings"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/permissions"
	"reviewhub/internal/http-api/repository"
)

const defaultRole = permissions.RoleUser

// UserInput carries admin-side user fields; nil pointers mean "unchanged"
// on update.
type UserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

type UserService interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, in UserInput) (*models.User, error)
	UpdateByUsername(ctx context.Context, username string, in UserInput) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, in UserInput) (*models.User, error)
	DeleteByUsername(ctx context.Context, username string) error
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	return s.userRepo.Search(ctx, search, page, pageSize)
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create is the admin-side creation path; unlike signup it may set a role
// and never sends mail.
func (s *userService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	user := &models.User{Role: string(defaultRole)}
	if err := applyUserInput(user, in); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, s.translateUserError(ctx, user, err)
	}
	return user, nil
}

func (s *userService) UpdateByUsername(ctx context.Context, username string, in UserInput) (*models.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := applyUserInput(user, in); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, s.translateUserError(ctx, user, err)
	}
	return user, nil
}

// UpdateProfile is the self-service path: role changes are dropped before
// they reach storage.
func (s *userService) UpdateProfile(ctx context.Context, userID string, in UserInput) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	in.Role = nil
	if err := applyUserInput(user, in); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, s.translateUserError(ctx, user, err)
	}
	return user, nil
}

func (s *userService) DeleteByUsername(ctx context.Context, username string) error {
	if err := s.userRepo.DeleteByUsername(ctx, username); err != nil {
		if repository.IsNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func applyUserInput(user *models.User, in UserInput) error {
	if in.Username != nil {
		if strings.EqualFold(*in.Username, "me") {
			return ErrReservedUsername
		}
		user.Username = *in.Username
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Role != nil {
		user.Role = string(permissions.ParseRole(*in.Role))
	}
	return nil
}

// translateUserError turns the storage-level uniqueness failure into the
// matching sentinel. The translated error does not say which column
// collided, so re-query the way the signup path does.
func (s *userService) translateUserError(ctx context.Context, user *models.User, err error) error {
	if !repository.IsDuplicateKey(err) {
		return err
	}
	if existing, e := s.userRepo.FindByEmail(ctx, user.Email); e == nil && existing.ID != user.ID {
		return ErrEmailInUse
	}
	return ErrNameInUse
}
