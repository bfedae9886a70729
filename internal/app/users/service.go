package users

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/linkfolio/backend/internal/adapters/transport/http/dto"
	"github.com/linkfolio/backend/internal/app/password"
	customErrors "github.com/linkfolio/backend/internal/domain/errors"
	"github.com/linkfolio/backend/internal/domain/model"
	"github.com/linkfolio/backend/internal/domain/repo"
	"github.com/linkfolio/backend/internal/domain/storage"
)

type userService struct {
	userRepo repo.UserRepo
	linkRepo repo.LinkRepo
	blobs    storage.BlobStore
	v        *validator.Validate
}

type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (model.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, in dto.UpdateUserDTO) (model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in dto.UpdateProfileDTO, image *storage.Upload) (model.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

func New(ur repo.UserRepo, lr repo.LinkRepo, blobs storage.BlobStore, v *validator.Validate) Service {
	return &userService{userRepo: ur, linkRepo: lr, blobs: blobs, v: v}
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (model.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

func (s *userService) UpdateUser(ctx context.Context, userID uuid.UUID, in dto.UpdateUserDTO) (model.User, error) {
	if err := s.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	if in.FirstName != "" {
		user.FirstName = strings.TrimSpace(in.FirstName)
	}
	if in.LastName != "" {
		user.LastName = strings.TrimSpace(in.LastName)
	}
	if in.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(in.Email))
	}
	if in.Password != "" {
		hash, err := password.Hash(in.Password)
		if err != nil {
			return model.User{}, customErrors.WrapInternal(err, "UpdateUser")
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return model.User{}, customErrors.ErrAlreadyExists
		}
		return model.User{}, customErrors.WrapInternal(err, "UpdateUser")
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, in dto.UpdateProfileDTO, image *storage.Upload) (model.User, error) {
	if err := s.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	imageURL := in.ExistingImage
	if image != nil {
		imageURL, err = s.blobs.Upload(ctx, *image)
		if err != nil {
			if customErrors.IsInvalidArgument(err) {
				return model.User{}, err
			}
			return model.User{}, customErrors.WrapInternal(err, "UpdateProfile")
		}
	}

	user.ProfileTitle = in.ProfileTitle
	user.Bio = in.Bio
	if in.BackgroundColor != "" {
		user.BackgroundColor = in.BackgroundColor
	}
	if imageURL != "" {
		user.ProfileImage = imageURL
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return model.User{}, customErrors.WrapInternal(err, "UpdateProfile")
	}
	return user, nil
}

// DeleteUser removes the account and everything hanging off it. Links go
// first so a failed user delete leaves no orphaned rows pointing at a
// half-removed account.
func (s *userService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.linkRepo.DeleteLinksByUser(ctx, userID); err != nil {
		return customErrors.WrapInternal(err, "DeleteUser")
	}
	return s.userRepo.DeleteUser(ctx, userID)
}
