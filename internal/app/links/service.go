package links

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/linkfolio/backend/internal/adapters/transport/http/dto"
	customErrors "github.com/linkfolio/backend/internal/domain/errors"
	"github.com/linkfolio/backend/internal/domain/model"
	"github.com/linkfolio/backend/internal/domain/repo"
)

type linkService struct {
	linkRepo repo.LinkRepo
	v        *validator.Validate
}

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, in dto.CreateLinkDTO) (model.Link, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Link, error)
	Delete(ctx context.Context, userID, linkID uuid.UUID) error
}

func New(lr repo.LinkRepo, v *validator.Validate) Service {
	return &linkService{linkRepo: lr, v: v}
}

func (s *linkService) Create(ctx context.Context, userID uuid.UUID, in dto.CreateLinkDTO) (model.Link, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Link{}, customErrors.NewInvalidArgument(err.Error())
	}

	link := model.Link{
		ID:     uuid.New(),
		Title:  strings.TrimSpace(in.Title),
		URL:    strings.TrimSpace(in.URL),
		UserID: userID,
	}
	if _, err := s.linkRepo.CreateLink(ctx, link); err != nil {
		return model.Link{}, customErrors.WrapInternal(err, "CreateLink")
	}
	return link, nil
}

func (s *linkService) List(ctx context.Context, userID uuid.UUID) ([]model.Link, error) {
	return s.linkRepo.ListLinksByUser(ctx, userID)
}

// Delete only removes links owned by the caller.
func (s *linkService) Delete(ctx context.Context, userID, linkID uuid.UUID) error {
	link, err := s.linkRepo.GetLinkByID(ctx, linkID)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return customErrors.ErrNotFound
	case err != nil:
		return customErrors.WrapInternal(err, "DeleteLink")
	}

	if link.UserID != userID {
		return customErrors.ErrForbidden
	}

	return s.linkRepo.DeleteLink(ctx, linkID)
}
