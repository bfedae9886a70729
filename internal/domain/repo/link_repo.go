package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/linkfolio/backend/internal/domain/model"
)

type LinkRepo interface {
	CreateLink(ctx context.Context, l model.Link) (uuid.UUID, error)

	GetLinkByID(ctx context.Context, id uuid.UUID) (model.Link, error)

	ListLinksByUser(ctx context.Context, userID uuid.UUID) ([]model.Link, error)

	DeleteLink(ctx context.Context, id uuid.UUID) error

	DeleteLinksByUser(ctx context.Context, userID uuid.UUID) error
}
