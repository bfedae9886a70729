package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	customErrors "github.com/linkfolio/backend/internal/domain/errors"
	"github.com/linkfolio/backend/internal/domain/model"
)

type PostgresLinkRepo struct {
	db *gorm.DB
}

func NewPostgresLinkRepo(db *gorm.DB) *PostgresLinkRepo {
	return &PostgresLinkRepo{db: db}
}

func (p *PostgresLinkRepo) CreateLink(ctx context.Context, link model.Link) (uuid.UUID, error) {
	res := p.db.WithContext(ctx).Create(&link)
	if err := res.Error; err != nil {
		return uuid.Nil, customErrors.WrapInternal(err, "CreateLink")
	}
	return link.ID, nil
}

func (p *PostgresLinkRepo) GetLinkByID(ctx context.Context, id uuid.UUID) (model.Link, error) {
	var l model.Link
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&l)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Link{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Link{}, customErrors.WrapInternal(err, "GetLinkByID")
	}
	return l, nil
}

func (p *PostgresLinkRepo) ListLinksByUser(ctx context.Context, userID uuid.UUID) ([]model.Link, error) {
	var links []model.Link
	res := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&links)
	if err := res.Error; err != nil {
		return nil, customErrors.WrapInternal(err, "ListLinksByUser")
	}
	return links, nil
}

func (p *PostgresLinkRepo) DeleteLink(ctx context.Context, id uuid.UUID) error {
	res := p.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Link{})
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "DeleteLink")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (p *PostgresLinkRepo) DeleteLinksByUser(ctx context.Context, userID uuid.UUID) error {
	res := p.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Link{})
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "DeleteLinksByUser")
	}
	return nil
}
