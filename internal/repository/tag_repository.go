package repository

import (
	"context"

	"github.com/stackhook/engine/internal/models"
	appErr "github.com/stackhook/engine/pkg/errors"
	"gorm.io/gorm"
)

type TagRepository interface {
	GetByName(ctx context.Context, name string, teamID uint, dest *models.Tag) error
	// Applications and Services return the tag's members hosted on the
	// team's servers, in id order.
	Applications(ctx context.Context, tagID, teamID uint) ([]models.Application, error)
	Services(ctx context.Context, tagID, teamID uint) ([]models.Service, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) GetByName(ctx context.Context, name string, teamID uint, dest *models.Tag) error {
	if err := r.db.WithContext(ctx).Where("name = ? AND team_id = ?", name, teamID).First(dest).Error; err != nil {
		return notFoundOr(err, "tag not found", "get tag failed")
	}
	return nil
}

func (r *tagRepository) Applications(ctx context.Context, tagID, teamID uint) ([]models.Application, error) {
	var out []models.Application
	err := r.db.WithContext(ctx).
		Select("applications.*").
		Joins("JOIN application_tags ON application_tags.application_id = applications.id").
		Where("application_tags.tag_id = ?", tagID).
		Where("applications.server_id IN (?)", teamServers(r.db, teamID)).
		Preload("Server").
		Order("applications.id").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list tagged applications failed")
	}
	return out, nil
}

func (r *tagRepository) Services(ctx context.Context, tagID, teamID uint) ([]models.Service, error) {
	var out []models.Service
	err := r.db.WithContext(ctx).
		Select("services.*").
		Joins("JOIN service_tags ON service_tags.service_id = services.id").
		Where("service_tags.tag_id = ?", tagID).
		Where("services.server_id IN (?)", teamServers(r.db, teamID)).
		Order("services.id").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list tagged services failed")
	}
	return out, nil
}
