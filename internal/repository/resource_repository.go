package repository

import (
	"context"
	"errors"
	"time"

	"github.com/stackhook/engine/internal/models"
	appErr "github.com/stackhook/engine/pkg/errors"
	"gorm.io/gorm"
)

// lookupOrder is the order in which id spaces are searched for a uuid.
var lookupOrder = []models.Kind{
	models.KindApplication,
	models.KindService,
	models.KindPostgresql,
	models.KindRedis,
	models.KindMongodb,
	models.KindMysql,
	models.KindMariadb,
	models.KindKeydb,
	models.KindDragonfly,
	models.KindClickhouse,
}

type ResourceRepository interface {
	// FindByUUID searches every resource kind for uuid among the resources
	// hosted on servers owned by teamID.
	FindByUUID(ctx context.Context, uuid string, teamID uint) (models.Resource, error)
	MarkStarted(ctx context.Context, res models.Resource, at time.Time) error
}

type resourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) FindByUUID(ctx context.Context, uuid string, teamID uint) (models.Resource, error) {
	for _, kind := range lookupOrder {
		res, err := models.NewResource(kind)
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "resolve resource failed")
		}
		q := r.db.WithContext(ctx).
			Where("uuid = ? AND server_id IN (?)", uuid, teamServers(r.db, teamID))
		if kind == models.KindApplication {
			q = q.Preload("Server")
		}
		err = q.First(res).Error
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "resolve resource failed").WithMeta("kind", string(kind))
		}
	}
	return nil, appErr.New(appErr.CodeNotFound, "resource not found")
}

func (r *resourceRepository) MarkStarted(ctx context.Context, res models.Resource, at time.Time) error {
	result := r.db.WithContext(ctx).Model(res).Update("started_at", at)
	if result.Error != nil {
		return appErr.Wrap(result.Error, appErr.CodeInternal, "stamp started_at failed")
	}
	if result.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "resource not found")
	}
	return nil
}
