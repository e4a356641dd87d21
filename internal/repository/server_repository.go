package repository

import (
	"context"

	"github.com/stackhook/engine/internal/models"
	appErr "github.com/stackhook/engine/pkg/errors"
	"gorm.io/gorm"
)

type ServerRepository interface {
	ListIDsByTeam(ctx context.Context, teamID uint) ([]uint, error)
}

type serverRepository struct {
	db *gorm.DB
}

func NewServerRepository(db *gorm.DB) ServerRepository {
	return &serverRepository{db: db}
}

func (r *serverRepository) ListIDsByTeam(ctx context.Context, teamID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Server{}).Where("team_id = ?", teamID).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list team servers failed")
	}
	return ids, nil
}

// teamServers is a subquery selecting the ids of servers owned by teamID.
func teamServers(db *gorm.DB, teamID uint) *gorm.DB {
	return db.Model(&models.Server{}).Select("id").Where("team_id = ?", teamID)
}
