package repository

import (
	"context"

	"github.com/stackhook/engine/internal/models"
	appErr "github.com/stackhook/engine/pkg/errors"
	"gorm.io/gorm"
)

type DeploymentQueueRepository interface {
	BaseRepository[models.ApplicationDeploymentQueue]
	CreateQueued(ctx context.Context, job *models.ApplicationDeploymentQueue) error
	GetByDeploymentUUID(ctx context.Context, deploymentUUID string, dest *models.ApplicationDeploymentQueue) error
	ListActiveByServers(ctx context.Context, serverIDs []uint) ([]models.ApplicationDeploymentQueue, error)
}

type deploymentQueueRepository struct {
	*baseRepository[models.ApplicationDeploymentQueue]
}

func NewDeploymentQueueRepository(db *gorm.DB) DeploymentQueueRepository {
	return &deploymentQueueRepository{newBaseRepository[models.ApplicationDeploymentQueue](db, "deployment")}
}

// CreateQueued commits job with status queued. The row is visible to other
// readers once this returns.
func (r *deploymentQueueRepository) CreateQueued(ctx context.Context, job *models.ApplicationDeploymentQueue) error {
	job.Status = models.DeploymentQueued
	return r.Create(ctx, job)
}

func (r *deploymentQueueRepository) GetByDeploymentUUID(ctx context.Context, deploymentUUID string, dest *models.ApplicationDeploymentQueue) error {
	return r.first(ctx, dest, "deployment_uuid = ?", deploymentUUID)
}

func (r *deploymentQueueRepository) ListActiveByServers(ctx context.Context, serverIDs []uint) ([]models.ApplicationDeploymentQueue, error) {
	out := []models.ApplicationDeploymentQueue{}
	if len(serverIDs) == 0 {
		return out, nil
	}
	statuses := make([]string, 0, 2)
	for _, s := range models.ActiveDeploymentStatuses() {
		statuses = append(statuses, string(s))
	}
	err := r.db.WithContext(ctx).
		Where("status IN ? AND server_id IN ?", statuses, serverIDs).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list active deployments failed")
	}
	return out, nil
}
