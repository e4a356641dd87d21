package services

import (
	"context"

	"github.com/stackhook/engine/internal/models"
	"github.com/stackhook/engine/internal/repository"
	appErr "github.com/stackhook/engine/pkg/errors"
	"github.com/stackhook/engine/pkg/logger"
	"go.uber.org/zap"
)

// TagMembers are the resources a tag addresses, applications first.
type TagMembers struct {
	Applications []models.Application
	Services     []models.Service
}

func (m TagMembers) Empty() bool {
	return len(m.Applications) == 0 && len(m.Services) == 0
}

// Resources flattens the members in dispatch order.
func (m TagMembers) Resources() []models.Resource {
	out := make([]models.Resource, 0, len(m.Applications)+len(m.Services))
	for i := range m.Applications {
		out = append(out, &m.Applications[i])
	}
	for i := range m.Services {
		out = append(out, &m.Services[i])
	}
	return out
}

// Resolver finds resources inside a tenant. Missing and foreign resources
// both come back as CodeNotFound; only storage failures use other codes.
type Resolver interface {
	Resolve(ctx context.Context, uuid string, teamID uint) (models.Resource, error)
	ResolveTag(ctx context.Context, name string, teamID uint) (TagMembers, error)
}

type resolver struct {
	resources repository.ResourceRepository
	tags      repository.TagRepository
}

func NewResolver(resources repository.ResourceRepository, tags repository.TagRepository) Resolver {
	return &resolver{resources: resources, tags: tags}
}

var _ Resolver = (*resolver)(nil)

func (r *resolver) Resolve(ctx context.Context, uuid string, teamID uint) (models.Resource, error) {
	res, err := r.resources.FindByUUID(ctx, uuid, teamID)
	if err != nil {
		return nil, err
	}
	logger.L().Debug("resolved resource", zap.String("resource_uuid", uuid), zap.String("kind", string(res.Kind())), zap.Uint("team_id", teamID))
	return res, nil
}

func (r *resolver) ResolveTag(ctx context.Context, name string, teamID uint) (TagMembers, error) {
	var tag models.Tag
	if err := r.tags.GetByName(ctx, name, teamID, &tag); err != nil {
		return TagMembers{}, err
	}
	apps, err := r.tags.Applications(ctx, tag.ID, teamID)
	if err != nil {
		return TagMembers{}, err
	}
	svcs, err := r.tags.Services(ctx, tag.ID, teamID)
	if err != nil {
		return TagMembers{}, err
	}
	return TagMembers{Applications: apps, Services: svcs}, nil
}

// isNotFound reports whether err is a silent miss rather than a failure.
func isNotFound(err error) bool {
	return appErr.IsCode(err, appErr.CodeNotFound)
}
