package services

import (
	"context"
	"strings"

	"github.com/stackhook/engine/internal/authz"
	"github.com/stackhook/engine/internal/models"
	"github.com/stackhook/engine/internal/repository"
	appErr "github.com/stackhook/engine/pkg/errors"
	"github.com/stackhook/engine/pkg/logger"
	"go.uber.org/zap"
)

const invalidToken = "Invalid token."

// DeploymentQueueView is the read path over build jobs used by polling
// clients.
type DeploymentQueueView interface {
	ListActive(ctx context.Context, auth authz.Context) ([]DeploymentSummary, error)
	Get(ctx context.Context, auth authz.Context, identity string) (*DeploymentView, error)
}

type deploymentQueueView struct {
	servers repository.ServerRepository
	jobs    repository.DeploymentQueueRepository
}

func NewDeploymentQueueView(servers repository.ServerRepository, jobs repository.DeploymentQueueRepository) DeploymentQueueView {
	return &deploymentQueueView{servers: servers, jobs: jobs}
}

var _ DeploymentQueueView = (*deploymentQueueView)(nil)

// ListActive returns queued and in-progress jobs on the caller's servers in
// insertion order.
func (v *deploymentQueueView) ListActive(ctx context.Context, auth authz.Context) ([]DeploymentSummary, error) {
	if !auth.Authenticated() {
		return nil, appErr.New(appErr.CodeUnauthorized, invalidToken)
	}
	logger.L().Info("list active deployments", zap.Uint("team_id", auth.Team()))

	serverIDs, err := v.servers.ListIDsByTeam(ctx, auth.Team())
	if err != nil {
		return nil, err
	}
	jobs, err := v.jobs.ListActiveByServers(ctx, serverIDs)
	if err != nil {
		return nil, err
	}
	out := make([]DeploymentSummary, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, summarize(j))
	}
	return out, nil
}

// Get looks a job up by identity regardless of tenant; only its logs are
// gated.
func (v *deploymentQueueView) Get(ctx context.Context, auth authz.Context, identity string) (*DeploymentView, error) {
	if !auth.Authenticated() {
		return nil, appErr.New(appErr.CodeUnauthorized, invalidToken)
	}
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, appErr.New(appErr.CodeInvalid, "UUID is required.")
	}
	logger.L().Info("get deployment", zap.Uint("team_id", auth.Team()), zap.String("deployment_uuid", identity))

	var job models.ApplicationDeploymentQueue
	if err := v.jobs.GetByDeploymentUUID(ctx, identity, &job); err != nil {
		if isNotFound(err) {
			return nil, appErr.New(appErr.CodeNotFound, "Deployment not found.")
		}
		return nil, err
	}
	view := Redact(&job, auth)
	return &view, nil
}
