package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stackhook/engine/internal/authz"
	"github.com/stackhook/engine/internal/models"
	"github.com/stackhook/engine/internal/repository"
	"github.com/stackhook/engine/pkg/logger"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init("error", "json"); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

type mockBuildQueue struct {
	mock.Mock
}

func (m *mockBuildQueue) Submit(ctx context.Context, app *models.Application, identity string, force bool) error {
	return m.Called(ctx, app, identity, force).Error(0)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) MarkStarted(ctx context.Context, res models.Resource, at time.Time) error {
	return m.Called(ctx, res, at).Error(0)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, uuid string, teamID uint) (models.Resource, error) {
	args := m.Called(ctx, uuid, teamID)
	if v := args.Get(0); v != nil {
		return v.(models.Resource), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResolver) ResolveTag(ctx context.Context, name string, teamID uint) (TagMembers, error) {
	args := m.Called(ctx, name, teamID)
	return args.Get(0).(TagMembers), args.Error(1)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, res models.Resource, force bool) (DispatchResult, error) {
	args := m.Called(ctx, res, force)
	return args.Get(0).(DispatchResult), args.Error(1)
}

type mockView struct {
	mock.Mock
}

func (m *mockView) ListActive(ctx context.Context, auth authz.Context) ([]DeploymentSummary, error) {
	args := m.Called(ctx, auth)
	if v := args.Get(0); v != nil {
		return v.([]DeploymentSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockView) Get(ctx context.Context, auth authz.Context, identity string) (*DeploymentView, error) {
	args := m.Called(ctx, auth, identity)
	if v := args.Get(0); v != nil {
		return v.(*DeploymentView), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockServerRepo struct {
	mock.Mock
}

func (m *mockServerRepo) ListIDsByTeam(ctx context.Context, teamID uint) ([]uint, error) {
	args := m.Called(ctx, teamID)
	if v := args.Get(0); v != nil {
		return v.([]uint), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockJobRepo struct {
	repository.BaseRepository[models.ApplicationDeploymentQueue]
	mock.Mock
}

func (m *mockJobRepo) CreateQueued(ctx context.Context, job *models.ApplicationDeploymentQueue) error {
	return m.Called(ctx, job).Error(0)
}

func (m *mockJobRepo) GetByDeploymentUUID(ctx context.Context, deploymentUUID string, dest *models.ApplicationDeploymentQueue) error {
	args := m.Called(ctx, deploymentUUID, dest)
	if job, ok := args.Get(0).(*models.ApplicationDeploymentQueue); ok && job != nil {
		*dest = *job
	}
	return args.Error(1)
}

func (m *mockJobRepo) ListActiveByServers(ctx context.Context, serverIDs []uint) ([]models.ApplicationDeploymentQueue, error) {
	args := m.Called(ctx, serverIDs)
	if v := args.Get(0); v != nil {
		return v.([]models.ApplicationDeploymentQueue), args.Error(1)
	}
	return nil, args.Error(1)
}
