package queue

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stackhook/engine/internal/models"
	"github.com/stackhook/engine/internal/queue/tasks"
	"github.com/stackhook/engine/internal/repository"
	"github.com/stackhook/engine/pkg/database"
	appErr "github.com/stackhook/engine/pkg/errors"
	"github.com/stackhook/engine/pkg/logger"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	_, _ = logger.Init("error", "json")
	os.Exit(m.Run())
}

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if v := args.Get(0); v != nil {
		return v.(*asynq.TaskInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func newJobs(t *testing.T) repository.DeploymentQueueRepository {
	t.Helper()
	db, err := database.Open(context.Background(), database.Options{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ApplicationDeploymentQueue{}))
	return repository.NewDeploymentQueueRepository(db)
}

func testApp() *models.Application {
	return &models.Application{
		ID:       11,
		UUID:     "app-uuid",
		Name:     "web",
		ServerID: 3,
		Server:   models.Server{ID: 3, Name: "edge-1"},
	}
}

func TestSubmitRecordsQueuedJobAndEnqueues(t *testing.T) {
	jobs := newJobs(t)
	enq := &mockEnqueuer{}
	enq.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		// the worker may pick the task up immediately, so the row must already be committed
		var job models.ApplicationDeploymentQueue
		require.NoError(t, jobs.GetByDeploymentUUID(context.Background(), "abc1234", &job))
		require.Equal(t, models.DeploymentQueued, job.Status)
	}).Return(&asynq.TaskInfo{Queue: "deployments"}, nil).Once()
	q := NewAsynqBuildQueue(jobs, enq, Options{Queue: "deployments", MaxRetry: 3})

	require.NoError(t, q.Submit(context.Background(), testApp(), "abc1234", true))

	var job models.ApplicationDeploymentQueue
	require.NoError(t, jobs.GetByDeploymentUUID(context.Background(), "abc1234", &job))
	require.Equal(t, models.DeploymentQueued, job.Status)
	require.Equal(t, uint(11), job.ApplicationID)
	require.Equal(t, "edge-1", job.ServerName)
	require.True(t, job.ForceRebuild)
	require.Equal(t, "/application/app-uuid/deployment/abc1234", job.DeploymentURL)

	task := enq.Calls[0].Arguments.Get(1).(*asynq.Task)
	require.Equal(t, tasks.TypeApplicationDeploy, task.Type())
	var p tasks.DeployPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	require.Equal(t, "abc1234", p.DeploymentUUID)
	require.Equal(t, "app-uuid", p.ApplicationUUID)
	require.True(t, p.ForceRebuild)

	opts := enq.Calls[0].Arguments.Get(2).([]asynq.Option)
	require.Len(t, opts, 3)
}

func TestSubmitDiscardsJobOnEnqueueFailure(t *testing.T) {
	jobs := newJobs(t)
	enq := &mockEnqueuer{}
	enq.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: connection refused"))
	q := NewAsynqBuildQueue(jobs, enq, Options{})

	err := q.Submit(context.Background(), testApp(), "def5678", false)
	require.True(t, appErr.IsCode(err, appErr.CodeUnavailable))

	var job models.ApplicationDeploymentQueue
	err = jobs.GetByDeploymentUUID(context.Background(), "def5678", &job)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestSubmitSkipsEnqueueWhenJobNotRecorded(t *testing.T) {
	jobs := newJobs(t)
	ctx := context.Background()
	require.NoError(t, jobs.Create(ctx, &models.ApplicationDeploymentQueue{DeploymentUUID: "dup1234", ServerID: 3, Status: models.DeploymentFinished}))
	enq := &mockEnqueuer{}
	q := NewAsynqBuildQueue(jobs, enq, Options{})

	err := q.Submit(ctx, testApp(), "dup1234", false)
	require.True(t, appErr.IsCode(err, appErr.CodeInternal))
	enq.AssertNotCalled(t, "EnqueueContext", mock.Anything, mock.Anything, mock.Anything)

	var job models.ApplicationDeploymentQueue
	require.NoError(t, jobs.GetByDeploymentUUID(ctx, "dup1234", &job))
	require.Equal(t, models.DeploymentFinished, job.Status)
}

func TestDeploymentURL(t *testing.T) {
	require.Equal(t, "/application/a/deployment/b", DeploymentURL("a", "b"))
}
