// Package queue submits application builds to the asynq build queue.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stackhook/engine/internal/models"
	"github.com/stackhook/engine/internal/queue/tasks"
	"github.com/stackhook/engine/internal/repository"
	appErr "github.com/stackhook/engine/pkg/errors"
	"github.com/stackhook/engine/pkg/logger"
	"go.uber.org/zap"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Options struct {
	Queue    string
	MaxRetry int
}

// AsynqBuildQueue commits a queued job and then enqueues its task. A failed
// enqueue deletes the row again, so no job exists without a task.
type AsynqBuildQueue struct {
	jobs   repository.DeploymentQueueRepository
	client Enqueuer
	opts   Options
	now    func() time.Time
}

func NewAsynqBuildQueue(jobs repository.DeploymentQueueRepository, client Enqueuer, opts Options) *AsynqBuildQueue {
	if opts.Queue == "" {
		opts.Queue = "default"
	}
	return &AsynqBuildQueue{jobs: jobs, client: client, opts: opts, now: time.Now}
}

// DeploymentURL is the path under which a deployment is shown.
func DeploymentURL(appUUID, identity string) string {
	return fmt.Sprintf("/application/%s/deployment/%s", appUUID, identity)
}

func (q *AsynqBuildQueue) Submit(ctx context.Context, app *models.Application, identity string, force bool) error {
	job := &models.ApplicationDeploymentQueue{
		DeploymentUUID:  identity,
		ApplicationID:   app.ID,
		ApplicationName: app.Name,
		ServerID:        app.ServerID,
		ServerName:      app.Server.Name,
		ForceRebuild:    force,
		DeploymentURL:   DeploymentURL(app.UUID, identity),
	}
	if err := q.jobs.CreateQueued(ctx, job); err != nil {
		return err
	}

	task, err := tasks.NewDeployTask(tasks.DeployPayload{
		DeploymentUUID:  job.DeploymentUUID,
		ApplicationID:   job.ApplicationID,
		ApplicationUUID: app.UUID,
		ApplicationName: job.ApplicationName,
		ServerID:        job.ServerID,
		ServerName:      job.ServerName,
		PullRequestID:   job.PullRequestID,
		ForceRebuild:    job.ForceRebuild,
		DeploymentURL:   job.DeploymentURL,
		QueuedAt:        q.now().UTC(),
	})
	if err != nil {
		q.discard(ctx, job)
		return appErr.Wrap(err, appErr.CodeInternal, "encode deploy task failed")
	}
	info, err := q.client.EnqueueContext(ctx, task,
		asynq.Queue(q.opts.Queue),
		asynq.TaskID(job.DeploymentUUID),
		asynq.MaxRetry(q.opts.MaxRetry),
	)
	if err != nil {
		logger.Ctx(ctx).Error("enqueue deploy task failed", zap.String("deployment_uuid", job.DeploymentUUID), zap.Error(err))
		q.discard(ctx, job)
		return appErr.Wrap(err, appErr.CodeUnavailable, "enqueue deploy task failed")
	}
	logger.Ctx(ctx).Info("deploy task enqueued",
		zap.String("deployment_uuid", job.DeploymentUUID),
		zap.String("queue", info.Queue),
		zap.Uint("server_id", job.ServerID),
	)
	return nil
}

// discard removes a job whose task never reached the queue.
func (q *AsynqBuildQueue) discard(ctx context.Context, job *models.ApplicationDeploymentQueue) {
	if err := q.jobs.Delete(context.WithoutCancel(ctx), job.ID); err != nil {
		logger.Ctx(ctx).Error("discard unqueued deployment failed",
			zap.String("deployment_uuid", job.DeploymentUUID),
			zap.Error(err),
		)
	}
}
