package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stackhook/engine/internal/engine"
	"github.com/stackhook/engine/internal/metrics"
	"github.com/stackhook/engine/pkg/logger"
	"go.uber.org/zap"
)

// TypeApplicationDeploy is the asynq task type of a queued application build.
const TypeApplicationDeploy = "application:deploy"

// DeployPayload is the task payload, relayed verbatim to the execution
// engine.
type DeployPayload struct {
	DeploymentUUID  string    `json:"deployment_uuid"`
	ApplicationID   uint      `json:"application_id"`
	ApplicationUUID string    `json:"application_uuid"`
	ApplicationName string    `json:"application_name"`
	ServerID        uint      `json:"server_id"`
	ServerName      string    `json:"server_name"`
	PullRequestID   int       `json:"pull_request_id"`
	ForceRebuild    bool      `json:"force_rebuild"`
	DeploymentURL   string    `json:"deployment_url"`
	QueuedAt        time.Time `json:"queued_at"`
}

func NewDeployTask(p DeployPayload, opts ...asynq.Option) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeApplicationDeploy, b, opts...), nil
}

// Publisher delivers a payload to a subject on the engine bus.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
}

// DeployRelayHandler hands queued builds to the execution engine. It never
// changes job status; the engine owns every transition after queued.
type DeployRelayHandler struct {
	publisher Publisher
	subject   string
}

func NewDeployRelayHandler(pub Publisher) *DeployRelayHandler {
	return &DeployRelayHandler{publisher: pub, subject: engine.SubjectBuild}
}

func (h *DeployRelayHandler) HandleDeploy(ctx context.Context, t *asynq.Task) error {
	var p DeployPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid deploy task payload", zap.Error(err))
		return fmt.Errorf("decode deploy payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.DeploymentUUID == "" {
		logger.L().Error("deploy task without deployment uuid")
		return fmt.Errorf("deploy payload missing deployment_uuid: %w", asynq.SkipRetry)
	}

	logger.L().Info("relaying deployment",
		zap.String("deployment_uuid", p.DeploymentUUID),
		zap.String("application_uuid", p.ApplicationUUID),
		zap.Bool("force_rebuild", p.ForceRebuild),
	)
	err := h.publisher.Publish(ctx, h.subject, t.Payload())
	metrics.ObserveRelay(err)
	if err != nil {
		logger.L().Error("relay deployment failed", zap.String("deployment_uuid", p.DeploymentUUID), zap.Error(err))
		return err
	}
	return nil
}

// Register mounts the handlers on mux.
func (h *DeployRelayHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeApplicationDeploy, h.HandleDeploy)
}
