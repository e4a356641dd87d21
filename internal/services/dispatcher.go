package services

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/stackhook/engine/internal/metrics"
	"github.com/stackhook/engine/internal/models"
	appErr "github.com/stackhook/engine/pkg/errors"
	"github.com/stackhook/engine/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// StartAction starts one database or service on its server. It returns once
// the execution engine has acknowledged the start.
type StartAction func(ctx context.Context, res models.Resource) error

// StartActions maps every startable kind to its action.
type StartActions map[models.Kind]StartAction

// BuildQueue records and submits an application build job.
type BuildQueue interface {
	Submit(ctx context.Context, app *models.Application, identity string, force bool) error
}

type IdentityGenerator interface {
	New() (string, error)
}

// StartRecorder persists the started_at stamp of a database.
type StartRecorder interface {
	MarkStarted(ctx context.Context, res models.Resource, at time.Time) error
}

type DispatchResult struct {
	Message        string
	DeploymentUUID string
}

// Dispatcher decides, per resource kind, whether to queue a build or to
// start the resource.
type Dispatcher struct {
	queue    BuildQueue
	ids      IdentityGenerator
	starts   StartActions
	recorder StartRecorder
	now      func() time.Time
}

// NewDispatcher fails when a startable kind has no action.
func NewDispatcher(queue BuildQueue, ids IdentityGenerator, starts StartActions, recorder StartRecorder) (*Dispatcher, error) {
	if queue == nil || ids == nil || recorder == nil {
		return nil, fmt.Errorf("dispatcher: build queue, identity generator and start recorder are required")
	}
	for _, kind := range models.AllKinds() {
		if kind == models.KindApplication {
			continue
		}
		if starts[kind] == nil {
			return nil, fmt.Errorf("dispatcher: no start action for kind %q", kind)
		}
	}
	return &Dispatcher{queue: queue, ids: ids, starts: starts, recorder: recorder, now: time.Now}, nil
}

// Dispatch runs the action for res. forceRebuild only affects applications.
func (d *Dispatcher) Dispatch(ctx context.Context, res models.Resource, forceRebuild bool) (DispatchResult, error) {
	if isNilResource(res) {
		return DispatchResult{}, appErr.Newf(appErr.CodeInvalid, "Resource (%v) not found.", res)
	}

	kind := string(res.Kind())
	ctx, span := otel.Tracer("stackhook/services").Start(ctx, "dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("resource.kind", kind),
		attribute.String("resource.uuid", res.GetUUID()),
	)

	start := time.Now()
	out, err := d.dispatch(ctx, res, forceRebuild)
	metrics.ObserveDispatch(kind, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
		logger.Ctx(ctx).Warn("dispatch failed", zap.String("kind", kind), zap.String("resource_uuid", res.GetUUID()), zap.Error(err))
		return DispatchResult{}, err
	}
	if out.DeploymentUUID != "" {
		span.SetAttributes(attribute.String("deployment.uuid", out.DeploymentUUID))
	}
	return out, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, res models.Resource, force bool) (DispatchResult, error) {
	switch r := res.(type) {
	case *models.Application:
		return d.queueBuild(ctx, r, force)
	case *models.StandalonePostgresql:
		return d.startDatabase(ctx, r)
	case *models.StandaloneRedis:
		return d.startDatabase(ctx, r)
	case *models.StandaloneKeydb:
		return d.startDatabase(ctx, r)
	case *models.StandaloneDragonfly:
		return d.startDatabase(ctx, r)
	case *models.StandaloneClickhouse:
		return d.startDatabase(ctx, r)
	case *models.StandaloneMongodb:
		return d.startDatabase(ctx, r)
	case *models.StandaloneMysql:
		return d.startDatabase(ctx, r)
	case *models.StandaloneMariadb:
		return d.startDatabase(ctx, r)
	case *models.Service:
		return d.startService(ctx, r)
	default:
		return DispatchResult{}, appErr.Newf(appErr.CodeInvalid, "Resource (%v) not found.", res.GetUUID())
	}
}

func (d *Dispatcher) queueBuild(ctx context.Context, app *models.Application, force bool) (DispatchResult, error) {
	failed := fmt.Sprintf("Application %s deployment could not be queued.", app.Name)
	identity, err := d.ids.New()
	if err != nil {
		return DispatchResult{}, appErr.Wrap(err, appErr.CodeInternal, failed)
	}
	if err := d.queue.Submit(ctx, app, identity, force); err != nil {
		return DispatchResult{}, appErr.Wrap(err, failureCode(err), failed)
	}
	logger.Ctx(ctx).Info("application deployment queued",
		zap.String("resource_uuid", app.UUID),
		zap.String("deployment_uuid", identity),
		zap.Bool("force_rebuild", force),
	)
	return DispatchResult{
		Message:        fmt.Sprintf("Application %s deployment queued.", app.Name),
		DeploymentUUID: identity,
	}, nil
}

func (d *Dispatcher) startDatabase(ctx context.Context, db models.StandaloneDatabase) (DispatchResult, error) {
	if err := d.starts[db.Kind()](ctx, db); err != nil {
		return DispatchResult{}, appErr.Wrap(err, failureCode(err), fmt.Sprintf("Database %s could not be started.", db.GetName()))
	}
	at := d.now()
	if err := d.recorder.MarkStarted(ctx, db, at); err != nil {
		return DispatchResult{}, appErr.Wrap(err, appErr.CodeInternal, fmt.Sprintf("Database %s started, but its start time could not be recorded.", db.GetName()))
	}
	db.MarkStarted(at)
	return DispatchResult{Message: fmt.Sprintf("Database %s started.", db.GetName())}, nil
}

func (d *Dispatcher) startService(ctx context.Context, svc *models.Service) (DispatchResult, error) {
	if err := d.starts[models.KindService](ctx, svc); err != nil {
		return DispatchResult{}, appErr.Wrap(err, failureCode(err), fmt.Sprintf("Service %s could not be started.", svc.Name))
	}
	return DispatchResult{Message: fmt.Sprintf("Service %s started. It could take a while, be patient.", svc.Name)}, nil
}

// failureCode keeps a collaborator's code and maps bare errors to unavailable.
func failureCode(err error) appErr.Code {
	if code := appErr.CodeOf(err); code != appErr.CodeUnknown {
		return code
	}
	return appErr.CodeUnavailable
}

func isNilResource(res models.Resource) bool {
	if res == nil {
		return true
	}
	v := reflect.ValueOf(res)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
