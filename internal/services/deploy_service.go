package services

import (
	"context"
	"strings"

	"github.com/stackhook/engine/internal/authz"
	"github.com/stackhook/engine/internal/metrics"
	"github.com/stackhook/engine/internal/models"
	appErr "github.com/stackhook/engine/pkg/errors"
	"github.com/stackhook/engine/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DeployRequest carries the raw query of a deploy call. UUID and Tag are
// comma-separated lists and are mutually exclusive.
type DeployRequest struct {
	UUID  string
	Tag   string
	Force bool
}

// ResourceDispatcher is satisfied by *Dispatcher.
type ResourceDispatcher interface {
	Dispatch(ctx context.Context, res models.Resource, forceRebuild bool) (DispatchResult, error)
}

// DeployService is the entry point for deploy requests and deployment
// polling. Every method takes the caller's authorization explicitly.
type DeployService interface {
	Deploy(ctx context.Context, auth authz.Context, req DeployRequest) (*BatchResult, error)
	DeployByUUIDs(ctx context.Context, auth authz.Context, uuids []string, force bool) (*BatchResult, error)
	DeployByTags(ctx context.Context, auth authz.Context, tags []string, force bool) (*BatchResult, error)
	ListActive(ctx context.Context, auth authz.Context) ([]DeploymentSummary, error)
	GetDeployment(ctx context.Context, auth authz.Context, identity string) (*DeploymentView, error)
}

type deployService struct {
	resolver   Resolver
	dispatcher ResourceDispatcher
	view       DeploymentQueueView
}

func NewDeployService(resolver Resolver, dispatcher ResourceDispatcher, view DeploymentQueueView) DeployService {
	return &deployService{resolver: resolver, dispatcher: dispatcher, view: view}
}

var _ DeployService = (*deployService)(nil)

func (s *deployService) Deploy(ctx context.Context, auth authz.Context, req DeployRequest) (*BatchResult, error) {
	if !auth.Authenticated() {
		return nil, appErr.New(appErr.CodeUnauthorized, invalidToken)
	}
	hasUUID, hasTag := req.UUID != "", req.Tag != ""
	switch {
	case hasUUID && hasTag:
		return nil, appErr.New(appErr.CodeInvalid, "You can only use uuid or tag, not both.")
	case hasTag:
		return s.DeployByTags(ctx, auth, SplitList(req.Tag), req.Force)
	case hasUUID:
		return s.DeployByUUIDs(ctx, auth, SplitList(req.UUID), req.Force)
	default:
		return nil, appErr.New(appErr.CodeInvalid, "You must provide uuid or tag.")
	}
}

func (s *deployService) DeployByUUIDs(ctx context.Context, auth authz.Context, uuids []string, force bool) (*BatchResult, error) {
	if !auth.Authenticated() {
		return nil, appErr.New(appErr.CodeUnauthorized, invalidToken)
	}
	uuids = compact(uuids)
	if len(uuids) == 0 {
		return nil, appErr.New(appErr.CodeInvalid, "No UUIDs provided.")
	}
	teamID := auth.Team()
	// Items run to completion even if the caller goes away.
	ctx, span := otel.Tracer("stackhook/services").Start(context.WithoutCancel(ctx), "deploy.by_uuid")
	defer span.End()
	span.SetAttributes(attribute.Int("batch.size", len(uuids)), attribute.Int64("team.id", int64(teamID)))
	logger.Ctx(ctx).Info("deploy by uuid", zap.Uint("team_id", teamID), zap.Strings("resource_uuids", uuids), zap.Bool("force", force))

	batch := newBatch(BatchByUUID)
	for _, uuid := range uuids {
		res, err := s.resolver.Resolve(ctx, uuid, teamID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			span.RecordError(err)
			logger.Ctx(ctx).Warn("resolve resource failed", zap.String("resource_uuid", uuid), zap.Error(err))
			batch.record(uuid, DispatchResult{}, unresolvedResource(uuid))
			continue
		}
		out, err := s.dispatcher.Dispatch(ctx, res, force)
		batch.record(uuid, out, err)
	}
	s.finish(ctx, batch, teamID)
	return batch, nil
}

func (s *deployService) DeployByTags(ctx context.Context, auth authz.Context, tags []string, force bool) (*BatchResult, error) {
	if !auth.Authenticated() {
		return nil, appErr.New(appErr.CodeUnauthorized, invalidToken)
	}
	tags = compact(tags)
	if len(tags) == 0 {
		return nil, appErr.New(appErr.CodeInvalid, "No TAGs provided.")
	}
	teamID := auth.Team()
	// Items run to completion even if the caller goes away.
	ctx, span := otel.Tracer("stackhook/services").Start(context.WithoutCancel(ctx), "deploy.by_tag")
	defer span.End()
	span.SetAttributes(attribute.Int("batch.size", len(tags)), attribute.Int64("team.id", int64(teamID)))
	logger.Ctx(ctx).Info("deploy by tag", zap.Uint("team_id", teamID), zap.Strings("tags", tags), zap.Bool("force", force))

	batch := newBatch(BatchByTag)
	for _, tag := range tags {
		members, err := s.resolver.ResolveTag(ctx, tag, teamID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			span.RecordError(err)
			logger.Ctx(ctx).Warn("resolve tag failed", zap.String("tag", tag), zap.Error(err))
			batch.note(unresolvedTagMessage(tag))
			continue
		}
		if members.Empty() {
			batch.note(emptyTagMessage(tag))
			continue
		}
		for _, res := range members.Resources() {
			out, err := s.dispatcher.Dispatch(ctx, res, force)
			batch.record(res.GetUUID(), out, err)
		}
	}
	s.finish(ctx, batch, teamID)
	return batch, nil
}

func (s *deployService) finish(ctx context.Context, batch *BatchResult, teamID uint) {
	metrics.ObserveBatch(string(batch.Mode), batch.Success(), len(batch.Outcomes))
	logger.Ctx(ctx).Info("deploy batch done",
		zap.Uint("team_id", teamID),
		zap.String("mode", string(batch.Mode)),
		zap.Int("outcomes", len(batch.Outcomes)),
		zap.Bool("success", batch.Success()),
	)
}

func (s *deployService) ListActive(ctx context.Context, auth authz.Context) ([]DeploymentSummary, error) {
	return s.view.ListActive(ctx, auth)
}

func (s *deployService) GetDeployment(ctx context.Context, auth authz.Context, identity string) (*DeploymentView, error) {
	return s.view.Get(ctx, auth, identity)
}

// SplitList splits a comma-separated query value and drops empty elements.
func SplitList(raw string) []string {
	return compact(strings.Split(raw, ","))
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
