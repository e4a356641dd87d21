package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/stackhook/engine/internal/api/middleware"
	"github.com/stackhook/engine/internal/api/types"
	"github.com/stackhook/engine/internal/services"
	"github.com/stackhook/engine/pkg/logger"
	"go.uber.org/zap"
)

type DeployHandler struct {
	svc      services.DeployService
	validate interface{ Struct(any) error }
}

func NewDeployHandler(svc services.DeployService, v interface{ Struct(any) error }) *DeployHandler {
	return &DeployHandler{svc: svc, validate: v}
}

// Deploy godoc
// @Summary      Deploy resources by uuid or tag
// @Description  Queues application builds and starts databases and services. uuid and tag are comma-separated and mutually exclusive.
// @Tags         deploy
// @Produce      json
// @Param        uuid   query  string  false  "Resource uuids"
// @Param        tag    query  string  false  "Tag names"
// @Param        force  query  bool    false  "Force rebuild"
// @Success      200  {object}  types.APIResponse
// @Failure      400  {object}  types.APIResponse
// @Failure      401  {object}  types.APIResponse
// @Failure      404  {object}  types.APIResponse
// @Security     BearerAuth
// @Router       /deploy [get]
func (h *DeployHandler) Deploy(w http.ResponseWriter, r *http.Request) {
	// A batch runs one start after another, each bounded by START_TIMEOUT,
	// so the server-wide write timeout does not apply here.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.L().Warn("clear write deadline failed", zap.Error(err))
	}

	q := r.URL.Query()
	req := types.DeployQuery{UUID: q.Get("uuid"), Tag: q.Get("tag")}
	if raw := q.Get("force"); raw != "" {
		force, err := strconv.ParseBool(raw)
		if err != nil {
			writeErrorStr(w, http.StatusBadRequest, "force must be a boolean.")
			return
		}
		req.Force = force
	}
	if err := h.validate.Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "Invalid uuid or tag list.")
		return
	}

	batch, err := h.svc.Deploy(r.Context(), middleware.GetAuth(r.Context()), services.DeployRequest{
		UUID:  req.UUID,
		Tag:   req.Tag,
		Force: req.Force,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := batch.Err(); err != nil {
		writeJSON(w, types.StatusOf(err), types.APIResponse{
			Success: false,
			Data:    batch.Data(),
			Error:   types.FromAppError(err),
			Meta:    meta(r),
		})
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: batch.Data(), Meta: meta(r)})
}
