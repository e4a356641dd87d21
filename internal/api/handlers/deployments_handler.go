package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stackhook/engine/internal/api/middleware"
	"github.com/stackhook/engine/internal/api/types"
	"github.com/stackhook/engine/internal/services"
)

type DeploymentsHandler struct{ svc services.DeployService }

func NewDeploymentsHandler(svc services.DeployService) *DeploymentsHandler {
	return &DeploymentsHandler{svc: svc}
}

// List godoc
// @Summary   List queued and in-progress deployments of the caller's team
// @Tags      deployments
// @Produce   json
// @Success   200  {object}  types.APIResponse
// @Failure   401  {object}  types.APIResponse
// @Security  BearerAuth
// @Router    /deployments [get]
func (h *DeploymentsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListActive(r.Context(), middleware.GetAuth(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items, Meta: meta(r)})
}

// Get godoc
// @Summary   Get a deployment by its uuid
// @Description  Logs are only included for tokens with the view:sensitive ability.
// @Tags      deployments
// @Produce   json
// @Param     uuid  path  string  true  "Deployment uuid"
// @Success   200  {object}  types.APIResponse
// @Failure   400  {object}  types.APIResponse
// @Failure   404  {object}  types.APIResponse
// @Security  BearerAuth
// @Router    /deployments/{uuid} [get]
func (h *DeploymentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetDeployment(r.Context(), middleware.GetAuth(r.Context()), chi.URLParam(r, "uuid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: view, Meta: meta(r)})
}
