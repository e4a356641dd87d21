package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/stackhook/engine/internal/api/middleware"
	"github.com/stackhook/engine/internal/api/types"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, types.StatusOf(err), types.APIResponse{
		Success: false,
		Error:   types.FromAppError(err),
		Meta:    meta(r),
	})
}

func writeErrorStr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.APIResponse{Success: false, Error: &types.APIError{Code: "invalid", Message: msg}})
}

func meta(r *http.Request) *types.Meta {
	id := middleware.GetRequestID(r.Context())
	if id == "" {
		return nil
	}
	return &types.Meta{RequestID: id}
}
