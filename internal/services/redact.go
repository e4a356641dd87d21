package services

import (
	"encoding/json"
	"time"

	"github.com/stackhook/engine/internal/authz"
	"github.com/stackhook/engine/internal/models"
)

// DeploymentSummary is the polling view of an active job.
type DeploymentSummary struct {
	ID              uint   `json:"id"`
	DeploymentUUID  string `json:"deployment_uuid"`
	ApplicationID   uint   `json:"application_id"`
	ApplicationName string `json:"application_name"`
	DeploymentURL   string `json:"deployment_url"`
	PullRequestID   int    `json:"pull_request_id"`
	ServerID        uint   `json:"server_id"`
	ServerName      string `json:"server_name"`
	Status          string `json:"status"`
}

func summarize(job models.ApplicationDeploymentQueue) DeploymentSummary {
	return DeploymentSummary{
		ID:              job.ID,
		DeploymentUUID:  job.DeploymentUUID,
		ApplicationID:   job.ApplicationID,
		ApplicationName: job.ApplicationName,
		DeploymentURL:   job.DeploymentURL,
		PullRequestID:   job.PullRequestID,
		ServerID:        job.ServerID,
		ServerName:      job.ServerName,
		Status:          string(job.Status),
	}
}

// DeploymentView is a job as returned to one caller. Logs is nil, and so
// omitted from JSON, unless the caller may view sensitive data.
type DeploymentView struct {
	ID              uint             `json:"id"`
	DeploymentUUID  string           `json:"deployment_uuid"`
	ApplicationID   uint             `json:"application_id"`
	ApplicationName string           `json:"application_name"`
	ServerID        uint             `json:"server_id"`
	ServerName      string           `json:"server_name"`
	PullRequestID   int              `json:"pull_request_id"`
	ForceRebuild    bool             `json:"force_rebuild"`
	Status          string           `json:"status"`
	DeploymentURL   string           `json:"deployment_url"`
	Logs            *json.RawMessage `json:"logs,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

var emptyLogs = []byte("[]")

// Redact projects job for auth. The stored job is never modified.
func Redact(job *models.ApplicationDeploymentQueue, auth authz.Context) DeploymentView {
	v := DeploymentView{
		ID:              job.ID,
		DeploymentUUID:  job.DeploymentUUID,
		ApplicationID:   job.ApplicationID,
		ApplicationName: job.ApplicationName,
		ServerID:        job.ServerID,
		ServerName:      job.ServerName,
		PullRequestID:   job.PullRequestID,
		ForceRebuild:    job.ForceRebuild,
		Status:          string(job.Status),
		DeploymentURL:   job.DeploymentURL,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}
	if !auth.Can(authz.AbilityViewSensitive) {
		return v
	}
	raw := json.RawMessage(append([]byte(nil), emptyLogs...))
	if len(job.Logs) > 0 && string(job.Logs) != "null" {
		raw = append(json.RawMessage(nil), job.Logs...)
	}
	v.Logs = &raw
	return v
}
