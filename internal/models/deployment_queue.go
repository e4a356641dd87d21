package models

import (
	"time"

	"gorm.io/datatypes"
)

// DeploymentStatus is the lifecycle state of a queued application build.
type DeploymentStatus string

const (
	DeploymentQueued         DeploymentStatus = "queued"
	DeploymentInProgress     DeploymentStatus = "in_progress"
	DeploymentFinished       DeploymentStatus = "finished"
	DeploymentFailed         DeploymentStatus = "failed"
	DeploymentCancelledByNew DeploymentStatus = "cancelled-by-new"
)

// ActiveDeploymentStatuses are the states polled by clients.
func ActiveDeploymentStatuses() []DeploymentStatus {
	return []DeploymentStatus{DeploymentQueued, DeploymentInProgress}
}

// ApplicationDeploymentQueue is one build job. Rows are inserted as queued
// by the dispatcher; every later transition is written by the execution
// engine.
type ApplicationDeploymentQueue struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	DeploymentUUID  string           `gorm:"type:varchar(64);uniqueIndex;not null" json:"deployment_uuid"`
	ApplicationID   uint             `gorm:"index;not null" json:"application_id"`
	ApplicationName string           `gorm:"type:varchar(255)" json:"application_name"`
	ServerID        uint             `gorm:"index;not null" json:"server_id"`
	ServerName      string           `gorm:"type:varchar(128)" json:"server_name"`
	PullRequestID   int              `gorm:"not null;default:0" json:"pull_request_id"`
	ForceRebuild    bool             `gorm:"not null;default:false" json:"force_rebuild"`
	Status          DeploymentStatus `gorm:"type:varchar(32);index;not null" json:"status"`
	DeploymentURL   string           `gorm:"type:text" json:"deployment_url"`
	Logs            datatypes.JSON   `json:"logs,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (ApplicationDeploymentQueue) TableName() string { return "application_deployment_queues" }
