package models

import "time"

// Application is a buildable resource; deploying it queues a build job.
type Application struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UUID          string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"uuid"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	FQDN          string    `gorm:"column:fqdn;type:text" json:"fqdn"`
	GitRepository string    `gorm:"type:text" json:"git_repository"`
	GitBranch     string    `gorm:"type:varchar(255)" json:"git_branch"`
	ServerID      uint      `gorm:"index;not null" json:"server_id"`
	Server        Server    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Application) TableName() string { return "applications" }

func (a *Application) Kind() Kind        { return KindApplication }
func (a *Application) GetID() uint       { return a.ID }
func (a *Application) GetUUID() string   { return a.UUID }
func (a *Application) GetName() string   { return a.Name }
func (a *Application) GetServerID() uint { return a.ServerID }
