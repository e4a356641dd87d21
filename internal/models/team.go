package models

import "time"

// Team is the tenant boundary owning servers, resources and tags.
type Team struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Team) TableName() string { return "teams" }

// Server is a deployment target owned by exactly one team.
type Server struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"uuid"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	IP        string    `gorm:"type:varchar(64)" json:"ip"`
	TeamID    uint      `gorm:"index;not null" json:"team_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Server) TableName() string { return "servers" }
