package models

import "time"

// Tag groups applications and services of one team for bulk addressing.
// Names are unique per team, not globally.
type Tag struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Name         string        `gorm:"type:varchar(128);not null;uniqueIndex:idx_tags_team_name" json:"name"`
	TeamID       uint          `gorm:"not null;uniqueIndex:idx_tags_team_name" json:"team_id"`
	Applications []Application `gorm:"many2many:application_tags;" json:"-"`
	Services     []Service     `gorm:"many2many:service_tags;" json:"-"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (Tag) TableName() string { return "tags" }
