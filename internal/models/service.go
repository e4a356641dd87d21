package models

import "time"

// Service is a multi-container stack started as a unit.
type Service struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UUID          string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"uuid"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	DockerCompose string    `gorm:"type:text" json:"-"`
	ServerID      uint      `gorm:"index;not null" json:"server_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Service) TableName() string { return "services" }

func (s *Service) Kind() Kind        { return KindService }
func (s *Service) GetID() uint       { return s.ID }
func (s *Service) GetUUID() string   { return s.UUID }
func (s *Service) GetName() string   { return s.Name }
func (s *Service) GetServerID() uint { return s.ServerID }
