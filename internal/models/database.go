package models

import "time"

// Database holds the columns shared by every standalone database table.
type Database struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UUID      string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"uuid"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Image     string     `gorm:"type:varchar(255)" json:"image"`
	ServerID  uint       `gorm:"index;not null" json:"server_id"`
	StartedAt *time.Time `json:"started_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (d *Database) GetID() uint       { return d.ID }
func (d *Database) GetUUID() string   { return d.UUID }
func (d *Database) GetName() string   { return d.Name }
func (d *Database) GetServerID() uint { return d.ServerID }

func (d *Database) GetStartedAt() *time.Time { return d.StartedAt }

// MarkStarted sets the in-memory start timestamp.
func (d *Database) MarkStarted(at time.Time) {
	t := at
	d.StartedAt = &t
}

type StandalonePostgresql struct {
	Database
	PostgresUser string `gorm:"type:varchar(128)" json:"postgres_user"`
	PostgresDB   string `gorm:"column:postgres_db;type:varchar(128)" json:"postgres_db"`
}

func (StandalonePostgresql) TableName() string { return "standalone_postgresqls" }
func (*StandalonePostgresql) Kind() Kind       { return KindPostgresql }

type StandaloneRedis struct {
	Database
}

func (StandaloneRedis) TableName() string { return "standalone_redis" }
func (*StandaloneRedis) Kind() Kind       { return KindRedis }

type StandaloneKeydb struct {
	Database
}

func (StandaloneKeydb) TableName() string { return "standalone_keydbs" }
func (*StandaloneKeydb) Kind() Kind       { return KindKeydb }

type StandaloneDragonfly struct {
	Database
}

func (StandaloneDragonfly) TableName() string { return "standalone_dragonflies" }
func (*StandaloneDragonfly) Kind() Kind       { return KindDragonfly }

type StandaloneClickhouse struct {
	Database
}

func (StandaloneClickhouse) TableName() string { return "standalone_clickhouses" }
func (*StandaloneClickhouse) Kind() Kind       { return KindClickhouse }

type StandaloneMongodb struct {
	Database
}

func (StandaloneMongodb) TableName() string { return "standalone_mongodbs" }
func (*StandaloneMongodb) Kind() Kind       { return KindMongodb }

type StandaloneMysql struct {
	Database
	MysqlUser     string `gorm:"type:varchar(128)" json:"mysql_user"`
	MysqlDatabase string `gorm:"type:varchar(128)" json:"mysql_database"`
}

func (StandaloneMysql) TableName() string { return "standalone_mysqls" }
func (*StandaloneMysql) Kind() Kind       { return KindMysql }

type StandaloneMariadb struct {
	Database
	MariadbUser     string `gorm:"type:varchar(128)" json:"mariadb_user"`
	MariadbDatabase string `gorm:"type:varchar(128)" json:"mariadb_database"`
}

func (StandaloneMariadb) TableName() string { return "standalone_mariadbs" }
func (*StandaloneMariadb) Kind() Kind       { return KindMariadb }
