package models

import (
	"fmt"
	"time"
)

// Kind discriminates the resource variants a deploy request can address.
type Kind string

const (
	KindApplication Kind = "application"
	KindPostgresql  Kind = "postgresql"
	KindRedis       Kind = "redis"
	KindKeydb       Kind = "keydb"
	KindDragonfly   Kind = "dragonfly"
	KindClickhouse  Kind = "clickhouse"
	KindMongodb     Kind = "mongodb"
	KindMysql       Kind = "mysql"
	KindMariadb     Kind = "mariadb"
	KindService     Kind = "service"
)

// AllKinds lists every resource kind in declaration order.
func AllKinds() []Kind {
	return []Kind{
		KindApplication,
		KindPostgresql,
		KindRedis,
		KindKeydb,
		KindDragonfly,
		KindClickhouse,
		KindMongodb,
		KindMysql,
		KindMariadb,
		KindService,
	}
}

// DatabaseKinds lists the standalone database kinds.
func DatabaseKinds() []Kind {
	return []Kind{
		KindPostgresql,
		KindRedis,
		KindKeydb,
		KindDragonfly,
		KindClickhouse,
		KindMongodb,
		KindMysql,
		KindMariadb,
	}
}

// IsDatabase reports whether k is one of the standalone database kinds.
func (k Kind) IsDatabase() bool {
	for _, d := range DatabaseKinds() {
		if d == k {
			return true
		}
	}
	return false
}

// Resource is implemented by every deployable or startable model.
type Resource interface {
	Kind() Kind
	GetID() uint
	GetUUID() string
	GetName() string
	GetServerID() uint
	TableName() string
}

// StandaloneDatabase is a Resource that records when it was last started.
type StandaloneDatabase interface {
	Resource
	MarkStarted(at time.Time)
}

// NewResource returns a zero value of the model backing kind.
func NewResource(kind Kind) (Resource, error) {
	switch kind {
	case KindApplication:
		return &Application{}, nil
	case KindPostgresql:
		return &StandalonePostgresql{}, nil
	case KindRedis:
		return &StandaloneRedis{}, nil
	case KindKeydb:
		return &StandaloneKeydb{}, nil
	case KindDragonfly:
		return &StandaloneDragonfly{}, nil
	case KindClickhouse:
		return &StandaloneClickhouse{}, nil
	case KindMongodb:
		return &StandaloneMongodb{}, nil
	case KindMysql:
		return &StandaloneMysql{}, nil
	case KindMariadb:
		return &StandaloneMariadb{}, nil
	case KindService:
		return &Service{}, nil
	default:
		return nil, fmt.Errorf("unknown resource kind %q", kind)
	}
}
