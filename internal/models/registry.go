package models

// All returns every model managed by migrations.
func All() []interface{} {
	return []interface{}{
		&Team{},
		&Server{},
		&Application{},
		&Service{},
		&StandalonePostgresql{},
		&StandaloneRedis{},
		&StandaloneKeydb{},
		&StandaloneDragonfly{},
		&StandaloneClickhouse{},
		&StandaloneMongodb{},
		&StandaloneMysql{},
		&StandaloneMariadb{},
		&Tag{},
		&ApplicationDeploymentQueue{},
	}
}
