package main

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stackhook/engine/internal/models"
	"github.com/stackhook/engine/pkg/database"
	"github.com/stackhook/engine/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	_, _ = logger.Init("error", "json")
	os.Exit(m.Run())
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), database.Options{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)

	require.NoError(t, runMigrations(db))
	require.NoError(t, runMigrations(db))

	for _, m := range models.All() {
		require.True(t, db.Migrator().HasTable(m))
	}
	require.True(t, db.Migrator().HasIndex(&models.ApplicationDeploymentQueue{}, activeJobsIndex))
	require.True(t, db.Migrator().HasTable("application_tags"))
	require.True(t, db.Migrator().HasTable("service_tags"))
}
