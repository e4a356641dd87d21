//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stackhook/engine/internal/models"
	"github.com/stackhook/engine/pkg/database"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestPostgresTenantScoping(t *testing.T) {
	ctx := context.Background()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("stackhook"),
		tcpostgres.WithUsername("stackhook"),
		tcpostgres.WithPassword("stackhook"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, testcontainers.TerminateContainer(ctr)) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := database.Open(ctx, database.Options{Driver: "postgres", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	f := seed(t, db)
	require.NoError(t, db.Create(&models.Application{UUID: "pg-app", Name: "web", ServerID: f.server.ID}).Error)
	require.NoError(t, db.Create(&models.StandaloneMysql{Database: models.Database{UUID: "pg-mysql", Name: "db", ServerID: f.otherServer.ID}}).Error)

	resources := NewResourceRepository(db)
	res, err := resources.FindByUUID(ctx, "pg-app", f.team.ID)
	require.NoError(t, err)
	require.Equal(t, models.KindApplication, res.Kind())

	_, err = resources.FindByUUID(ctx, "pg-mysql", f.team.ID)
	require.Error(t, err)

	queue := NewDeploymentQueueRepository(db)
	job := &models.ApplicationDeploymentQueue{DeploymentUUID: "pg-d1", ApplicationID: res.GetID(), ServerID: f.server.ID}
	require.NoError(t, queue.CreateQueued(ctx, job))
	active, err := queue.ListActiveByServers(ctx, []uint{f.server.ID})
	require.NoError(t, err)
	require.Len(t, active, 1)
}
