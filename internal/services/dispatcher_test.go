package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stackhook/engine/internal/models"
	"github.com/stackhook/engine/pkg/deployid"
	appErr "github.com/stackhook/engine/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type startLog struct {
	calls []models.Kind
	err   error
}

func (l *startLog) actions() StartActions {
	out := StartActions{}
	for _, kind := range models.AllKinds() {
		if kind == models.KindApplication {
			continue
		}
		out[kind] = func(_ context.Context, res models.Resource) error {
			l.calls = append(l.calls, res.Kind())
			return l.err
		}
	}
	return out
}

func newTestDispatcher(t *testing.T, q BuildQueue, rec StartRecorder, starts StartActions, now time.Time) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(q, deployid.Must(deployid.MinLength), starts, rec)
	require.NoError(t, err)
	d.now = func() time.Time { return now }
	return d
}

func TestNewDispatcherRequiresEveryStartAction(t *testing.T) {
	log := &startLog{}
	starts := log.actions()
	delete(starts, models.KindClickhouse)

	_, err := NewDispatcher(&mockBuildQueue{}, deployid.Must(24), starts, &mockRecorder{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "clickhouse")

	_, err = NewDispatcher(nil, deployid.Must(24), log.actions(), &mockRecorder{})
	require.Error(t, err)
}

func TestDispatchCoversEveryKind(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	q := &mockBuildQueue{}
	q.On("Submit", mock.Anything, mock.Anything, mock.Anything, false).Return(nil)
	rec := &mockRecorder{}
	rec.On("MarkStarted", mock.Anything, mock.Anything, now).Return(nil)
	log := &startLog{}
	d := newTestDispatcher(t, q, rec, log.actions(), now)

	for _, kind := range models.AllKinds() {
		t.Run(string(kind), func(t *testing.T) {
			res, err := models.NewResource(kind)
			require.NoError(t, err)

			out, err := d.Dispatch(context.Background(), res, false)
			require.NoError(t, err)
			require.NotEmpty(t, out.Message)

			switch {
			case kind == models.KindApplication:
				require.True(t, deployid.Valid(out.DeploymentUUID))
				require.Contains(t, out.Message, "deployment queued.")
			case kind.IsDatabase():
				require.Empty(t, out.DeploymentUUID)
				require.Contains(t, out.Message, "Database")
				db := res.(interface{ GetStartedAt() *time.Time })
				require.NotNil(t, db.GetStartedAt())
			default:
				require.Empty(t, out.DeploymentUUID)
				require.Contains(t, out.Message, "It could take a while, be patient.")
			}
		})
	}
	require.Len(t, log.calls, len(models.AllKinds())-1)
	q.AssertNumberOfCalls(t, "Submit", 1)
	rec.AssertNumberOfCalls(t, "MarkStarted", len(models.DatabaseKinds()))
}

func TestDispatchApplication(t *testing.T) {
	app := &models.Application{UUID: "app-1", Name: "web"}
	q := &mockBuildQueue{}
	q.On("Submit", mock.Anything, app, mock.AnythingOfType("string"), true).Return(nil).Once()
	log := &startLog{}
	d := newTestDispatcher(t, q, &mockRecorder{}, log.actions(), time.Now())

	out, err := d.Dispatch(context.Background(), app, true)
	require.NoError(t, err)
	require.Equal(t, "Application web deployment queued.", out.Message)
	require.Len(t, out.DeploymentUUID, deployid.MinLength)
	require.Empty(t, log.calls)
	q.AssertExpectations(t)

	submitted := q.Calls[0].Arguments.String(2)
	require.Equal(t, out.DeploymentUUID, submitted)
}

func TestDispatchApplicationYieldsFreshIdentities(t *testing.T) {
	q := &mockBuildQueue{}
	q.On("Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d, err := NewDispatcher(q, deployid.Must(deployid.DefaultLength), (&startLog{}).actions(), &mockRecorder{})
	require.NoError(t, err)

	seen := map[string]struct{}{}
	for i := 0; i < 1000; i++ {
		out, err := d.Dispatch(context.Background(), &models.Application{Name: "web"}, false)
		require.NoError(t, err)
		_, dup := seen[out.DeploymentUUID]
		require.False(t, dup)
		seen[out.DeploymentUUID] = struct{}{}
	}
}

func TestDispatchQueueFailure(t *testing.T) {
	q := &mockBuildQueue{}
	q.On("Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
	d := newTestDispatcher(t, q, &mockRecorder{}, (&startLog{}).actions(), time.Now())

	out, err := d.Dispatch(context.Background(), &models.Application{Name: "web"}, false)
	require.Error(t, err)
	require.Empty(t, out.DeploymentUUID)
	require.True(t, appErr.IsCode(err, appErr.CodeUnavailable))
	require.Equal(t, "Application web deployment could not be queued.", publicMessage(err))
}

func TestDispatchDatabaseStartFailureSkipsStamp(t *testing.T) {
	rec := &mockRecorder{}
	log := &startLog{err: appErr.New(appErr.CodeDeadline, "start timed out")}
	d := newTestDispatcher(t, &mockBuildQueue{}, rec, log.actions(), time.Now())

	db := &models.StandaloneMariadb{Database: models.Database{Name: "maria"}}
	_, err := d.Dispatch(context.Background(), db, true)
	require.Error(t, err)
	require.True(t, appErr.IsCode(err, appErr.CodeDeadline))
	require.Equal(t, "Database maria could not be started.", publicMessage(err))
	require.Nil(t, db.StartedAt)
	rec.AssertNotCalled(t, "MarkStarted", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchDatabaseStampsStartedAt(t *testing.T) {
	now := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	db := &models.StandaloneRedis{Database: models.Database{ID: 3, Name: "cache"}}
	rec := &mockRecorder{}
	rec.On("MarkStarted", mock.Anything, db, now).Return(nil).Once()
	d := newTestDispatcher(t, &mockBuildQueue{}, rec, (&startLog{}).actions(), now)

	out, err := d.Dispatch(context.Background(), db, false)
	require.NoError(t, err)
	require.Equal(t, "Database cache started.", out.Message)
	require.Equal(t, now, *db.StartedAt)
	rec.AssertExpectations(t)
}

func TestDispatchRecorderFailure(t *testing.T) {
	rec := &mockRecorder{}
	rec.On("MarkStarted", mock.Anything, mock.Anything, mock.Anything).Return(appErr.New(appErr.CodeInternal, "db gone"))
	d := newTestDispatcher(t, &mockBuildQueue{}, rec, (&startLog{}).actions(), time.Now())

	_, err := d.Dispatch(context.Background(), &models.StandaloneKeydb{Database: models.Database{Name: "kv"}}, false)
	require.True(t, appErr.IsCode(err, appErr.CodeInternal))
}

func TestDispatchService(t *testing.T) {
	log := &startLog{}
	d := newTestDispatcher(t, &mockBuildQueue{}, &mockRecorder{}, log.actions(), time.Now())

	out, err := d.Dispatch(context.Background(), &models.Service{Name: "stack"}, true)
	require.NoError(t, err)
	require.Equal(t, "Service stack started. It could take a while, be patient.", out.Message)
	require.Empty(t, out.DeploymentUUID)
	require.Equal(t, []models.Kind{models.KindService}, log.calls)
}

type unknownResource struct{ models.Application }

func (u *unknownResource) Kind() models.Kind { return "lambda" }

func TestDispatchRejectsMalformedInput(t *testing.T) {
	d := newTestDispatcher(t, &mockBuildQueue{}, &mockRecorder{}, (&startLog{}).actions(), time.Now())

	_, err := d.Dispatch(context.Background(), nil, false)
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	require.Equal(t, "Resource (<nil>) not found.", publicMessage(err))

	var typedNil *models.StandaloneRedis
	_, err = d.Dispatch(context.Background(), typedNil, false)
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, err = d.Dispatch(context.Background(), &unknownResource{models.Application{UUID: "x1"}}, false)
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
	require.Equal(t, "Resource (x1) not found.", publicMessage(err))
}
