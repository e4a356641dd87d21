package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveDispatch(t *testing.T) {
	before := testutil.ToFloat64(dispatchTotal.WithLabelValues("redis", "error"))
	ObserveDispatch("redis", errors.New("down"), 10*time.Millisecond)
	require.Equal(t, before+1, testutil.ToFloat64(dispatchTotal.WithLabelValues("redis", "error")))
}

func TestObserveBatch(t *testing.T) {
	before := testutil.ToFloat64(batchTotal.WithLabelValues("tag", "success"))
	ObserveBatch("tag", true, 3)
	require.Equal(t, before+1, testutil.ToFloat64(batchTotal.WithLabelValues("tag", "success")))
}

func TestRegisterIsIdempotent(t *testing.T) {
	require.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestHTTPMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMiddleware)
	r.Get("/deployments/{uuid}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "/deployments/{uuid}", "404")
	before := testutil.ToFloat64(counter)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/deployments/abc", nil))
	require.Equal(t, before+1, testutil.ToFloat64(counter))
}
