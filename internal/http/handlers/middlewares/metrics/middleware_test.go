package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"secretboard/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareMetrics(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MiddlewareMetrics())
	r.HandleFunc("/teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}).Methods(http.MethodGet)

	counter := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/teapot", "418")
	before := testutil.ToFloat64(counter)

	for range 2 {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestRouteName_Unmatched(t *testing.T) {
	assert.Equal(t, "unmatched", routeName(httptest.NewRequest(http.MethodGet, "/", nil)))
}
