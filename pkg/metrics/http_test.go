package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Delete("/api/admin/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("DELETE", "/api/admin/users/{id}", "404"))

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/2b1e4c1a-8f2d-4e55-9a55-0a2a7f0d9c11", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("DELETE", "/api/admin/users/{id}", "404"))
	assert.Equal(t, before+1, after)
}

func TestPathLabel_FallsBackToNormalizedPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x/2b1e4c1a-8f2d-4e55-9a55-0a2a7f0d9c11/y", nil)
	assert.Equal(t, "/x/{id}/y", pathLabel(req))
}
