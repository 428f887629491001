package document

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestExportEndpointEnqueues(t *testing.T) {
	q, _ := newTestQueue(t)
	r := chi.NewRouter()
	(&Handler{Queue: q}).Routes(r)

	req := httptest.NewRequest(http.MethodPost, "/v1/quotes/"+"4b8c06c5-34d6-4a02-9f0f-0d62b62d3fb1"+"/export", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)

	size, err := q.R.ZCard(context.Background(), q.jobsKey()).Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), size)
}

func TestExportEndpointRejectsBadID(t *testing.T) {
	q, _ := newTestQueue(t)
	r := chi.NewRouter()
	(&Handler{Queue: q}).Routes(r)

	req := httptest.NewRequest(http.MethodPost, "/v1/quotes/not-a-uuid/export", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
