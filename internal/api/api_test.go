package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxypool/internal/config"
	"proxypool/internal/service"
	"proxypool/internal/store"
)

type fakeRepository struct {
	active []store.Proxy
	stats  store.Stats
	filter store.ActiveFilter
	limit  int
}

func (f *fakeRepository) UpsertCandidates(ctx context.Context, c []store.Candidate) (int, error) {
	return 0, nil
}
func (f *fakeRepository) RecordVerdict(ctx context.Context, v store.Verdict) error { return nil }
func (f *fakeRepository) IterPending(ctx context.Context, limit, maxFail int) ([]store.Proxy, error) {
	return nil, nil
}
func (f *fakeRepository) IterSuccessful(ctx context.Context, limit int) ([]store.Proxy, error) {
	return nil, nil
}
func (f *fakeRepository) IterActive(ctx context.Context, filter store.ActiveFilter, limit int) ([]store.Proxy, error) {
	f.filter = filter
	f.limit = limit
	if limit < len(f.active) {
		return f.active[:limit], nil
	}
	return f.active, nil
}
func (f *fakeRepository) CleanupFailed(ctx context.Context, maxFail int) (int64, error) { return 0, nil }
func (f *fakeRepository) CleanupStale(ctx context.Context, days int) (int64, error)     { return 0, nil }
func (f *fakeRepository) GetWithoutCountry(ctx context.Context, limit int) ([]store.Proxy, error) {
	return nil, nil
}
func (f *fakeRepository) BatchSetCountry(ctx context.Context, updates []store.CountryUpdate) error {
	return nil
}
func (f *fakeRepository) Stats(ctx context.Context) (store.Stats, error) { return f.stats, nil }

func newTestServer(repo *fakeRepository) *Server {
	svc := service.New(repo, nil, nil, config.Config{})
	return New(svc, nil, 20, 1000)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHandleListProxies(t *testing.T) {
	repo := &fakeRepository{active: []store.Proxy{{ID: 1, IP: "1.2.3.4"}, {ID: 2, IP: "5.6.7.8"}}}
	s := newTestServer(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/proxies?protocol=http&limit=1", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "http", repo.filter.Protocol)
}

func TestHandleListProxies_LimitCappedAtMax(t *testing.T) {
	repo := &fakeRepository{}
	s := newTestServer(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/proxies?limit=999999", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, repo.limit)
}

func TestHandleStats(t *testing.T) {
	repo := &fakeRepository{stats: store.Stats{Total: 7}}
	s := newTestServer(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&fakeRepository{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleTasks_NilScheduler(t *testing.T) {
	s := newTestServer(&fakeRepository{})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
}

func TestHandleExportProxies_CSV(t *testing.T) {
	repo := &fakeRepository{active: []store.Proxy{{ID: 1, IP: "1.2.3.4", Protocol: "http"}}}
	s := newTestServer(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/proxies/export?format=csv", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1.2.3.4")
}

func TestHandleExportProxies_UnsupportedFormat(t *testing.T) {
	s := newTestServer(&fakeRepository{})

	req := httptest.NewRequest(http.MethodGet, "/api/proxies/export?format=bogus", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
}
