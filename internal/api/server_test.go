package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgallion1/jarbas/internal/config"
	"github.com/dgallion1/jarbas/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	results []*store.Reimbursement
	total   int64
	err     error

	filter store.Filter
	page   store.Page
	key    [3]int64
}

func (f *fakeReader) List(_ context.Context, filter store.Filter, page store.Page) ([]*store.Reimbursement, int64, error) {
	f.filter, f.page = filter, page
	return f.results, f.total, f.err
}

func (f *fakeReader) Get(_ context.Context, year, applicantID, documentID int64) (*store.Reimbursement, error) {
	f.key = [3]int64{year, applicantID, documentID}
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return nil, store.ErrNotFound
	}
	return f.results[0], nil
}

func newTestServer(reader *fakeReader) *Server {
	cfg := config.Config{PageSize: 100, MaxPageSize: 1000}
	return NewServer(reader, slog.New(slog.DiscardHandler), cfg)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(&fakeReader{}), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestList_DefaultsAndEmptyResults(t *testing.T) {
	reader := &fakeReader{}
	rec := get(t, newTestServer(reader), "/api/reimbursement/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"results":[]}`, rec.Body.String())
	assert.Nil(t, reader.filter.Year)
	assert.Nil(t, reader.filter.ApplicantID)
	assert.Equal(t, store.Page{Limit: 100}, reader.page)
}

func TestList_PathFiltersAndPaging(t *testing.T) {
	reader := &fakeReader{
		results: []*store.Reimbursement{{Year: 2016, ApplicantID: 13, DocumentID: 42}},
		total:   7,
	}
	rec := get(t, newTestServer(reader), "/api/reimbursement/2016/13/?limit=5000&offset=20")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, reader.filter.Year)
	require.NotNil(t, reader.filter.ApplicantID)
	assert.Equal(t, int64(2016), *reader.filter.Year)
	assert.Equal(t, int64(13), *reader.filter.ApplicantID)
	assert.Equal(t, store.Page{Limit: 1000, Offset: 20}, reader.page, "limit is capped")

	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(7), body.Count)
	require.Len(t, body.Results, 1)
	assert.Equal(t, int64(42), body.Results[0].DocumentID)
}

func TestList_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"year", "/api/reimbursement/twenty/"},
		{"applicant", "/api/reimbursement/2016/x/"},
		{"limit", "/api/reimbursement/?limit=-1"},
		{"zero limit", "/api/reimbursement/?limit=0"},
		{"offset", "/api/reimbursement/?offset=abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(&fakeReader{}), tt.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestList_StoreFailure(t *testing.T) {
	rec := get(t, newTestServer(&fakeReader{err: errors.New("boom")}), "/api/reimbursement/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestGet(t *testing.T) {
	probability := 0.9
	reader := &fakeReader{results: []*store.Reimbursement{{
		Year: 2016, ApplicantID: 13, DocumentID: 42,
		Probability: &probability,
		Suspicions:  map[string]any{"meal_price_outlier": true},
	}}}
	rec := get(t, newTestServer(reader), "/api/reimbursement/2016/13/42/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [3]int64{2016, 13, 42}, reader.key)

	var got store.Reimbursement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(42), got.DocumentID)
	assert.Equal(t, true, got.Suspicions["meal_price_outlier"])
}

func TestGet_NotFound(t *testing.T) {
	rec := get(t, newTestServer(&fakeReader{}), "/api/reimbursement/2016/13/42/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGet_InvalidDocumentID(t *testing.T) {
	rec := get(t, newTestServer(&fakeReader{}), "/api/reimbursement/2016/13/abc/")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	s := newTestServer(&fakeReader{})
	get(t, s, "/api/reimbursement/2016/")
	get(t, s, "/api/reimbursement/2017/")

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `jarbas_api_requests_total{route="/api/reimbursement/{year}",status="200"} 2`)
	assert.False(t, strings.Contains(body, "/api/reimbursement/2016"), "raw paths must not become labels")
}
