package health

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mtrann/healthtrack/internal/auth"
	"github.com/mtrann/healthtrack/internal/middleware"
	"github.com/mtrann/healthtrack/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHealthHandler() (*Handler, *repoMock, *metrics.Manager) {
	repo := NewMockHealthStatsRepo()
	m := metrics.NewTestManager()
	return NewHandler(repo, m), repo, m
}

func requestWithSession(method, path, body string, userID int) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	session := &auth.Session{
		UserID:    userID,
		Username:  "mila",
		Role:      "user",
		CreatedAt: time.Now(),
	}
	return req.WithContext(middleware.ContextWithSession(req.Context(), session))
}

func TestHandler_Add(t *testing.T) {
	handler, repo, m := newTestHealthHandler()

	rr := httptest.NewRecorder()
	handler.handleAdd(rr, requestWithSession("POST", "/healthstats", `{
		"date": "2024-01-15",
		"weight": 70,
		"height": 1.75,
		"waterIntake": 2.5,
		"stepCount": 9000,
		"heartRate": 64
	}`, 1))
	require.Equal(t, http.StatusCreated, rr.Code)

	var added HealthStat
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &added))
	assert.Equal(t, 1, added.UserID)
	require.NotNil(t, added.BMI)
	assert.InDelta(t, 22.86, *added.BMI, 0.001)

	stored, err := repo.Get(context.Background(), added.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", stored.Date.Format(time.DateOnly))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterHealthStats))

	t.Run("invalid date", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.handleAdd(rr, requestWithSession("POST", "/healthstats", `{"date": "15.01.2024"}`, 1))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("no session", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.handleAdd(rr, httptest.NewRequest("POST", "/healthstats", bytes.NewBufferString(`{}`)))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestHandler_GetUpdateDelete(t *testing.T) {
	handler, repo, _ := newTestHealthHandler()

	weight := 70.0
	stat, err := repo.Add(context.Background(), &HealthStat{
		UserID: 1,
		Date:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Weight: &weight,
	})
	require.NoError(t, err)

	withVars := func(req *http.Request, id string) *http.Request {
		return mux.SetURLVars(req, map[string]string{"id": id})
	}
	statID := fmt.Sprintf("%d", stat.ID)

	t.Run("get", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := withVars(requestWithSession("GET", "/healthstats/"+statID, "", 1), statID)
		handler.handleGet(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var got HealthStat
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, stat.ID, got.ID)
	})

	t.Run("get for wrong user", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := withVars(requestWithSession("GET", "/healthstats/"+statID, "", 2), statID)
		handler.handleGet(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("update", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := withVars(requestWithSession(
			"PUT", "/healthstats/"+statID,
			`{"date": "2024-01-15", "weight": 69.5, "height": 1.75}`,
			1,
		), statID)
		handler.handleUpdate(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		updated, err := repo.Get(context.Background(), stat.ID, 1)
		require.NoError(t, err)
		require.NotNil(t, updated.BMI)
		assert.InDelta(t, 22.69, *updated.BMI, 0.001)
	})

	t.Run("delete", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := withVars(requestWithSession("DELETE", "/healthstats/"+statID, "", 1), statID)
		handler.handleDelete(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		_, err := repo.Get(context.Background(), stat.ID, 1)
		assert.ErrorIs(t, err, ErrHealthStatNotFound)
	})

	t.Run("delete missing", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := withVars(requestWithSession("DELETE", "/healthstats/999", "", 1), "999")
		handler.handleDelete(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandler_List(t *testing.T) {
	handler, repo, _ := newTestHealthHandler()

	for day := 1; day <= 5; day++ {
		weight := 70.0 + float64(day)
		_, err := repo.Add(context.Background(), &HealthStat{
			UserID: 1,
			Date:   time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
			Weight: &weight,
		})
		require.NoError(t, err)
	}

	rr := httptest.NewRecorder()
	handler.handleList(rr, requestWithSession("GET", "/healthstats?limit=3", "", 1))
	require.Equal(t, http.StatusOK, rr.Code)

	var stats []HealthStat
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	require.Len(t, stats, 3)
	// newest first
	assert.Equal(t, "2024-01-05", stats[0].Date.Format(time.DateOnly))

	t.Run("other user sees nothing", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.handleList(rr, requestWithSession("GET", "/healthstats", "", 2))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "[]", rr.Body.String())
	})

	t.Run("invalid limit", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.handleList(rr, requestWithSession("GET", "/healthstats?limit=nope", "", 1))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
