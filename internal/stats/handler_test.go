package stats_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mtrann/healthtrack/internal/auth"
	"github.com/mtrann/healthtrack/internal/health"
	"github.com/mtrann/healthtrack/internal/middleware"
	"github.com/mtrann/healthtrack/internal/stats"
	"github.com/mtrann/healthtrack/internal/telemetry/metrics"
	"github.com/mtrann/healthtrack/internal/users"
	"github.com/mtrann/healthtrack/internal/workouts"

	"github.com/coocood/freecache"
	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*mux.Router, assemblerMocks, *metrics.Manager) {
	t.Helper()
	assembler, mocks := newTestAssembler(t)
	metricsManager := metrics.NewTestManager()
	// big enough that a full monthly report fits under the freecache
	// per-entry limit of 1/1024 of the cache size
	handler := stats.NewHandler(assembler, freecache.NewCache(16*1024*1024), metricsManager)

	router := mux.NewRouter()
	handler.SetupRoutes(router)
	return router, mocks, metricsManager
}

func statsRequest(target string, session *auth.Session) *http.Request {
	req := httptest.NewRequest("GET", target, nil)
	req.Header.Set("User-Agent", "test-agent")
	if session != nil {
		req = req.WithContext(middleware.ContextWithSession(req.Context(), session))
	}
	return req
}

func TestHandler_Statistics(t *testing.T) {
	router, mocks, metricsManager := newTestHandler(t)

	mocks.directory.EXPECT().
		ResolveTarget(gomock.Any(), 1, 0).
		Return(testTarget(), nil)
	mocks.sessions.EXPECT().
		ListActiveInRange(gomock.Any(), 1, gomock.Any(), gomock.Any()).
		Return([]workouts.Session{
			{
				ID: 5, UserID: 1,
				Schedule: day(2024, time.January, 2), UpdatedAt: day(2024, time.January, 2),
				TotalDuration: 30, TotalCaloriesBurned: 200,
				IsActive: true,
			},
		}, nil)
	mocks.healthStats.EXPECT().
		ListInRange(gomock.Any(), 1, gomock.Any(), gomock.Any()).
		Return(nil, nil)

	req := statsRequest("/my-statistics?period=weekly&week=2024-W01", &auth.Session{UserID: 1, Username: "mtrann"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var report map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, "weekly", report["period"])
	assert.Equal(t, "2024-01-01", report["start_date"])
	assert.Equal(t, "2024-01-07", report["end_date"])
	assert.Equal(t, float64(1), report["total_sessions"])
	assert.Equal(t,
		[]any{float64(0), float64(30), float64(0), float64(0), float64(0), float64(0), float64(0)},
		report["total_time"],
	)

	targetUser, ok := report["target_user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "mtrann", targetUser["username"])
	assert.Equal(t, "Minh Tran", targetUser["full_name"])

	assert.Equal(t, float64(1), testutil.ToFloat64(
		metricsManager.CounterStatisticsRequests.WithLabelValues("weekly"),
	))
}

func TestHandler_Statistics_CachedSecondCall(t *testing.T) {
	router, mocks, metricsManager := newTestHandler(t)

	// assembler must be hit exactly once, the repeat comes from cache
	mocks.directory.EXPECT().
		ResolveTarget(gomock.Any(), 1, 0).
		Return(testTarget(), nil).Times(1)
	mocks.sessions.EXPECT().
		ListActiveInRange(gomock.Any(), 1, gomock.Any(), gomock.Any()).
		Return(nil, nil).Times(1)
	mocks.healthStats.EXPECT().
		ListInRange(gomock.Any(), 1, gomock.Any(), gomock.Any()).
		Return(nil, nil).Times(1)

	session := &auth.Session{UserID: 1, Username: "mtrann"}

	firstRecorder := httptest.NewRecorder()
	router.ServeHTTP(firstRecorder, statsRequest("/my-statistics?period=monthly&month=2024-01", session))
	require.Equal(t, http.StatusOK, firstRecorder.Code)

	secondRecorder := httptest.NewRecorder()
	router.ServeHTTP(secondRecorder, statsRequest("/my-statistics?period=monthly&month=2024-01", session))
	require.Equal(t, http.StatusOK, secondRecorder.Code)

	assert.Equal(t, firstRecorder.Body.String(), secondRecorder.Body.String())
	assert.Equal(t, float64(1), testutil.ToFloat64(
		metricsManager.CounterStatisticsRequests.WithLabelValues("monthly"),
	))
}

func TestHandler_Statistics_Errors(t *testing.T) {
	testCases := map[string]struct {
		target         string
		session        *auth.Session
		prepare        func(mocks assemblerMocks)
		expectedStatus int
	}{
		"no session": {
			target:         "/my-statistics",
			session:        nil,
			expectedStatus: http.StatusUnauthorized,
		},
		"invalid period": {
			target:         "/my-statistics?period=fortnightly",
			session:        &auth.Session{UserID: 1},
			expectedStatus: http.StatusBadRequest,
		},
		"invalid week selector": {
			target:         "/my-statistics?period=weekly&week=nope",
			session:        &auth.Session{UserID: 1},
			expectedStatus: http.StatusBadRequest,
		},
		"invalid target user id": {
			target:         "/my-statistics?target_user_id=abc",
			session:        &auth.Session{UserID: 1},
			expectedStatus: http.StatusBadRequest,
		},
		"forbidden": {
			target:  "/my-statistics?target_user_id=2",
			session: &auth.Session{UserID: 1},
			prepare: func(mocks assemblerMocks) {
				mocks.directory.EXPECT().
					ResolveTarget(gomock.Any(), 1, 2).
					Return(nil, users.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
		"target not found": {
			target:  "/my-statistics?target_user_id=55",
			session: &auth.Session{UserID: 1, Role: "coach"},
			prepare: func(mocks assemblerMocks) {
				mocks.directory.EXPECT().
					ResolveTarget(gomock.Any(), 1, 55).
					Return(nil, users.ErrUserNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for caseName, testCase := range testCases {
		t.Run(caseName, func(t *testing.T) {
			router, mocks, _ := newTestHandler(t)
			if testCase.prepare != nil {
				testCase.prepare(mocks)
			}

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, statsRequest(testCase.target, testCase.session))
			assert.Equal(t, testCase.expectedStatus, rr.Code)
		})
	}
}

func TestHandler_TrackChanges(t *testing.T) {
	router, mocks, _ := newTestHandler(t)

	mocks.directory.EXPECT().
		ResolveTarget(gomock.Any(), 1, 0).
		Return(testTarget(), nil)
	mocks.healthStats.EXPECT().
		ListInRange(gomock.Any(), 1, gomock.Any(), gomock.Any()).
		Return([]health.HealthStat{
			{ID: 1, UserID: 1, Date: day(2023, time.March, 1), Weight: floatPtr(70.0)},
			{ID: 2, UserID: 1, Date: day(2023, time.September, 1), Weight: floatPtr(72.5)},
		}, nil)

	req := statsRequest("/healthstats/track-changes?period=yearly&year=2023", &auth.Session{UserID: 1})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var report map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, "2023", report["year"])

	changes, ok := report["changes"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2.5, changes["weight_change"])
	assert.Nil(t, changes["height_change"])

	firstRecord, ok := report["first_record"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2023-03-01", firstRecord["date"])

	lastRecord, ok := report["last_record"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), lastRecord["id"])
}
