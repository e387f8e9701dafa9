package users

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
	"github.com/mtrann/healthtrack/pkg"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type loginServiceStub struct {
	sessions map[string]auth.Session
}

func newLoginServiceStub() *loginServiceStub {
	return &loginServiceStub{
		sessions: make(map[string]auth.Session),
	}
}

func (s *loginServiceStub) Login(_ context.Context, session auth.Session) (string, error) {
	token := fmt.Sprintf("token-%d", session.UserID)
	s.sessions[token] = session
	return token, nil
}

func (s *loginServiceStub) Logout(_ context.Context, token string) error {
	if _, ok := s.sessions[token]; !ok {
		return auth.ErrNoSession
	}
	delete(s.sessions, token)
	return nil
}

func newTestHandler() (*Handler, *repoMock, *loginServiceStub) {
	repo := NewMockUsersRepo()
	loginService := newLoginServiceStub()
	return NewHandler(repo, NewDirectory(repo), loginService), repo, loginService
}

func registerJson(t *testing.T, handler *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/users/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.handleRegister(rr, req)
	return rr
}

func TestHandler_Register(t *testing.T) {
	handler, repo, _ := newTestHandler()

	rr := registerJson(t, handler, `{
		"username": "mila",
		"password": "s3cret!",
		"email": "mila@example.com",
		"firstName": "Mila",
		"lastName": "M",
		"height": 1.69,
		"weight": 62.5,
		"healthGoal": "build muscle"
	}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "mila", created.Username)
	assert.Equal(t, RoleUser, created.Role)
	assert.Equal(t, GoalBuildMuscle, created.HealthGoal)

	stored, err := repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.True(t, pkg.CheckPasswordHash("s3cret!", stored.PasswordHash))

	t.Run("duplicate username", func(t *testing.T) {
		rr := registerJson(t, handler, `{"username": "mila", "password": "whatever"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		rr := registerJson(t, handler, `{"username": "nopass"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("admin role not allowed", func(t *testing.T) {
		rr := registerJson(t, handler, `{"username": "evil", "password": "pw", "role": "admin"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("expert role allowed", func(t *testing.T) {
		rr := registerJson(t, handler, `{"username": "ivy", "password": "pw", "role": "expert"}`)
		assert.Equal(t, http.StatusCreated, rr.Code)
	})
}

func TestHandler_LoginLogout(t *testing.T) {
	handler, _, _ := newTestHandler()

	rr := registerJson(t, handler, `{"username": "mila", "password": "s3cret!"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	login := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/a/login", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		handler.handleLogin(rr, req)
		return rr
	}

	t.Run("wrong password", func(t *testing.T) {
		rr := login(`{"username": "mila", "password": "nope"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rr := login(`{"username": "ghost", "password": "s3cret!"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	rr = login(`{"username": "mila", "password": "s3cret!"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var loginResp struct {
		Token  string `json:"token"`
		UserID int    `json:"userId"`
		Role   string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &loginResp))
	assert.NotEmpty(t, loginResp.Token)
	assert.Equal(t, "user", loginResp.Role)

	t.Run("logout", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/a/logout", nil)
		req.Header.Set(middleware.AuthTokenHeader, loginResp.Token)
		rr := httptest.NewRecorder()
		handler.handleLogout(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)

		// second logout with the same token fails
		rr = httptest.NewRecorder()
		handler.handleLogout(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
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

func TestHandler_MeEndpoints(t *testing.T) {
	handler, repo, _ := newTestHandler()

	user, err := repo.Add(context.Background(), &User{
		Username:   "mila",
		Role:       RoleUser,
		HealthGoal: GoalMaintainHealth,
		IsActive:   true,
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)

	t.Run("get me", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.handleGetMe(rr, requestWithSession("GET", "/users/me", "", user.ID))
		require.Equal(t, http.StatusOK, rr.Code)

		var got User
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "mila", got.Username)
	})

	t.Run("get me without session", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.handleGetMe(rr, httptest.NewRequest("GET", "/users/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("update me", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.handleUpdateMe(rr, requestWithSession(
			"PATCH", "/users/me",
			`{"firstName": "Mila", "weight": 61.2, "healthGoal": "lose weight"}`,
			user.ID,
		))
		require.Equal(t, http.StatusOK, rr.Code)

		updated, err := repo.Get(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mila", updated.FirstName)
		require.NotNil(t, updated.Weight)
		assert.InDelta(t, 61.2, *updated.Weight, 0.001)
		assert.Equal(t, GoalLoseWeight, updated.HealthGoal)
	})

	t.Run("update me invalid goal", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.handleUpdateMe(rr, requestWithSession(
			"PATCH", "/users/me", `{"healthGoal": "win olympics"}`, user.ID,
		))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("deactivate me", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.handleDeactivateMe(rr, requestWithSession("DELETE", "/users/me", "", user.ID))
		require.Equal(t, http.StatusOK, rr.Code)

		_, err := repo.Get(context.Background(), user.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestHandler_GetUser(t *testing.T) {
	handler, repo, _ := newTestHandler()

	regular, err := repo.Add(context.Background(), &User{
		Username: "mila", Role: RoleUser, HealthGoal: GoalMaintainHealth, IsActive: true,
	})
	require.NoError(t, err)
	coach, err := repo.Add(context.Background(), &User{
		Username: "drpop", Role: RoleCoach, HealthGoal: GoalMaintainHealth, IsActive: true,
	})
	require.NoError(t, err)

	getUser := func(viewerID int, targetID string) *httptest.ResponseRecorder {
		req := requestWithSession("GET", "/users/"+targetID, "", viewerID)
		req = mux.SetURLVars(req, map[string]string{"id": targetID})
		rr := httptest.NewRecorder()
		handler.handleGet(rr, req)
		return rr
	}

	t.Run("coach views regular user", func(t *testing.T) {
		rr := getUser(coach.ID, fmt.Sprintf("%d", regular.ID))
		require.Equal(t, http.StatusOK, rr.Code)

		var got User
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "mila", got.Username)
	})

	t.Run("regular user cannot view coach", func(t *testing.T) {
		rr := getUser(regular.ID, fmt.Sprintf("%d", coach.ID))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("unknown target", func(t *testing.T) {
		rr := getUser(coach.ID, "999")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		rr := getUser(coach.ID, "abc")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
