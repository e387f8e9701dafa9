package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mtrann/healthtrack/internal/auth"
	"github.com/mtrann/healthtrack/internal/middleware"
	"github.com/mtrann/healthtrack/internal/telemetry/metrics"
	"github.com/mtrann/healthtrack/internal/telemetry/tracing"
	"github.com/mtrann/healthtrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type handlerRepo interface {
	Add(ctx context.Context, user *User) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
	Deactivate(ctx context.Context, id int) error
}

type loginService interface {
	Login(ctx context.Context, session auth.Session) (string, error)
	Logout(ctx context.Context, token string) error
}

type Handler struct {
	repo        handlerRepo
	directory   *Directory
	authService loginService
}

func NewHandler(repo handlerRepo, directory *Directory, authService loginService) *Handler {
	return &Handler{
		repo:        repo,
		directory:   directory,
		authService: authService,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	loginAllowedPerMin int,
	metricsManager *metrics.Manager,
) {
	usersRouter := mainRouter.PathPrefix("/users").Subrouter()
	usersRouter.HandleFunc("/register", handler.handleRegister).Methods("POST", "OPTIONS").Name("register")
	usersRouter.HandleFunc("/me", handler.handleGetMe).Methods("GET", "OPTIONS").Name("get-me")
	usersRouter.HandleFunc("/me", handler.handleUpdateMe).Methods("PATCH", "OPTIONS").Name("update-me")
	usersRouter.HandleFunc("/me", handler.handleDeactivateMe).Methods("DELETE", "OPTIONS").Name("deactivate-me")
	usersRouter.HandleFunc("/{id}", handler.handleGet).Methods("GET", "OPTIONS").Name("get-user")
	usersRouter.Use(middleware.Cors())

	loginRouter := mainRouter.PathPrefix("/a").Subrouter()
	loginRouter.HandleFunc("/login", handler.handleLogin).Methods("POST", "OPTIONS").Name("login")
	loginRouter.HandleFunc("/logout", handler.handleLogout).Methods("GET", "OPTIONS").Name("logout")

	// rate limit the /login and /logout endpoints to prevent abuse
	loginRouter.Use(middleware.RateLimit(rateLimiter, "login", loginAllowedPerMin, metricsManager))
	loginRouter.Use(middleware.Cors())
}

type registerRequest struct {
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Role        string   `json:"role"`
	DateOfBirth string   `json:"dateOfBirth"`
	Height      *float64 `json:"height"`
	Weight      *float64 `json:"weight"`
	HealthGoal  string   `json:"healthGoal"`
}

func (handler *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.register")
	defer span.End()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("register, unmarshal json params: %s", err)
		http.Error(w, "register failed", http.StatusBadRequest)
		return
	}

	if req.Username == "" {
		http.Error(w, "error, username empty", http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	role := Role(req.Role)
	if req.Role == "" {
		role = RoleUser
	}
	if !role.Valid() || role == RoleAdmin {
		http.Error(w, "error, invalid role", http.StatusBadRequest)
		return
	}

	healthGoal := HealthGoal(req.HealthGoal)
	if req.HealthGoal == "" {
		healthGoal = GoalMaintainHealth
	}
	if !healthGoal.Valid() {
		http.Error(w, "error, invalid health goal", http.StatusBadRequest)
		return
	}

	var dateOfBirth *time.Time
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			http.Error(w, "error, invalid date of birth", http.StatusBadRequest)
			return
		}
		dateOfBirth = &dob
	}

	passwordHash, err := pkg.HashPassword(req.Password)
	if err != nil {
		log.Errorf("register, hash password: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	user := &User{
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
		DateOfBirth:  dateOfBirth,
		Height:       req.Height,
		Weight:       req.Weight,
		HealthGoal:   healthGoal,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	added, err := handler.repo.Add(ctx, user)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			http.Error(w, "error, username or email taken", http.StatusConflict)
			return
		}
		log.Errorf("register, add user: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("user.id", added.ID))
	log.Tracef("new user registered: %s [id %d]", added.Username, added.ID)

	userJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("register, marshal user: %s", err)
		http.Error(w, "register failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, http.StatusCreated)
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.login")
	defer span.End()

	type loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var loginReq loginRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			log.Errorf("login, unmarshal json params: %s", err)
			http.Error(w, "login failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			http.Error(w, "parse form error", http.StatusInternalServerError)
			return
		}
		loginReq = loginRequest{
			Username: r.Form.Get("username"),
			Password: r.Form.Get("password"),
		}
	}

	if loginReq.Username == "" {
		http.Error(w, "error, username empty", http.StatusBadRequest)
		return
	}
	if loginReq.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.GetByUsername(ctx, loginReq.Username)
	if err != nil {
		log.Tracef("[username] failed login attempt for user: %s", loginReq.Username)
		http.Error(w, "error, wrong credentials", http.StatusBadRequest)
		return
	}

	if !pkg.CheckPasswordHash(loginReq.Password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %s", loginReq.Username)
		http.Error(w, "error, wrong credentials", http.StatusBadRequest)
		return
	}

	token, err := handler.authService.Login(ctx, auth.Session{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      string(user.Role),
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Errorf("login failed, generate token error: %s", err)
		http.Error(w, "generate token error", http.StatusInternalServerError)
		return
	}

	log.Tracef("new login success: %s", user.Username)
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"token":"%s","userId":%d,"role":"%s"}`, token, user.ID, user.Role))
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.logout")
	defer span.End()

	authToken := r.Header.Get(middleware.AuthTokenHeader)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if err := handler.authService.Logout(ctx, authToken); err != nil {
		log.Tracef("[failed logout] => %s: %s", r.URL.Path, err)
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	log.Printf("logout for [%s] success", authToken)
	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.getMe")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	user, err := handler.repo.Get(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("get me, get user %d: %s", session.UserID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	handler.writeUser(w, user)
}

type updateRequest struct {
	FirstName   *string  `json:"firstName"`
	LastName    *string  `json:"lastName"`
	Email       *string  `json:"email"`
	Password    *string  `json:"password"`
	DateOfBirth *string  `json:"dateOfBirth"`
	Height      *float64 `json:"height"`
	Weight      *float64 `json:"weight"`
	HealthGoal  *string  `json:"healthGoal"`
}

func (handler *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.updateMe")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "update failed", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.Get(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("update me, get user %d: %s", session.UserID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		passwordHash, err := pkg.HashPassword(*req.Password)
		if err != nil {
			log.Errorf("update me, hash password: %s", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		user.PasswordHash = passwordHash
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			http.Error(w, "error, invalid date of birth", http.StatusBadRequest)
			return
		}
		user.DateOfBirth = &dob
	}
	if req.Height != nil {
		user.Height = req.Height
	}
	if req.Weight != nil {
		user.Weight = req.Weight
	}
	if req.HealthGoal != nil {
		healthGoal := HealthGoal(*req.HealthGoal)
		if !healthGoal.Valid() {
			http.Error(w, "error, invalid health goal", http.StatusBadRequest)
			return
		}
		user.HealthGoal = healthGoal
	}

	if err := handler.repo.Update(ctx, user); err != nil {
		log.Errorf("update me, update user %d: %s", user.ID, err)
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}

	handler.writeUser(w, user)
}

func (handler *Handler) handleDeactivateMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.deactivateMe")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	if err := handler.repo.Deactivate(ctx, session.UserID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("deactivate user %d: %s", session.UserID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d deactivated", session.UserID)
	pkg.WriteTextResponseOK(w, "deactivated")
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.get")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "error, invalid user id", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("user.id", id))

	user, err := handler.directory.ResolveTarget(ctx, session.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, ErrUserNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		default:
			log.Errorf("get user %d: %s", id, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	handler.writeUser(w, user)
}

func (handler *Handler) writeUser(w http.ResponseWriter, user *User) {
	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("marshal user %d: %s", user.ID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, userJson)
}
