package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mtrann/healthtrack/internal/middleware"
	"github.com/mtrann/healthtrack/internal/telemetry/metrics"
	"github.com/mtrann/healthtrack/internal/telemetry/tracing"
	"github.com/mtrann/healthtrack/internal/users"
	"github.com/mtrann/healthtrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const defaultSessionsLimit = 50

type sessionsService interface {
	CreateSession(ctx context.Context, session *Session) (*Session, error)
	GetSession(ctx context.Context, id, userID int) (*Session, error)
	ListSessions(ctx context.Context, userID, limit int) ([]Session, error)
	UpdateSession(ctx context.Context, session *Session) error
	DeleteSession(ctx context.Context, id, userID int) error
}

type exercisesRepo interface {
	Add(ctx context.Context, exercise *Exercise) (*Exercise, error)
	Get(ctx context.Context, id int) (*Exercise, error)
	List(ctx context.Context) ([]Exercise, error)
	Delete(ctx context.Context, id int) error
	AddMuscleGroup(ctx context.Context, group *MuscleGroup) (*MuscleGroup, error)
	ListMuscleGroups(ctx context.Context) ([]MuscleGroup, error)
	DeleteMuscleGroup(ctx context.Context, id int) error
}

type Handler struct {
	service   sessionsService
	exercises exercisesRepo
	metrics   *metrics.Manager
}

func NewHandler(service sessionsService, exercises exercisesRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:   service,
		exercises: exercises,
		metrics:   metricsManager,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	workoutsRouter := mainRouter.PathPrefix("/workouts").Subrouter()
	workoutsRouter.HandleFunc("", handler.handleAddSession).Methods("POST", "OPTIONS").Name("add-workout")
	workoutsRouter.HandleFunc("", handler.handleListSessions).Methods("GET", "OPTIONS").Name("list-workouts")
	workoutsRouter.HandleFunc("/{id}", handler.handleGetSession).Methods("GET", "OPTIONS").Name("get-workout")
	workoutsRouter.HandleFunc("/{id}", handler.handleUpdateSession).Methods("PUT", "OPTIONS").Name("update-workout")
	workoutsRouter.HandleFunc("/{id}", handler.handleDeleteSession).Methods("DELETE", "OPTIONS").Name("delete-workout")
	workoutsRouter.Use(middleware.Cors())

	exercisesRouter := mainRouter.PathPrefix("/exercises").Subrouter()
	exercisesRouter.HandleFunc("", handler.handleAddExercise).Methods("POST", "OPTIONS").Name("add-exercise")
	exercisesRouter.HandleFunc("", handler.handleListExercises).Methods("GET", "OPTIONS").Name("list-exercises")
	exercisesRouter.HandleFunc("/{id}", handler.handleGetExercise).Methods("GET", "OPTIONS").Name("get-exercise")
	exercisesRouter.HandleFunc("/{id}", handler.handleDeleteExercise).Methods("DELETE", "OPTIONS").Name("delete-exercise")
	exercisesRouter.Use(middleware.Cors())

	muscleGroupsRouter := mainRouter.PathPrefix("/musclegroups").Subrouter()
	muscleGroupsRouter.HandleFunc("", handler.handleAddMuscleGroup).Methods("POST", "OPTIONS").Name("add-musclegroup")
	muscleGroupsRouter.HandleFunc("", handler.handleListMuscleGroups).Methods("GET", "OPTIONS").Name("list-musclegroups")
	muscleGroupsRouter.HandleFunc("/{id}", handler.handleDeleteMuscleGroup).Methods("DELETE", "OPTIONS").Name("delete-musclegroup")
	muscleGroupsRouter.Use(middleware.Cors())
}

type sessionRequest struct {
	Name        string `json:"name"`
	Schedule    string `json:"schedule"`
	ExerciseIDs []int  `json:"exerciseIds"`
}

func (req *sessionRequest) toSession(userID int) (*Session, error) {
	schedule, err := time.Parse(time.RFC3339, req.Schedule)
	if err != nil {
		return nil, errors.New("invalid schedule")
	}
	return &Session{
		UserID:      userID,
		Name:        req.Name,
		Schedule:    schedule,
		ExerciseIDs: req.ExerciseIDs,
	}, nil
}

func (handler *Handler) handleAddSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.addSession")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("add workout session, unmarshal json params: %s", err)
		http.Error(w, "add failed", http.StatusBadRequest)
		return
	}

	workoutSession, err := req.toSession(session.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := handler.service.CreateSession(ctx, workoutSession)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "unknown exercise", http.StatusBadRequest)
			return
		}
		log.Errorf("add workout session for user %d: %s", session.UserID, err)
		http.Error(w, "add failed", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("session.id", added.ID))
	handler.metrics.CounterWorkoutSessions.Inc()

	handler.writeJson(w, added, http.StatusCreated)
}

func (handler *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.listSessions")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	limit := defaultSessionsLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	sessions, err := handler.service.ListSessions(ctx, session.UserID, limit)
	if err != nil {
		log.Errorf("list workout sessions for user %d: %s", session.UserID, err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []Session{}
	}

	handler.writeJson(w, sessions, http.StatusOK)
}

func (handler *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.getSession")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("session.id", id))

	workoutSession, err := handler.service.GetSession(ctx, id, session.UserID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "workout session not found", http.StatusNotFound)
			return
		}
		log.Errorf("get workout session %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	handler.writeJson(w, workoutSession, http.StatusOK)
}

func (handler *Handler) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.updateSession")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("session.id", id))

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "update failed", http.StatusBadRequest)
		return
	}

	workoutSession, err := req.toSession(session.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	workoutSession.ID = id

	if err := handler.service.UpdateSession(ctx, workoutSession); err != nil {
		switch {
		case errors.Is(err, ErrSessionNotFound):
			http.Error(w, "workout session not found", http.StatusNotFound)
		case errors.Is(err, ErrExerciseNotFound):
			http.Error(w, "unknown exercise", http.StatusBadRequest)
		default:
			log.Errorf("update workout session %d: %s", id, err)
			http.Error(w, "update failed", http.StatusInternalServerError)
		}
		return
	}

	handler.writeJson(w, workoutSession, http.StatusOK)
}

func (handler *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.deleteSession")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("session.id", id))

	if err := handler.service.DeleteSession(ctx, id, session.UserID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			http.Error(w, "workout session not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete workout session %d: %s", id, err)
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func (handler *Handler) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.addExercise")
	defer span.End()

	if !handler.requireAdmin(w, r) {
		return
	}

	var exercise Exercise
	if err := json.NewDecoder(r.Body).Decode(&exercise); err != nil {
		http.Error(w, "add failed", http.StatusBadRequest)
		return
	}
	if exercise.Name == "" {
		http.Error(w, "error, name empty", http.StatusBadRequest)
		return
	}

	added, err := handler.exercises.Add(ctx, &exercise)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			http.Error(w, "unknown muscle group", http.StatusBadRequest)
			return
		}
		log.Errorf("add exercise: %s", err)
		http.Error(w, "add failed", http.StatusInternalServerError)
		return
	}

	handler.writeJson(w, added, http.StatusCreated)
}

func (handler *Handler) handleListExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.listExercises")
	defer span.End()

	exercises, err := handler.exercises.List(ctx)
	if err != nil {
		log.Errorf("list exercises: %s", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if exercises == nil {
		exercises = []Exercise{}
	}

	handler.writeJson(w, exercises, http.StatusOK)
}

func (handler *Handler) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.getExercise")
	defer span.End()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	exercise, err := handler.exercises.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("get exercise %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	handler.writeJson(w, exercise, http.StatusOK)
}

func (handler *Handler) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.deleteExercise")
	defer span.End()

	if !handler.requireAdmin(w, r) {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := handler.exercises.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			http.Error(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete exercise %d: %s", id, err)
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func (handler *Handler) handleAddMuscleGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.addMuscleGroup")
	defer span.End()

	if !handler.requireAdmin(w, r) {
		return
	}

	var group MuscleGroup
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		http.Error(w, "add failed", http.StatusBadRequest)
		return
	}
	if group.Name == "" {
		http.Error(w, "error, name empty", http.StatusBadRequest)
		return
	}

	added, err := handler.exercises.AddMuscleGroup(ctx, &group)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			http.Error(w, "error, muscle group exists", http.StatusConflict)
			return
		}
		log.Errorf("add muscle group: %s", err)
		http.Error(w, "add failed", http.StatusInternalServerError)
		return
	}

	handler.writeJson(w, added, http.StatusCreated)
}

func (handler *Handler) handleListMuscleGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.listMuscleGroups")
	defer span.End()

	groups, err := handler.exercises.ListMuscleGroups(ctx)
	if err != nil {
		log.Errorf("list muscle groups: %s", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if groups == nil {
		groups = []MuscleGroup{}
	}

	handler.writeJson(w, groups, http.StatusOK)
}

func (handler *Handler) handleDeleteMuscleGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "workoutsHandler.deleteMuscleGroup")
	defer span.End()

	if !handler.requireAdmin(w, r) {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := handler.exercises.DeleteMuscleGroup(ctx, id); err != nil {
		if errors.Is(err, ErrMuscleGroupNotFound) {
			http.Error(w, "muscle group not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete muscle group %d: %s", id, err)
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

// requireAdmin writes the error response itself and reports whether the
// request may proceed. Exercise and muscle group catalogs are shared, so
// only admins may change them.
func (handler *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return false
	}
	if session.Role != string(users.RoleAdmin) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func (handler *Handler) writeJson(w http.ResponseWriter, payload interface{}, statusCode int) {
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, payloadJson, statusCode)
}

var _ sessionsService = (*Service)(nil)
var _ exercisesRepo = (*ExercisesRepo)(nil)
