package health

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
	"github.com/mtrann/healthtrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const defaultListLimit = 100

type handlerRepo interface {
	Add(ctx context.Context, stat *HealthStat) (*HealthStat, error)
	Get(ctx context.Context, id, userID int) (*HealthStat, error)
	List(ctx context.Context, userID, limit int) ([]HealthStat, error)
	Update(ctx context.Context, stat *HealthStat) error
	Delete(ctx context.Context, id, userID int) error
}

type Handler struct {
	repo    handlerRepo
	metrics *metrics.Manager
}

func NewHandler(repo handlerRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	statsRouter := mainRouter.PathPrefix("/healthstats").Subrouter()
	statsRouter.HandleFunc("", handler.handleAdd).Methods("POST", "OPTIONS").Name("add-healthstat")
	statsRouter.HandleFunc("", handler.handleList).Methods("GET", "OPTIONS").Name("list-healthstats")
	statsRouter.HandleFunc("/{id}", handler.handleGet).Methods("GET", "OPTIONS").Name("get-healthstat")
	statsRouter.HandleFunc("/{id}", handler.handleUpdate).Methods("PUT", "OPTIONS").Name("update-healthstat")
	statsRouter.HandleFunc("/{id}", handler.handleDelete).Methods("DELETE", "OPTIONS").Name("delete-healthstat")
	statsRouter.Use(middleware.Cors())
}

type statRequest struct {
	Date        string   `json:"date"`
	Weight      *float64 `json:"weight"`
	Height      *float64 `json:"height"`
	WaterIntake *float64 `json:"waterIntake"`
	StepCount   *int     `json:"stepCount"`
	HeartRate   *int     `json:"heartRate"`
}

func (req *statRequest) toStat(userID int) (*HealthStat, error) {
	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		return nil, errors.New("invalid date")
	}

	stat := &HealthStat{
		UserID:      userID,
		Date:        date,
		Weight:      req.Weight,
		Height:      req.Height,
		WaterIntake: req.WaterIntake,
		StepCount:   req.StepCount,
		HeartRate:   req.HeartRate,
		CreatedAt:   time.Now(),
	}
	stat.ComputeBMI()
	return stat, nil
}

func (handler *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "healthstatsHandler.add")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	var req statRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("add health stat, unmarshal json params: %s", err)
		http.Error(w, "add failed", http.StatusBadRequest)
		return
	}

	stat, err := req.toStat(session.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := handler.repo.Add(ctx, stat)
	if err != nil {
		log.Errorf("add health stat for user %d: %s", session.UserID, err)
		http.Error(w, "add failed", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("stat.id", added.ID))
	handler.metrics.CounterHealthStats.Inc()

	handler.writeStat(w, added, http.StatusCreated)
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "healthstatsHandler.list")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	limit := defaultListLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	stats, err := handler.repo.List(ctx, session.UserID, limit)
	if err != nil {
		log.Errorf("list health stats for user %d: %s", session.UserID, err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if stats == nil {
		stats = []HealthStat{}
	}

	statsJson, err := json.Marshal(stats)
	if err != nil {
		log.Errorf("list health stats, marshal: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, statsJson)
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "healthstatsHandler.get")
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
	span.SetAttributes(attribute.Int("stat.id", id))

	stat, err := handler.repo.Get(ctx, id, session.UserID)
	if err != nil {
		if errors.Is(err, ErrHealthStatNotFound) {
			http.Error(w, "health stat not found", http.StatusNotFound)
			return
		}
		log.Errorf("get health stat %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	handler.writeStat(w, stat, http.StatusOK)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "healthstatsHandler.update")
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
	span.SetAttributes(attribute.Int("stat.id", id))

	var req statRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "update failed", http.StatusBadRequest)
		return
	}

	stat, err := req.toStat(session.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stat.ID = id

	if err := handler.repo.Update(ctx, stat); err != nil {
		if errors.Is(err, ErrHealthStatNotFound) {
			http.Error(w, "health stat not found", http.StatusNotFound)
			return
		}
		log.Errorf("update health stat %d: %s", id, err)
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}

	handler.writeStat(w, stat, http.StatusOK)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "healthstatsHandler.delete")
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
	span.SetAttributes(attribute.Int("stat.id", id))

	if err := handler.repo.Delete(ctx, id, session.UserID); err != nil {
		if errors.Is(err, ErrHealthStatNotFound) {
			http.Error(w, "health stat not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete health stat %d: %s", id, err)
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func (handler *Handler) writeStat(w http.ResponseWriter, stat *HealthStat, statusCode int) {
	statJson, err := json.Marshal(stat)
	if err != nil {
		log.Errorf("marshal health stat %d: %s", stat.ID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, statJson, statusCode)
}
