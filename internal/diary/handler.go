package diary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mtrann/healthtrack/internal/middleware"
	"github.com/mtrann/healthtrack/internal/telemetry/tracing"
	"github.com/mtrann/healthtrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type handlerRepo interface {
	Add(ctx context.Context, entry *Entry) (*Entry, error)
	Get(ctx context.Context, id, userID int) (*Entry, error)
	List(ctx context.Context, userID int) ([]Entry, error)
	Update(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, id, userID int) error
}

type Handler struct {
	repo handlerRepo
}

func NewHandler(repo handlerRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	diaryRouter := mainRouter.PathPrefix("/diary").Subrouter()
	diaryRouter.HandleFunc("", handler.handleAdd).Methods("POST", "OPTIONS").Name("add-diary-entry")
	diaryRouter.HandleFunc("", handler.handleList).Methods("GET", "OPTIONS").Name("list-diary-entries")
	diaryRouter.HandleFunc("/{id}", handler.handleGet).Methods("GET", "OPTIONS").Name("get-diary-entry")
	diaryRouter.HandleFunc("/{id}", handler.handleUpdate).Methods("PUT", "OPTIONS").Name("update-diary-entry")
	diaryRouter.HandleFunc("/{id}", handler.handleDelete).Methods("DELETE", "OPTIONS").Name("delete-diary-entry")
	diaryRouter.Use(middleware.Cors())
}

type entryRequest struct {
	WorkoutSessionID *int   `json:"workoutSessionId"`
	Name             string `json:"name"`
	Content          string `json:"content"`
}

func (handler *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "diaryHandler.add")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "add failed", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "error, content empty", http.StatusBadRequest)
		return
	}

	entry := &Entry{
		UserID:           session.UserID,
		WorkoutSessionID: req.WorkoutSessionID,
		Name:             req.Name,
		Content:          req.Content,
		CreatedAt:        time.Now(),
	}

	added, err := handler.repo.Add(ctx, entry)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			http.Error(w, "unknown workout session", http.StatusBadRequest)
			return
		}
		log.Errorf("add diary entry for user %d: %s", session.UserID, err)
		http.Error(w, "add failed", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("entry.id", added.ID))
	handler.writeEntry(w, added, http.StatusCreated)
}

func (handler *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "diaryHandler.list")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	entries, err := handler.repo.List(ctx, session.UserID)
	if err != nil {
		log.Errorf("list diary entries for user %d: %s", session.UserID, err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}

	entriesJson, err := json.Marshal(entries)
	if err != nil {
		log.Errorf("marshal diary entries: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, entriesJson)
}

func (handler *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "diaryHandler.get")
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
	span.SetAttributes(attribute.Int("entry.id", id))

	entry, err := handler.repo.Get(ctx, id, session.UserID)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			http.Error(w, "diary entry not found", http.StatusNotFound)
			return
		}
		log.Errorf("get diary entry %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	handler.writeEntry(w, entry, http.StatusOK)
}

func (handler *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "diaryHandler.update")
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
	span.SetAttributes(attribute.Int("entry.id", id))

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "update failed", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "error, content empty", http.StatusBadRequest)
		return
	}

	entry, err := handler.repo.Get(ctx, id, session.UserID)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			http.Error(w, "diary entry not found", http.StatusNotFound)
			return
		}
		log.Errorf("get diary entry %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	entry.WorkoutSessionID = req.WorkoutSessionID
	entry.Name = req.Name
	entry.Content = req.Content

	if err := handler.repo.Update(ctx, entry); err != nil {
		log.Errorf("update diary entry %d: %s", id, err)
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}

	handler.writeEntry(w, entry, http.StatusOK)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "diaryHandler.delete")
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
	span.SetAttributes(attribute.Int("entry.id", id))

	if err := handler.repo.Delete(ctx, id, session.UserID); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			http.Error(w, "diary entry not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete diary entry %d: %s", id, err)
		http.Error(w, "delete failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func (handler *Handler) writeEntry(w http.ResponseWriter, entry *Entry, statusCode int) {
	entryJson, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("marshal diary entry %d: %s", entry.ID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, statusCode)
}
