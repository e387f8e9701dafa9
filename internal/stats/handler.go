package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mtrann/healthtrack/internal/middleware"
	"github.com/mtrann/healthtrack/internal/telemetry/metrics"
	"github.com/mtrann/healthtrack/internal/telemetry/tracing"
	"github.com/mtrann/healthtrack/internal/users"
	"github.com/mtrann/healthtrack/pkg"

	"github.com/coocood/freecache"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const reportCacheExpireSeconds = 5 * 60

type statsAssembler interface {
	Assemble(ctx context.Context, params AssembleParams) (*Report, error)
	TrackChanges(ctx context.Context, params AssembleParams) (*ChangesReport, error)
}

var _ statsAssembler = (*Assembler)(nil)

type Handler struct {
	assembler statsAssembler
	cache     *freecache.Cache
	metrics   *metrics.Manager
	now       func() time.Time
}

func NewHandler(assembler statsAssembler, cache *freecache.Cache, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		assembler: assembler,
		cache:     cache,
		metrics:   metricsManager,
		now:       time.Now,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	statsRouter := mainRouter.NewRoute().Subrouter()
	statsRouter.HandleFunc("/my-statistics", handler.handleStatistics).
		Methods("GET", "OPTIONS").Name("my-statistics")
	statsRouter.HandleFunc("/healthstats/track-changes", handler.handleTrackChanges).
		Methods("GET", "OPTIONS").Name("track-changes")
	statsRouter.Use(middleware.Cors())
}

func (handler *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "statsHandler.statistics")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	params, err := paramsFromRequest(r, session.UserID, handler.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.String("stats.period", string(params.Period)),
		attribute.Int("stats.target", params.TargetUserID),
	)

	cacheKey := []byte(fmt.Sprintf(
		"stats::%d::%d::%s::%s::%s",
		session.UserID, params.TargetUserID,
		params.Period, params.Selector, params.Today.Format(time.DateOnly),
	))
	if cached, err := handler.cache.Get(cacheKey); err == nil {
		log.Tracef("statistics for user %d found in cache", session.UserID)
		pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
		return
	}

	handler.metrics.CounterStatisticsRequests.WithLabelValues(string(params.Period)).Inc()

	startedAt := time.Now()
	report, err := handler.assembler.Assemble(ctx, params)
	if err != nil {
		handler.writeAssembleError(w, session.UserID, err)
		return
	}
	handler.metrics.HistStatisticsDuration.Observe(time.Since(startedAt).Seconds())

	reportJson, err := json.Marshal(report)
	if err != nil {
		log.Errorf("statistics for user %d, marshal: %s", session.UserID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := handler.cache.Set(cacheKey, reportJson, reportCacheExpireSeconds); err != nil {
		log.Errorf("failed to write statistics cache for user %d: %s", session.UserID, err)
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, reportJson)
}

func (handler *Handler) handleTrackChanges(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "statsHandler.trackChanges")
	defer span.End()

	session := middleware.SessionFromRequest(r)
	if session == nil {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	params, err := paramsFromRequest(r, session.UserID, handler.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("stats.period", string(params.Period)))

	report, err := handler.assembler.TrackChanges(ctx, params)
	if err != nil {
		handler.writeAssembleError(w, session.UserID, err)
		return
	}

	reportJson, err := json.Marshal(report)
	if err != nil {
		log.Errorf("track changes for user %d, marshal: %s", session.UserID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, reportJson)
}

func (handler *Handler) writeAssembleError(w http.ResponseWriter, userID int, err error) {
	switch {
	case errors.Is(err, ErrInvalidPeriod), errors.Is(err, ErrInvalidSelector):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, users.ErrForbidden):
		http.Error(w, "no can do", http.StatusForbidden)
	case errors.Is(err, users.ErrUserNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	default:
		log.Errorf("assemble statistics for user %d: %s", userID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func paramsFromRequest(r *http.Request, viewerID int, now time.Time) (AssembleParams, error) {
	query := r.URL.Query()

	period := Period(query.Get("period"))
	if period == "" {
		period = PeriodWeekly
	}

	var selector string
	switch period {
	case PeriodWeekly:
		selector = query.Get("week")
	case PeriodMonthly:
		selector = query.Get("month")
	case PeriodYearly:
		selector = query.Get("year")
	default:
		return AssembleParams{}, fmt.Errorf("invalid period: %q", period)
	}

	targetUserID := 0
	if targetParam := query.Get("target_user_id"); targetParam != "" {
		parsed, err := strconv.Atoi(targetParam)
		if err != nil || parsed <= 0 {
			return AssembleParams{}, errors.New("invalid target_user_id")
		}
		targetUserID = parsed
	}

	return AssembleParams{
		ViewerID:     viewerID,
		TargetUserID: targetUserID,
		Period:       period,
		Selector:     selector,
		Today:        now,
	}, nil
}
