package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mtrann/healthtrack/internal/health"
	"github.com/mtrann/healthtrack/internal/telemetry/tracing"
)

//go:generate go run go.uber.org/mock/mockgen -source=$GOFILE -destination=service_mocks_test.go -package=workouts_test

type sessionsRepo interface {
	Add(ctx context.Context, session *Session) (*Session, error)
	Get(ctx context.Context, id, userID int) (*Session, error)
	List(ctx context.Context, userID, limit int) ([]Session, error)
	Update(ctx context.Context, session *Session) error
	Deactivate(ctx context.Context, id, userID int) error
}

type exercisesGetter interface {
	GetByIDs(ctx context.Context, ids []int) ([]Exercise, error)
}

type latestHealthStatGetter interface {
	Latest(ctx context.Context, userID int, until time.Time) (*health.HealthStat, error)
}

// Service keeps workout sessions consistent with their exercises: the
// session totals are always recomputed from the linked exercises, and
// heart rate / steps are copied from the freshest health snapshot.
type Service struct {
	sessions    sessionsRepo
	exercises   exercisesGetter
	healthStats latestHealthStatGetter
}

func NewService(
	sessions sessionsRepo,
	exercises exercisesGetter,
	healthStats latestHealthStatGetter,
) *Service {
	return &Service{
		sessions:    sessions,
		exercises:   exercises,
		healthStats: healthStats,
	}
}

func (s *Service) CreateSession(ctx context.Context, session *Session) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.createSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	now := time.Now()
	session.IsActive = true
	session.CreatedAt = now
	session.UpdatedAt = now

	if err := s.syncDerivedFields(ctx, session); err != nil {
		return nil, err
	}

	return s.sessions.Add(ctx, session)
}

func (s *Service) UpdateSession(ctx context.Context, session *Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.updateSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	session.UpdatedAt = time.Now()

	if err := s.syncDerivedFields(ctx, session); err != nil {
		return err
	}

	return s.sessions.Update(ctx, session)
}

func (s *Service) GetSession(ctx context.Context, id, userID int) (*Session, error) {
	return s.sessions.Get(ctx, id, userID)
}

func (s *Service) ListSessions(ctx context.Context, userID, limit int) ([]Session, error) {
	return s.sessions.List(ctx, userID, limit)
}

func (s *Service) DeleteSession(ctx context.Context, id, userID int) error {
	return s.sessions.Deactivate(ctx, id, userID)
}

func (s *Service) syncDerivedFields(ctx context.Context, session *Session) error {
	linked, err := s.exercises.GetByIDs(ctx, session.ExerciseIDs)
	if err != nil {
		return fmt.Errorf("get session exercises: %w", err)
	}

	session.TotalDuration = 0
	session.TotalCaloriesBurned = 0
	for _, exercise := range linked {
		session.TotalDuration += exercise.Duration
		session.TotalCaloriesBurned += exercise.CaloriesBurned
	}

	session.BPM = nil
	session.Steps = nil
	latest, err := s.healthStats.Latest(ctx, session.UserID, session.Schedule)
	switch {
	case err == nil:
		session.BPM = latest.HeartRate
		session.Steps = latest.StepCount
	case errors.Is(err, health.ErrHealthStatNotFound):
		// no snapshot yet, bpm and steps stay unknown
	default:
		return fmt.Errorf("get latest health stat: %w", err)
	}

	return nil
}
