package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mtrann/healthtrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrSessionNotFound = errors.New("workout session not found")

type SessionsRepo struct {
	db *pgxpool.Pool
}

func NewSessionsRepo(db *pgxpool.Pool) *SessionsRepo {
	return &SessionsRepo{
		db: db,
	}
}

func (r *SessionsRepo) Add(ctx context.Context, session *Session) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addSession")
	span.SetAttributes(attribute.Int("user.id", session.UserID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		}
	}()

	if err := tx.QueryRow(
		ctx,
		`INSERT INTO workout_session
				(user_id, name, schedule, total_duration, total_calories_burned,
				 bpm, steps, is_active, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id;`,
		session.UserID, session.Name, session.Schedule, session.TotalDuration, session.TotalCaloriesBurned,
		session.BPM, session.Steps, session.IsActive, session.CreatedAt, session.UpdatedAt,
	).Scan(&session.ID); err != nil {
		return nil, err
	}

	if err := r.setExercisesTx(ctx, tx, session.ID, session.ExerciseIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return session, nil
}

func (r *SessionsRepo) Get(ctx context.Context, id, userID int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getSession")
	span.SetAttributes(attribute.Int("id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sessions, err := r.querySessions(
		ctx,
		`WHERE ws.id = $1 AND ws.user_id = $2 AND ws.is_active
		GROUP BY ws.id`,
		id, userID,
	)
	if err != nil {
		return nil, err
	}
	if len(sessions) != 1 {
		return nil, ErrSessionNotFound
	}
	return &sessions[0], nil
}

func (r *SessionsRepo) List(ctx context.Context, userID, limit int) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listSessions")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.querySessions(
		ctx,
		`WHERE ws.user_id = $1 AND ws.is_active
		GROUP BY ws.id
		ORDER BY ws.schedule DESC, ws.id DESC
		LIMIT $2`,
		userID, limit,
	)
}

// ListActiveInRange returns the user's active sessions whose updated_at
// falls in [from, to), ordered by updated_at then id, oldest first.
// Filtering on updated_at matters: it is the event time the statistics
// aggregation buckets by, so a session edited after its scheduled day
// must show up in the window of the edit, not of the schedule.
func (r *SessionsRepo) ListActiveInRange(ctx context.Context, userID int, from, to time.Time) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listSessionsInRange")
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.String("from", from.Format(time.DateOnly)))
	span.SetAttributes(attribute.String("to", to.Format(time.DateOnly)))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.querySessions(
		ctx,
		`WHERE ws.user_id = $1 AND ws.updated_at >= $2 AND ws.updated_at < $3 AND ws.is_active
		GROUP BY ws.id
		ORDER BY ws.updated_at, ws.id`,
		userID, from, to,
	)
}

func (r *SessionsRepo) Update(ctx context.Context, session *Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.updateSession")
	span.SetAttributes(attribute.Int("id", session.ID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		}
	}()

	tag, err := tx.Exec(
		ctx,
		`UPDATE workout_session SET
			name = $1, schedule = $2, total_duration = $3, total_calories_burned = $4,
			bpm = $5, steps = $6, updated_at = $7
		WHERE id = $8 AND user_id = $9 AND is_active;`,
		session.Name, session.Schedule, session.TotalDuration, session.TotalCaloriesBurned,
		session.BPM, session.Steps, session.UpdatedAt,
		session.ID, session.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	if _, err := tx.Exec(
		ctx,
		`DELETE FROM workout_session_exercise WHERE workout_session_id = $1;`,
		session.ID,
	); err != nil {
		return err
	}
	if err := r.setExercisesTx(ctx, tx, session.ID, session.ExerciseIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Deactivate soft-deletes the session, keeping it out of listings and
// statistics while preserving the row.
func (r *SessionsRepo) Deactivate(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deactivateSession")
	span.SetAttributes(attribute.Int("id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout_session SET is_active = FALSE, updated_at = NOW()
			WHERE id = $1 AND user_id = $2 AND is_active;`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *SessionsRepo) setExercisesTx(ctx context.Context, tx pgx.Tx, sessionID int, exerciseIDs []int) error {
	for _, exerciseID := range exerciseIDs {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO workout_session_exercise (workout_session_id, exercise_id) VALUES ($1, $2);`,
			sessionID, exerciseID,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *SessionsRepo) querySessions(ctx context.Context, where string, args ...interface{}) ([]Session, error) {
	query := fmt.Sprintf(`
		SELECT
			ws.id, ws.user_id, ws.name, ws.schedule, ws.total_duration, ws.total_calories_burned,
			ws.bpm, ws.steps, ws.is_active, ws.created_at, ws.updated_at,
			COALESCE(array_agg(wse.exercise_id) FILTER (WHERE wse.exercise_id IS NOT NULL), '{}')
		FROM workout_session ws
		LEFT JOIN workout_session_exercise wse ON wse.workout_session_id = ws.id
		%s;`, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	var sessions []Session
	for rows.Next() {
		var session Session
		if err := rows.Scan(
			&session.ID, &session.UserID, &session.Name, &session.Schedule,
			&session.TotalDuration, &session.TotalCaloriesBurned,
			&session.BPM, &session.Steps, &session.IsActive,
			&session.CreatedAt, &session.UpdatedAt, &session.ExerciseIDs,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}
