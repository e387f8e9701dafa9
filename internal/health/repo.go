package health

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

var ErrHealthStatNotFound = errors.New("health stat not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, stat *HealthStat) (_ *HealthStat, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.healthstats.add")
	span.SetAttributes(attribute.Int("user.id", stat.UserID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO health_stat
				(user_id, date, weight, height, bmi, water_intake, step_count, heart_rate, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id;`,
		stat.UserID, stat.Date, stat.Weight, stat.Height, stat.BMI,
		stat.WaterIntake, stat.StepCount, stat.HeartRate, stat.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	stat.ID = id
	return stat, nil
}

func (r *Repo) Get(ctx context.Context, id, userID int) (_ *HealthStat, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.healthstats.get")
	span.SetAttributes(attribute.Int("id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_id, date, weight, height, bmi, water_intake, step_count, heart_rate, created_at
			FROM health_stat
			WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats, err := r.rows2stats(rows)
	if err != nil {
		return nil, err
	}

	if len(stats) != 1 {
		return nil, ErrHealthStatNotFound
	}

	return &stats[0], nil
}

// ListInRange returns the user's snapshots with date in [from, to),
// ordered by date then id, oldest first.
func (r *Repo) ListInRange(ctx context.Context, userID int, from, to time.Time) (_ []HealthStat, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.healthstats.listInRange")
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.String("from", from.Format(time.DateOnly)))
	span.SetAttributes(attribute.String("to", to.Format(time.DateOnly)))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_id, date, weight, height, bmi, water_intake, step_count, heart_rate, created_at
			FROM health_stat
			WHERE user_id = $1 AND date >= $2 AND date < $3
			ORDER BY date, id;`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.rows2stats(rows)
}

func (r *Repo) List(ctx context.Context, userID, limit int) (_ []HealthStat, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.healthstats.list")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_id, date, weight, height, bmi, water_intake, step_count, heart_rate, created_at
			FROM health_stat
			WHERE user_id = $1
			ORDER BY date DESC, id DESC
			LIMIT $2;`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.rows2stats(rows)
}

// Latest returns the newest snapshot not younger than the given moment.
func (r *Repo) Latest(ctx context.Context, userID int, until time.Time) (_ *HealthStat, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.healthstats.latest")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_id, date, weight, height, bmi, water_intake, step_count, heart_rate, created_at
			FROM health_stat
			WHERE user_id = $1 AND date <= $2
			ORDER BY date DESC, id DESC
			LIMIT 1;`,
		userID, until,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats, err := r.rows2stats(rows)
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, ErrHealthStatNotFound
	}

	return &stats[0], nil
}

func (r *Repo) Update(ctx context.Context, stat *HealthStat) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.healthstats.update")
	span.SetAttributes(attribute.Int("id", stat.ID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE health_stat SET
			date = $1, weight = $2, height = $3, bmi = $4,
			water_intake = $5, step_count = $6, heart_rate = $7
		WHERE id = $8 AND user_id = $9;`,
		stat.Date, stat.Weight, stat.Height, stat.BMI,
		stat.WaterIntake, stat.StepCount, stat.HeartRate,
		stat.ID, stat.UserID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrHealthStatNotFound
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.healthstats.delete")
	span.SetAttributes(attribute.Int("id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM health_stat WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrHealthStatNotFound
	}
	return nil
}

func (r *Repo) rows2stats(rows pgx.Rows) ([]HealthStat, error) {
	var stats []HealthStat
	for rows.Next() {
		var stat HealthStat
		if err := rows.Scan(
			&stat.ID, &stat.UserID, &stat.Date, &stat.Weight, &stat.Height,
			&stat.BMI, &stat.WaterIntake, &stat.StepCount, &stat.HeartRate, &stat.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		stats = append(stats, stat)
	}
	return stats, nil
}
