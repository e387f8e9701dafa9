package workouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/mtrann/healthtrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrExerciseNotFound    = errors.New("exercise not found")
	ErrMuscleGroupNotFound = errors.New("muscle group not found")
)

type ExercisesRepo struct {
	db *pgxpool.Pool
}

func NewExercisesRepo(db *pgxpool.Pool) *ExercisesRepo {
	return &ExercisesRepo{
		db: db,
	}
}

func (r *ExercisesRepo) AddMuscleGroup(ctx context.Context, group *MuscleGroup) (_ *MuscleGroup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addMuscleGroup")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO muscle_group (name, description) VALUES ($1, $2) RETURNING id;`,
		group.Name, group.Description,
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

	if err := rows.Scan(&group.ID); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	return group, nil
}

func (r *ExercisesRepo) ListMuscleGroups(ctx context.Context) (_ []MuscleGroup, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listMuscleGroups")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, description FROM muscle_group ORDER BY name;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	var groups []MuscleGroup
	for rows.Next() {
		var group MuscleGroup
		if err := rows.Scan(&group.ID, &group.Name, &group.Description); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (r *ExercisesRepo) DeleteMuscleGroup(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteMuscleGroup")
	span.SetAttributes(attribute.Int("id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `DELETE FROM muscle_group WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMuscleGroupNotFound
	}
	return nil
}

func (r *ExercisesRepo) Add(ctx context.Context, exercise *Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addExercise")
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
		`INSERT INTO exercise (name, description, duration, calories_burned)
			VALUES ($1, $2, $3, $4) RETURNING id;`,
		exercise.Name, exercise.Description, exercise.Duration, exercise.CaloriesBurned,
	).Scan(&exercise.ID); err != nil {
		return nil, err
	}

	for _, groupID := range exercise.MuscleGroupIDs {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO exercise_muscle_group (exercise_id, muscle_group_id) VALUES ($1, $2);`,
			exercise.ID, groupID,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return exercise, nil
}

func (r *ExercisesRepo) Get(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getExercise")
	span.SetAttributes(attribute.Int("id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	exercises, err := r.queryExercises(ctx, `WHERE e.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(exercises) != 1 {
		return nil, ErrExerciseNotFound
	}
	return &exercises[0], nil
}

func (r *ExercisesRepo) List(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listExercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.queryExercises(ctx, ``)
}

// GetByIDs returns the exercises for the given ids; unknown ids are
// reported as ErrExerciseNotFound.
func (r *ExercisesRepo) GetByIDs(ctx context.Context, ids []int) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getExercisesByIds")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if len(ids) == 0 {
		return nil, nil
	}

	exercises, err := r.queryExercises(ctx, `WHERE e.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	if len(exercises) != len(ids) {
		return nil, ErrExerciseNotFound
	}
	return exercises, nil
}

func (r *ExercisesRepo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteExercise")
	span.SetAttributes(attribute.Int("id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `DELETE FROM exercise WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func (r *ExercisesRepo) queryExercises(ctx context.Context, where string, args ...interface{}) ([]Exercise, error) {
	query := fmt.Sprintf(`
		SELECT
			e.id, e.name, e.description, e.duration, e.calories_burned,
			COALESCE(array_agg(emg.muscle_group_id) FILTER (WHERE emg.muscle_group_id IS NOT NULL), '{}')
		FROM exercise e
		LEFT JOIN exercise_muscle_group emg ON emg.exercise_id = e.id
		%s
		GROUP BY e.id
		ORDER BY e.id;`, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rows2exercises(rows)
}

func rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	var exercises []Exercise
	for rows.Next() {
		var exercise Exercise
		if err := rows.Scan(
			&exercise.ID, &exercise.Name, &exercise.Description,
			&exercise.Duration, &exercise.CaloriesBurned, &exercise.MuscleGroupIDs,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		exercises = append(exercises, exercise)
	}
	return exercises, nil
}
