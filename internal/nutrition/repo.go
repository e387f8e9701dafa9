package nutrition

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
	ErrFoodItemNotFound = errors.New("food item not found")
	ErrMealNotFound     = errors.New("meal not found")
	ErrPlanNotFound     = errors.New("nutrition plan not found")
	ErrGoalNotFound     = errors.New("nutrition goal not found")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) AddFoodItem(ctx context.Context, item *FoodItem) (_ *FoodItem, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.addFoodItem")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO food_item (name, calories, protein, carbs, fats, quantities)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`,
		item.Name, item.Calories, item.Protein, item.Carbs, item.Fats, item.Quantities,
	).Scan(&item.ID); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *Repo) ListFoodItems(ctx context.Context) (_ []FoodItem, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.listFoodItems")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, calories, protein, carbs, fats, quantities FROM food_item ORDER BY name;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rows2foodItems(rows)
}

// FoodItemsForMeals resolves the food items of all the given meals,
// duplicates included: a food item appearing in two meals counts twice.
func (r *Repo) FoodItemsForMeals(ctx context.Context, mealIDs []int) (_ []FoodItem, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.foodItemsForMeals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if len(mealIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT fi.id, fi.name, fi.calories, fi.protein, fi.carbs, fi.fats, fi.quantities
			FROM meal_food_item mfi
			JOIN food_item fi ON fi.id = mfi.food_item_id
			WHERE mfi.meal_id = ANY($1)
			ORDER BY mfi.meal_id, fi.id;`,
		mealIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rows2foodItems(rows)
}

func (r *Repo) AddMeal(ctx context.Context, meal *Meal) (_ *Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.addMeal")
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
		`INSERT INTO meal (name) VALUES ($1) RETURNING id;`,
		meal.Name,
	).Scan(&meal.ID); err != nil {
		return nil, err
	}

	for _, itemID := range meal.FoodItemIDs {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO meal_food_item (meal_id, food_item_id) VALUES ($1, $2);`,
			meal.ID, itemID,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return meal, nil
}

func (r *Repo) ListMeals(ctx context.Context) (_ []Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.listMeals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				m.id, m.name,
				COALESCE(array_agg(mfi.food_item_id) FILTER (WHERE mfi.food_item_id IS NOT NULL), '{}')
			FROM meal m
			LEFT JOIN meal_food_item mfi ON mfi.meal_id = m.id
			GROUP BY m.id
			ORDER BY m.id;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	var meals []Meal
	for rows.Next() {
		var meal Meal
		if err := rows.Scan(&meal.ID, &meal.Name, &meal.FoodItemIDs); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		meals = append(meals, meal)
	}
	return meals, nil
}

func (r *Repo) AddPlan(ctx context.Context, plan *Plan) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.addPlan")
	span.SetAttributes(attribute.Int("user.id", plan.UserID))
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
		`INSERT INTO nutrition_plan (user_id, name, created_at) VALUES ($1, $2, $3) RETURNING id;`,
		plan.UserID, plan.Name, plan.CreatedAt,
	).Scan(&plan.ID); err != nil {
		return nil, err
	}

	for _, mealID := range plan.MealIDs {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO nutrition_plan_meal (nutrition_plan_id, meal_id) VALUES ($1, $2);`,
			plan.ID, mealID,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *Repo) GetPlan(ctx context.Context, id, userID int) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.getPlan")
	span.SetAttributes(attribute.Int("id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	plans, err := r.queryPlans(ctx, `WHERE np.id = $1 AND np.user_id = $2`, id, userID)
	if err != nil {
		return nil, err
	}
	if len(plans) != 1 {
		return nil, ErrPlanNotFound
	}
	return &plans[0], nil
}

func (r *Repo) ListPlans(ctx context.Context, userID int) (_ []Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.listPlans")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.queryPlans(ctx, `WHERE np.user_id = $1`, userID)
}

func (r *Repo) DeletePlan(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.deletePlan")
	span.SetAttributes(attribute.Int("id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM nutrition_plan WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func (r *Repo) GetGoal(ctx context.Context, userID int) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.getGoal")
	span.SetAttributes(attribute.Int("user.id", userID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var goal Goal
	if err := r.db.QueryRow(
		ctx,
		`SELECT id, user_id, calories, protein, carbs, fats, updated_at
			FROM nutrition_goal WHERE user_id = $1;`,
		userID,
	).Scan(
		&goal.ID, &goal.UserID, &goal.Calories,
		&goal.Protein, &goal.Carbs, &goal.Fats, &goal.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return &goal, nil
}

func (r *Repo) SetGoal(ctx context.Context, goal *Goal) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.nutrition.setGoal")
	span.SetAttributes(attribute.Int("user.id", goal.UserID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO nutrition_goal (user_id, calories, protein, carbs, fats, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (user_id) DO UPDATE SET
				calories = EXCLUDED.calories,
				protein = EXCLUDED.protein,
				carbs = EXCLUDED.carbs,
				fats = EXCLUDED.fats,
				updated_at = EXCLUDED.updated_at
			RETURNING id;`,
		goal.UserID, goal.Calories, goal.Protein, goal.Carbs, goal.Fats, goal.UpdatedAt,
	).Scan(&goal.ID); err != nil {
		return nil, err
	}
	return goal, nil
}

func (r *Repo) queryPlans(ctx context.Context, where string, args ...interface{}) ([]Plan, error) {
	query := fmt.Sprintf(`
		SELECT
			np.id, np.user_id, np.name, np.created_at,
			COALESCE(array_agg(npm.meal_id) FILTER (WHERE npm.meal_id IS NOT NULL), '{}')
		FROM nutrition_plan np
		LEFT JOIN nutrition_plan_meal npm ON npm.nutrition_plan_id = np.id
		%s
		GROUP BY np.id
		ORDER BY np.id;`, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	var plans []Plan
	for rows.Next() {
		var plan Plan
		if err := rows.Scan(
			&plan.ID, &plan.UserID, &plan.Name, &plan.CreatedAt, &plan.MealIDs,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func rows2foodItems(rows pgx.Rows) ([]FoodItem, error) {
	var items []FoodItem
	for rows.Next() {
		var item FoodItem
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Calories, &item.Protein, &item.Carbs, &item.Fats, &item.Quantities,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}
