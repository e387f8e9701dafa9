package nutrition

import (
	"context"
	"sort"
)

type repoMock struct {
	foodItems map[int]*FoodItem
	meals     map[int]*Meal
	plans     map[int]*Plan
	goals     map[int]*Goal
	nextID    int
}

func NewMockNutritionRepo() *repoMock {
	return &repoMock{
		foodItems: make(map[int]*FoodItem),
		meals:     make(map[int]*Meal),
		plans:     make(map[int]*Plan),
		goals:     make(map[int]*Goal),
		nextID:    1,
	}
}

func (r *repoMock) id() int {
	id := r.nextID
	r.nextID++
	return id
}

func (r *repoMock) AddFoodItem(_ context.Context, item *FoodItem) (*FoodItem, error) {
	item.ID = r.id()
	r.foodItems[item.ID] = item
	return item, nil
}

func (r *repoMock) ListFoodItems(_ context.Context) ([]FoodItem, error) {
	var items []FoodItem
	for _, item := range r.foodItems {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (r *repoMock) FoodItemsForMeals(_ context.Context, mealIDs []int) ([]FoodItem, error) {
	// duplicates count twice, like the sql join does
	var items []FoodItem
	for _, mealID := range mealIDs {
		meal, ok := r.meals[mealID]
		if !ok {
			return nil, ErrMealNotFound
		}
		for _, itemID := range meal.FoodItemIDs {
			item, ok := r.foodItems[itemID]
			if !ok {
				return nil, ErrFoodItemNotFound
			}
			items = append(items, *item)
		}
	}
	return items, nil
}

func (r *repoMock) AddMeal(_ context.Context, meal *Meal) (*Meal, error) {
	for _, itemID := range meal.FoodItemIDs {
		if _, ok := r.foodItems[itemID]; !ok {
			return nil, ErrFoodItemNotFound
		}
	}
	meal.ID = r.id()
	r.meals[meal.ID] = meal
	return meal, nil
}

func (r *repoMock) ListMeals(_ context.Context) ([]Meal, error) {
	var meals []Meal
	for _, meal := range r.meals {
		meals = append(meals, *meal)
	}
	sort.Slice(meals, func(i, j int) bool {
		return meals[i].ID < meals[j].ID
	})
	return meals, nil
}

func (r *repoMock) AddPlan(_ context.Context, plan *Plan) (*Plan, error) {
	for _, mealID := range plan.MealIDs {
		if _, ok := r.meals[mealID]; !ok {
			return nil, ErrMealNotFound
		}
	}
	plan.ID = r.id()
	r.plans[plan.ID] = plan
	return plan, nil
}

func (r *repoMock) GetPlan(_ context.Context, id, userID int) (*Plan, error) {
	plan, ok := r.plans[id]
	if !ok || plan.UserID != userID {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

func (r *repoMock) ListPlans(_ context.Context, userID int) ([]Plan, error) {
	var plans []Plan
	for _, plan := range r.plans {
		if plan.UserID == userID {
			plans = append(plans, *plan)
		}
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].ID < plans[j].ID
	})
	return plans, nil
}

func (r *repoMock) DeletePlan(ctx context.Context, id, userID int) error {
	if _, err := r.GetPlan(ctx, id, userID); err != nil {
		return err
	}
	delete(r.plans, id)
	return nil
}

func (r *repoMock) GetGoal(_ context.Context, userID int) (*Goal, error) {
	goal, ok := r.goals[userID]
	if !ok {
		return nil, ErrGoalNotFound
	}
	return goal, nil
}

func (r *repoMock) SetGoal(_ context.Context, goal *Goal) (*Goal, error) {
	if existing, ok := r.goals[goal.UserID]; ok {
		goal.ID = existing.ID
	} else {
		goal.ID = r.id()
	}
	r.goals[goal.UserID] = goal
	return goal, nil
}
