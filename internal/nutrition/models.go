package nutrition

import "time"

// FoodItem nutrition values are per serving: calories in kcal, the
// macros and quantities in grams.
type FoodItem struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fats       float64 `json:"fats"`
	Quantities float64 `json:"quantities"`
}

type Meal struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	FoodItemIDs []int  `json:"foodItemIds"`
}

// Goal is a user's daily nutrition target. One row per user, replaced
// on update.
type Goal struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fats      float64   `json:"fats"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Plan is a user's named collection of meals, e.g. a weekly cut plan.
type Plan struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	Name      string    `json:"name"`
	MealIDs   []int     `json:"mealIds"`
	CreatedAt time.Time `json:"createdAt"`
}
