package nutrition

import (
	"github.com/mtrann/healthtrack/pkg"
)

// Summary holds the nutrition totals over a set of food items.
type Summary struct {
	TotalCalories   float64 `json:"totalCalories"`
	TotalProtein    float64 `json:"totalProtein"`
	TotalCarbs      float64 `json:"totalCarbs"`
	TotalFats       float64 `json:"totalFats"`
	TotalQuantities float64 `json:"totalQuantities"`
	ItemsCount      int     `json:"itemsCount"`
}

func Summarize(items []FoodItem) Summary {
	var summary Summary
	for _, item := range items {
		summary.TotalCalories += item.Calories
		summary.TotalProtein += item.Protein
		summary.TotalCarbs += item.Carbs
		summary.TotalFats += item.Fats
		summary.TotalQuantities += item.Quantities
	}
	summary.TotalCalories = pkg.RoundToTwoDecimals(summary.TotalCalories)
	summary.TotalProtein = pkg.RoundToTwoDecimals(summary.TotalProtein)
	summary.TotalCarbs = pkg.RoundToTwoDecimals(summary.TotalCarbs)
	summary.TotalFats = pkg.RoundToTwoDecimals(summary.TotalFats)
	summary.TotalQuantities = pkg.RoundToTwoDecimals(summary.TotalQuantities)
	summary.ItemsCount = len(items)
	return summary
}
