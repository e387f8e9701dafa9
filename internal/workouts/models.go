package workouts

import (
	"time"
)

type MuscleGroup struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Exercise is a reusable exercise definition. Duration is in minutes.
type Exercise struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	MuscleGroupIDs []int   `json:"muscleGroupIds"`
	Duration       int     `json:"duration"`
	CaloriesBurned float64 `json:"caloriesBurned"`
}

// Session is a scheduled workout. TotalDuration and TotalCaloriesBurned
// are derived from the linked exercises, BPM and Steps are copied from
// the latest health snapshot at write time.
type Session struct {
	ID                  int       `json:"id"`
	UserID              int       `json:"userId"`
	Name                string    `json:"name"`
	Schedule            time.Time `json:"schedule"`
	TotalDuration       int       `json:"totalDuration"`
	TotalCaloriesBurned float64   `json:"totalCaloriesBurned"`
	BPM                 *int      `json:"bpm"`
	Steps               *int      `json:"steps"`
	ExerciseIDs         []int     `json:"exerciseIds"`
	IsActive            bool      `json:"isActive"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}
