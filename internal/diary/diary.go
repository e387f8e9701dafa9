package diary

import "time"

// Entry is a free-form journal note, optionally linked to the workout
// session it talks about.
type Entry struct {
	ID               int       `json:"id"`
	UserID           int       `json:"userId"`
	WorkoutSessionID *int      `json:"workoutSessionId"`
	Name             string    `json:"name"`
	Content          string    `json:"content"`
	CreatedAt        time.Time `json:"createdAt"`
}
