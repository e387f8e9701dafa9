package users

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleExpert Role = "expert"
	RoleCoach  Role = "coach"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleExpert, RoleCoach:
		return true
	}
	return false
}

// Elevated reports whether this role may inspect other users' data.
func (r Role) Elevated() bool {
	return r == RoleExpert || r == RoleCoach
}

type HealthGoal string

const (
	GoalBuildMuscle    HealthGoal = "build muscle"
	GoalLoseWeight     HealthGoal = "lose weight"
	GoalMaintainHealth HealthGoal = "maintain health"
)

func (g HealthGoal) Valid() bool {
	switch g {
	case GoalBuildMuscle, GoalLoseWeight, GoalMaintainHealth:
		return true
	}
	return false
}

type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	// baseline body measurements, meters / kilos
	Height     *float64   `json:"height,omitempty"`
	Weight     *float64   `json:"weight,omitempty"`
	HealthGoal HealthGoal `json:"healthGoal"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
