package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/mtrann/healthtrack/internal/db"
	"github.com/mtrann/healthtrack/internal/health"
	"github.com/mtrann/healthtrack/internal/users"
	"github.com/mtrann/healthtrack/internal/workouts"
	"github.com/mtrann/healthtrack/pkg"

	"github.com/brianvoe/gofakeit/v6"
	log "github.com/sirupsen/logrus"
)

// seeds the database with a few demo users, their health stat history
// and some workout sessions, so the statistics endpoints have something
// to show in a fresh development setup

func main() {
	dbHost := flag.String("db-host", "localhost", "postgres host")
	dbPort := flag.String("db-port", "5432", "postgres port")
	dbName := flag.String("db-name", "healthtrack", "postgres db name")
	userCount := flag.Int("users", 5, "number of demo users to create")
	historyDays := flag.Int("days", 60, "days of health stat history per user")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost: *dbHost,
		DBPort: *dbPort,
		DBName: *dbName,
	})
	if err != nil {
		log.Fatalf("new db pool: %s", err)
	}
	defer dbPool.Close()

	usersRepo := users.NewRepo(dbPool)
	healthRepo := health.NewRepo(dbPool)
	exercisesRepo := workouts.NewExercisesRepo(dbPool)
	sessionsRepo := workouts.NewSessionsRepo(dbPool)
	workoutsService := workouts.NewService(sessionsRepo, exercisesRepo, healthRepo)

	exerciseIDs, err := seedExercises(ctx, exercisesRepo)
	if err != nil {
		log.Fatalf("seed exercises: %s", err)
	}
	log.Infof("seeded %d exercises", len(exerciseIDs))

	passwordHash, err := pkg.HashPassword("demo-pass")
	if err != nil {
		log.Fatalf("hash demo password: %s", err)
	}

	for i := 0; i < *userCount; i++ {
		person := gofakeit.Person()
		user, err := usersRepo.Add(ctx, &users.User{
			Username:     fmt.Sprintf("%s%d", gofakeit.Username(), i),
			FirstName:    person.FirstName,
			LastName:     person.LastName,
			Email:        person.Contact.Email,
			PasswordHash: passwordHash,
			Role:         users.RoleUser,
			HealthGoal:   users.GoalMaintainHealth,
			IsActive:     true,
			CreatedAt:    time.Now(),
		})
		if err != nil {
			log.Fatalf("add user: %s", err)
		}

		if err := seedHealthStats(ctx, healthRepo, user.ID, *historyDays); err != nil {
			log.Fatalf("seed health stats for user %d: %s", user.ID, err)
		}
		if err := seedWorkouts(ctx, workoutsService, user.ID, exerciseIDs, *historyDays); err != nil {
			log.Fatalf("seed workouts for user %d: %s", user.ID, err)
		}
		log.Infof("seeded user %d [%s]", user.ID, user.Username)
	}

	log.Infoln("done")
}

func seedExercises(ctx context.Context, repo *workouts.ExercisesRepo) ([]int, error) {
	groupNames := []string{"chest", "back", "legs", "shoulders", "core"}
	groupIDs := make([]int, 0, len(groupNames))
	for _, name := range groupNames {
		group, err := repo.AddMuscleGroup(ctx, &workouts.MuscleGroup{
			Name:        name,
			Description: gofakeit.Sentence(6),
		})
		if err != nil {
			return nil, fmt.Errorf("add muscle group %q: %w", name, err)
		}
		groupIDs = append(groupIDs, group.ID)
	}

	var exerciseIDs []int
	for i := 0; i < 12; i++ {
		exercise, err := repo.Add(ctx, &workouts.Exercise{
			Name:           gofakeit.HipsterWord(),
			Description:    gofakeit.Sentence(8),
			MuscleGroupIDs: []int{groupIDs[i%len(groupIDs)]},
			Duration:       5 + gofakeit.Number(0, 20),
			CaloriesBurned: float64(gofakeit.Number(40, 220)),
		})
		if err != nil {
			return nil, fmt.Errorf("add exercise: %w", err)
		}
		exerciseIDs = append(exerciseIDs, exercise.ID)
	}
	return exerciseIDs, nil
}

func seedHealthStats(ctx context.Context, repo *health.Repo, userID, days int) error {
	weight := gofakeit.Float64Range(55, 95)
	height := gofakeit.Float64Range(1.55, 1.95)

	for dayOffset := days; dayOffset >= 0; dayOffset-- {
		// weight drifts a bit day to day
		weight += gofakeit.Float64Range(-0.4, 0.4)
		water := gofakeit.Float64Range(0.8, 3.5)
		steps := gofakeit.Number(1500, 16000)
		heartRate := gofakeit.Number(52, 90)

		stat := &health.HealthStat{
			UserID:      userID,
			Date:        time.Now().AddDate(0, 0, -dayOffset).Truncate(24 * time.Hour),
			Weight:      &weight,
			Height:      &height,
			WaterIntake: &water,
			StepCount:   &steps,
			HeartRate:   &heartRate,
			CreatedAt:   time.Now(),
		}
		stat.ComputeBMI()

		if _, err := repo.Add(ctx, stat); err != nil {
			return err
		}
	}
	return nil
}

func seedWorkouts(
	ctx context.Context,
	service *workouts.Service,
	userID int,
	exerciseIDs []int,
	days int,
) error {
	for dayOffset := days; dayOffset >= 0; dayOffset -= gofakeit.Number(1, 3) {
		first := gofakeit.Number(0, len(exerciseIDs)-1)
		second := (first + 1 + gofakeit.Number(0, len(exerciseIDs)-2)) % len(exerciseIDs)
		picked := []int{exerciseIDs[first], exerciseIDs[second]}
		session := &workouts.Session{
			UserID:      userID,
			Name:        gofakeit.HipsterWord() + " workout",
			Schedule:    time.Now().AddDate(0, 0, -dayOffset),
			ExerciseIDs: picked,
		}
		if _, err := service.CreateSession(ctx, session); err != nil {
			return err
		}
	}
	return nil
}
