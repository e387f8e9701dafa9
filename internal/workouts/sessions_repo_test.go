//go:build integration_test || all_tests

package workouts

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/mtrann/healthtrack/internal/db"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSessionsRepoSetup(t *testing.T) (*SessionsRepo, func()) {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postres host: %s", host)

	dbPool, err := db.NewDBPool(timeoutCtx, db.NewDBPoolParams{
		DBHost:         host,
		DBPort:         "5432",
		DBName:         "healthtrack_tests",
		TracingEnabled: false,
	})
	require.NoError(t, err)

	return NewSessionsRepo(dbPool), func() {
		dbPool.Close()
	}
}

func testSession(userID int, schedule, updatedAt time.Time) *Session {
	return &Session{
		UserID:              userID,
		Name:                gofakeit.HipsterWord(),
		Schedule:            schedule,
		TotalDuration:       gofakeit.Number(10, 120),
		TotalCaloriesBurned: gofakeit.Float64Range(50, 900),
		IsActive:            true,
		CreatedAt:           updatedAt,
		UpdatedAt:           updatedAt,
	}
}

func TestSessionsRepo_ListActiveInRange_FiltersByUpdatedAt(t *testing.T) {
	repo, cleanup := testSessionsRepoSetup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	userID := gofakeit.Number(100_000, 999_999)

	jan2 := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	jun10 := time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC)

	// scheduled in January but edited in June
	editedLater, err := repo.Add(ctx, testSession(userID, jan2, jun10))
	require.NoError(t, err)
	// scheduled in June but edited in January
	editedEarlier, err := repo.Add(ctx, testSession(userID, jun10, jan2))
	require.NoError(t, err)
	inactive := testSession(userID, jan2, jan2)
	inactive.IsActive = false
	_, err = repo.Add(ctx, inactive)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, repo.Deactivate(ctx, editedLater.ID, userID))
		require.NoError(t, repo.Deactivate(ctx, editedEarlier.ID, userID))
	}()

	janFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	janTo := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	janSessions, err := repo.ListActiveInRange(ctx, userID, janFrom, janTo)
	require.NoError(t, err)
	require.Len(t, janSessions, 1)
	assert.Equal(t, editedEarlier.ID, janSessions[0].ID)

	junFrom := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	junTo := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	junSessions, err := repo.ListActiveInRange(ctx, userID, junFrom, junTo)
	require.NoError(t, err)
	require.Len(t, junSessions, 1)
	assert.Equal(t, editedLater.ID, junSessions[0].ID)
}

func TestSessionsRepo_ListActiveInRange_OrderedByUpdatedAt(t *testing.T) {
	repo, cleanup := testSessionsRepoSetup(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	userID := gofakeit.Number(100_000, 999_999)

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	second, err := repo.Add(ctx, testSession(userID, day, day.Add(15*time.Hour)))
	require.NoError(t, err)
	first, err := repo.Add(ctx, testSession(userID, day, day.Add(8*time.Hour)))
	require.NoError(t, err)

	defer func() {
		require.NoError(t, repo.Deactivate(ctx, first.ID, userID))
		require.NoError(t, repo.Deactivate(ctx, second.ID, userID))
	}()

	sessions, err := repo.ListActiveInRange(ctx, userID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.ID, sessions[0].ID)
	assert.Equal(t, second.ID, sessions[1].ID)
}
