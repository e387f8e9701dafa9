//go:build integration_test || all_tests

package health

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

func testRepoSetup(t *testing.T) (*Repo, func()) {
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

	return NewRepo(dbPool), func() {
		dbPool.Close()
	}
}

func randomStat(userID int, date time.Time) *HealthStat {
	weight := gofakeit.Float64Range(50, 100)
	height := gofakeit.Float64Range(1.5, 2.0)
	water := gofakeit.Float64Range(0.5, 4)
	steps := gofakeit.Number(1000, 20000)
	heartRate := gofakeit.Number(50, 95)

	stat := &HealthStat{
		UserID:      userID,
		Date:        date,
		Weight:      &weight,
		Height:      &height,
		WaterIntake: &water,
		StepCount:   &steps,
		HeartRate:   &heartRate,
		CreatedAt:   time.Now(),
	}
	stat.ComputeBMI()
	return stat
}

func TestRepo_AddGetDelete(t *testing.T) {
	ctx := context.Background()
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	userID := gofakeit.Number(100_000, 200_000)
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	added, err := repo.Add(ctx, randomStat(userID, date))
	require.NoError(t, err)
	require.NotZero(t, added.ID)

	got, err := repo.Get(ctx, added.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, added.ID, got.ID)
	assert.True(t, got.Date.Equal(date))
	require.NotNil(t, got.BMI)

	// wrong user cannot see it
	_, err = repo.Get(ctx, added.ID, userID+1)
	assert.ErrorIs(t, err, ErrHealthStatNotFound)

	require.NoError(t, repo.Delete(ctx, added.ID, userID))
	_, err = repo.Get(ctx, added.ID, userID)
	assert.ErrorIs(t, err, ErrHealthStatNotFound)
}

func TestRepo_ListInRange(t *testing.T) {
	ctx := context.Background()
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	userID := gofakeit.Number(200_001, 300_000)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	var addedIDs []int
	for dayOffset := 0; dayOffset < 5; dayOffset++ {
		added, err := repo.Add(ctx, randomStat(userID, base.AddDate(0, 0, dayOffset)))
		require.NoError(t, err)
		addedIDs = append(addedIDs, added.ID)
	}

	// [may 2nd, may 4th)
	listed, err := repo.ListInRange(ctx, userID, base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, addedIDs[1], listed[0].ID)
	assert.Equal(t, addedIDs[2], listed[1].ID)

	for _, id := range addedIDs {
		require.NoError(t, repo.Delete(ctx, id, userID))
	}
}

func TestRepo_Latest(t *testing.T) {
	ctx := context.Background()
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	userID := gofakeit.Number(300_001, 400_000)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	first, err := repo.Add(ctx, randomStat(userID, base))
	require.NoError(t, err)
	second, err := repo.Add(ctx, randomStat(userID, base.AddDate(0, 0, 4)))
	require.NoError(t, err)

	latest, err := repo.Latest(ctx, userID, base.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	// cutoff before the second record
	latest, err = repo.Latest(ctx, userID, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, first.ID, latest.ID)

	require.NoError(t, repo.Delete(ctx, first.ID, userID))
	require.NoError(t, repo.Delete(ctx, second.ID, userID))

	_, err = repo.Latest(ctx, userID, base.AddDate(0, 0, 10))
	assert.ErrorIs(t, err, ErrHealthStatNotFound)
}
