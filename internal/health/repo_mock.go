package health

import (
	"context"
	"sort"
	"time"
)

type repoMock struct {
	stats  map[int]*HealthStat
	nextID int
}

func NewMockHealthStatsRepo() *repoMock {
	return &repoMock{
		stats:  make(map[int]*HealthStat),
		nextID: 1,
	}
}

func (r *repoMock) Add(_ context.Context, stat *HealthStat) (*HealthStat, error) {
	stat.ID = r.nextID
	r.nextID++
	r.stats[stat.ID] = stat
	return stat, nil
}

func (r *repoMock) Get(_ context.Context, id, userID int) (*HealthStat, error) {
	stat, ok := r.stats[id]
	if !ok || stat.UserID != userID {
		return nil, ErrHealthStatNotFound
	}
	return stat, nil
}

func (r *repoMock) List(_ context.Context, userID, limit int) ([]HealthStat, error) {
	var stats []HealthStat
	for _, stat := range r.stats {
		if stat.UserID == userID {
			stats = append(stats, *stat)
		}
	}
	sort.Slice(stats, func(i, j int) bool {
		if !stats[i].Date.Equal(stats[j].Date) {
			return stats[i].Date.After(stats[j].Date)
		}
		return stats[i].ID > stats[j].ID
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, nil
}

func (r *repoMock) ListInRange(_ context.Context, userID int, from, to time.Time) ([]HealthStat, error) {
	var stats []HealthStat
	for _, stat := range r.stats {
		if stat.UserID != userID {
			continue
		}
		if stat.Date.Before(from) || !stat.Date.Before(to) {
			continue
		}
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if !stats[i].Date.Equal(stats[j].Date) {
			return stats[i].Date.Before(stats[j].Date)
		}
		return stats[i].ID < stats[j].ID
	})
	return stats, nil
}

func (r *repoMock) Latest(_ context.Context, userID int, until time.Time) (*HealthStat, error) {
	var latest *HealthStat
	for _, stat := range r.stats {
		if stat.UserID != userID || stat.Date.After(until) {
			continue
		}
		if latest == nil ||
			stat.Date.After(latest.Date) ||
			(stat.Date.Equal(latest.Date) && stat.ID > latest.ID) {
			latest = stat
		}
	}
	if latest == nil {
		return nil, ErrHealthStatNotFound
	}
	return latest, nil
}

func (r *repoMock) Update(ctx context.Context, stat *HealthStat) error {
	if _, err := r.Get(ctx, stat.ID, stat.UserID); err != nil {
		return err
	}
	r.stats[stat.ID] = stat
	return nil
}

func (r *repoMock) Delete(ctx context.Context, id, userID int) error {
	if _, err := r.Get(ctx, id, userID); err != nil {
		return err
	}
	delete(r.stats, id)
	return nil
}
