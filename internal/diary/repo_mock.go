package diary

import (
	"context"
	"sort"
)

type repoMock struct {
	entries map[int]*Entry
	nextID  int
}

func NewMockDiaryRepo() *repoMock {
	return &repoMock{
		entries: make(map[int]*Entry),
		nextID:  1,
	}
}

func (r *repoMock) Add(_ context.Context, entry *Entry) (*Entry, error) {
	entry.ID = r.nextID
	r.nextID++
	r.entries[entry.ID] = entry
	return entry, nil
}

func (r *repoMock) Get(_ context.Context, id, userID int) (*Entry, error) {
	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return nil, ErrEntryNotFound
	}
	return entry, nil
}

func (r *repoMock) List(_ context.Context, userID int) ([]Entry, error) {
	var entries []Entry
	for _, entry := range r.entries {
		if entry.UserID == userID {
			entries = append(entries, *entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID > entries[j].ID
	})
	return entries, nil
}

func (r *repoMock) Update(ctx context.Context, entry *Entry) error {
	if _, err := r.Get(ctx, entry.ID, entry.UserID); err != nil {
		return err
	}
	r.entries[entry.ID] = entry
	return nil
}

func (r *repoMock) Delete(ctx context.Context, id, userID int) error {
	if _, err := r.Get(ctx, id, userID); err != nil {
		return err
	}
	delete(r.entries, id)
	return nil
}
