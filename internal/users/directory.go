package users

import (
	"context"
	"errors"
)

// ErrForbidden is returned when a viewer without an elevated role asks
// for another user's data.
var ErrForbidden = errors.New("not allowed to access this user's data")

type directoryRepo interface {
	Get(ctx context.Context, id int) (*User, error)
}

// Directory resolves which user's records a viewer is allowed to read.
// A viewer can always read their own records; expert and coach roles can
// read anybody's.
type Directory struct {
	repo directoryRepo
}

func NewDirectory(repo directoryRepo) *Directory {
	return &Directory{
		repo: repo,
	}
}

// ResolveTarget returns the user whose records should be read. A targetID
// of zero means the viewer themselves.
func (d *Directory) ResolveTarget(ctx context.Context, viewerID, targetID int) (*User, error) {
	viewer, err := d.repo.Get(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	if targetID == 0 || targetID == viewer.ID {
		return viewer, nil
	}

	if !viewer.Role.Elevated() {
		return nil, ErrForbidden
	}

	return d.repo.Get(ctx, targetID)
}
