package unit

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core"
)

var ErrNotFound = errors.New("unit not found")

type (
	Service interface {
		Query(ctx context.Context, schoolID string) ([]Unit, error)
		Get(ctx context.Context, schoolID, id string) (Unit, error)
	}

	service struct {
		store core.Store
	}
)

var _ Service = (*service)(nil)

// NewService returns the read side of the units collection; units are only created by roster imports.
func NewService(store core.Store) Service {
	return &service{store: store}
}

func (svc *service) Query(ctx context.Context, schoolID string) ([]Unit, error) {
	var units []Unit
	if err := svc.store.Query(ctx, core.Units, schoolID, &units); err != nil {
		return nil, errors.Wrap(err, "querying units")
	}
	return units, nil
}

// Get returns ErrNotFound for units of other schools.
func (svc *service) Get(ctx context.Context, schoolID, id string) (Unit, error) {
	var u Unit
	if err := svc.store.Get(ctx, core.Units, id, &u); err != nil {
		if errors.Cause(err) == core.ErrDocNotFound {
			return Unit{}, ErrNotFound
		}
		return Unit{}, errors.Wrap(err, "getting unit")
	}
	if u.SchoolID != schoolID {
		return Unit{}, ErrNotFound
	}
	return u, nil
}
