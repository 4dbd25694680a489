package attendance

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/roster"
	"github.com/trezcool/kokulite/core/user"
)

var ErrNotFound = errors.New("attendance record not found")

type (
	Service interface {
		Create(ctx context.Context, actor user.Actor, nr NewRecord) (Record, error)
		// Query returns the records visible to actor: their unit's for an advisor, the school's otherwise.
		Query(ctx context.Context, actor user.Actor) ([]Record, error)
		Get(ctx context.Context, actor user.Actor, id string) (Record, error)
	}

	service struct {
		store     core.Store
		rosterSvc roster.Service
		validate  *validator.Validate
		logger    core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(store core.Store, rosterSvc roster.Service, validate *validator.Validate, logger core.Logger) Service {
	return &service{store: store, rosterSvc: rosterSvc, validate: validate, logger: logger}
}

func (svc *service) Create(ctx context.Context, actor user.Actor, nr NewRecord) (Record, error) {
	nr.Clean()
	if err := svc.validate.Struct(nr); err != nil {
		return Record{}, err
	}

	var students []roster.Student
	if actor.UnitID != "" {
		var err error
		if students, err = svc.rosterSvc.UnitRoster(ctx, actor.SchoolID, actor.UnitID); err != nil {
			return Record{}, err
		}
	}
	rec, err := Build(actor, nr, students, uuid.New().String(), core.Now())
	if err != nil {
		return Record{}, err
	}
	if err = svc.store.Apply(ctx, core.CreateDoc(core.Attendance, rec.ID, rec.SchoolID, rec)); err != nil {
		return Record{}, errors.Wrap(err, "creating attendance record")
	}
	svc.logger.Info(fmt.Sprintf("attendance %s recorded for unit %s: %d/%d present", rec.ID, rec.UnitID, len(rec.StudentIDsPresent), rec.TotalStudents))
	return rec, nil
}

func (svc *service) Query(ctx context.Context, actor user.Actor) ([]Record, error) {
	var recs []Record
	if err := svc.store.Query(ctx, core.Attendance, actor.SchoolID, &recs); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	if actor.Role != user.RoleAdvisor {
		return recs, nil
	}
	own := make([]Record, 0, len(recs))
	for _, rec := range recs {
		if actor.UnitID != "" && rec.UnitID == actor.UnitID {
			own = append(own, rec)
		}
	}
	return own, nil
}

func (svc *service) Get(ctx context.Context, actor user.Actor, id string) (Record, error) {
	var rec Record
	if err := svc.store.Get(ctx, core.Attendance, id, &rec); err != nil {
		if errors.Cause(err) == core.ErrDocNotFound {
			return Record{}, ErrNotFound
		}
		return Record{}, errors.Wrap(err, "getting attendance record")
	}
	if rec.SchoolID != actor.SchoolID || (actor.Role == user.RoleAdvisor && rec.UnitID != actor.UnitID) {
		return Record{}, ErrNotFound
	}
	return rec, nil
}
