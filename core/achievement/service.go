package achievement

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

var ErrNotFound = errors.New("achievement not found")

type (
	Service interface {
		Create(ctx context.Context, actor user.Actor, na NewAchievement) (Achievement, error)
		Update(ctx context.Context, actor user.Actor, id string, na NewAchievement, expectedStatus string) (Achievement, error)
		Transition(ctx context.Context, actor user.Actor, id string, cmd Command) (Achievement, error)
		Delete(ctx context.Context, actor user.Actor, id string) error
		Get(ctx context.Context, actor user.Actor, id string) (Achievement, error)
		Query(ctx context.Context, actor user.Actor, filter QueryFilter) ([]Achievement, error)
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

func (svc *service) Create(ctx context.Context, actor user.Actor, na NewAchievement) (Achievement, error) {
	na.Clean()
	if err := svc.validate.Struct(na); err != nil {
		return Achievement{}, err
	}
	students, err := svc.students(ctx, actor, na.Category)
	if err != nil {
		return Achievement{}, err
	}
	a, err := New(actor, na, students, uuid.New().String(), core.Now())
	if err != nil {
		return Achievement{}, err
	}
	if err = svc.store.Apply(ctx, core.CreateDoc(core.Achievements, a.ID, a.SchoolID, a)); err != nil {
		return Achievement{}, errors.Wrap(err, "creating achievement")
	}
	svc.logger.Info(fmt.Sprintf("achievement %s created by %s", a.ID, actor.ID))
	return a, nil
}

func (svc *service) Update(ctx context.Context, actor user.Actor, id string, na NewAchievement, expectedStatus string) (Achievement, error) {
	return svc.Transition(ctx, actor, id, Command{Action: ActionEdit, Edit: &na, ExpectedStatus: expectedStatus})
}

func (svc *service) Transition(ctx context.Context, actor user.Actor, id string, cmd Command) (Achievement, error) {
	cmd.Action = core.CleanString(cmd.Action)
	cmd.ExpectedStatus = core.CleanString(cmd.ExpectedStatus)
	var students []roster.Student
	if cmd.Edit != nil {
		cmd.Edit.Clean()
		var err error
		if students, err = svc.students(ctx, actor, cmd.Edit.Category); err != nil {
			return Achievement{}, err
		}
	}
	if err := svc.validate.Struct(cmd); err != nil {
		return Achievement{}, err
	}

	a, err := svc.get(ctx, id)
	if err != nil {
		return Achievement{}, err
	}
	updated, err := Apply(a, actor, cmd, students, core.Now())
	if err != nil {
		return Achievement{}, err
	}
	if err = svc.store.Apply(ctx, core.UpdateDoc(core.Achievements, updated.ID, updated.SchoolID, updated)); err != nil {
		return Achievement{}, errors.Wrap(err, "saving achievement")
	}
	if a.Status != updated.Status {
		svc.logger.Info(fmt.Sprintf("achievement %s: %s -> %s by %s", updated.ID, a.Status, updated.Status, actor.ID))
	}
	return updated, nil
}

func (svc *service) Delete(ctx context.Context, actor user.Actor, id string) error {
	a, err := svc.get(ctx, id)
	if err != nil {
		return err
	}
	if err = CheckDelete(a, actor); err != nil {
		return err
	}
	return errors.Wrap(svc.store.Apply(ctx, core.DeleteDoc(core.Achievements, a.ID, a.SchoolID)), "deleting achievement")
}

func (svc *service) Get(ctx context.Context, actor user.Actor, id string) (Achievement, error) {
	a, err := svc.get(ctx, id)
	if err != nil {
		return Achievement{}, err
	}
	if !visible(actor, a) {
		return Achievement{}, ErrNotFound
	}
	return a, nil
}

func (svc *service) Query(ctx context.Context, actor user.Actor, filter QueryFilter) ([]Achievement, error) {
	var all []Achievement
	if err := svc.store.Query(ctx, core.Achievements, actor.SchoolID, &all); err != nil {
		return nil, errors.Wrap(err, "querying achievements")
	}
	filtered := make([]Achievement, 0, len(all))
	for _, a := range all {
		if visible(actor, a) && filter.match(a) {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

func visible(actor user.Actor, a Achievement) bool {
	if a.SchoolID != actor.SchoolID {
		return false
	}
	return actor.Role != user.RoleAdvisor || (actor.UnitID != "" && a.UnitID == actor.UnitID)
}

// students loads the roster of the actor's unit when an individual achievement needs it.
func (svc *service) students(ctx context.Context, actor user.Actor, category string) ([]roster.Student, error) {
	if category != CategoryIndividual || actor.UnitID == "" {
		return nil, nil
	}
	return svc.rosterSvc.UnitRoster(ctx, actor.SchoolID, actor.UnitID)
}

func (svc *service) get(ctx context.Context, id string) (Achievement, error) {
	var a Achievement
	if err := svc.store.Get(ctx, core.Achievements, id, &a); err != nil {
		if errors.Cause(err) == core.ErrDocNotFound {
			return Achievement{}, ErrNotFound
		}
		return Achievement{}, errors.Wrap(err, "getting achievement")
	}
	return a, nil
}
