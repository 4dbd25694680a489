package roster

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/user"
)

const (
	actionImport        = "IMPORT"
	actionAddStudent    = "ADD_STUDENT"
	actionEditStudent   = "EDIT_STUDENT"
	actionDeleteStudent = "DELETE_STUDENT"
)

var ErrNotFound = errors.New("student not found")

type (
	Service interface {
		// Import reconciles req against the current units and users of the school and applies the
		// resulting writes as one batch. Nothing is written on error.
		Import(ctx context.Context, actor user.Actor, req ImportRequest) (Result, error)
		QueryStudents(ctx context.Context, actor user.Actor, filter StudentFilter) ([]Student, error)
		// UnitRoster returns the students of a unit.
		UnitRoster(ctx context.Context, schoolID, unitID string) ([]Student, error)
		// CreateStudent, UpdateStudent and DeleteStudent are open to advisors, on their own unit only.
		CreateStudent(ctx context.Context, actor user.Actor, ns NewStudent) (Student, error)
		UpdateStudent(ctx context.Context, actor user.Actor, id string, ns NewStudent) (Student, error)
		DeleteStudent(ctx context.Context, actor user.Actor, id string) error
	}

	service struct {
		store    core.Store
		usrSvc   user.Service
		validate *validator.Validate
		logger   core.Logger
		newID    IDGenerator
	}
)

var _ Service = (*service)(nil)

func NewService(store core.Store, usrSvc user.Service, validate *validator.Validate, logger core.Logger) Service {
	return &service{store: store, usrSvc: usrSvc, validate: validate, logger: logger, newID: NewID}
}

func (svc *service) Import(ctx context.Context, actor user.Actor, req ImportRequest) (Result, error) {
	if actor.Role != user.RoleSecretary {
		return Result{}, core.NewAuthorizationError(actor.Role, actionImport, user.RoleSecretary)
	}
	req.Clean(actor.SchoolID)
	if req.SchoolID != actor.SchoolID {
		return Result{}, core.NewScopeError(actor.Role, actionImport, "the roster belongs to another school")
	}
	if err := svc.validate.Struct(req); err != nil {
		return Result{}, err
	}

	var snap Snapshot
	if err := svc.store.Query(ctx, core.Units, req.SchoolID, &snap.Units); err != nil {
		return Result{}, errors.Wrap(err, "querying units")
	}
	users, err := svc.usrSvc.Query(ctx, req.SchoolID, user.QueryFilter{})
	if err != nil {
		return Result{}, errors.Wrap(err, "querying users")
	}
	snap.Users = users

	plan, err := Reconcile(req, snap, svc.newID)
	if err != nil {
		return Result{}, err
	}
	if err = svc.store.Apply(ctx, plan.Writes()...); err != nil {
		return Result{}, errors.Wrap(err, "applying import")
	}

	res := plan.Result()
	svc.logger.Info(
		fmt.Sprintf("roster imported for school %s by %s", req.SchoolID, actor.ID),
		map[string]interface{}{
			"units_created":    res.UnitsCreated,
			"teachers_created": res.TeachersCreated,
			"teachers_updated": res.TeachersUpdated,
			"students_created": res.StudentsCreated,
			"teachers_linked":  res.TeachersLinked,
		},
	)
	return res, nil
}

func (svc *service) QueryStudents(ctx context.Context, actor user.Actor, filter StudentFilter) ([]Student, error) {
	if actor.Role == user.RoleAdvisor {
		if actor.UnitID == "" {
			return []Student{}, nil
		}
		filter.UnitID = actor.UnitID // advisors only see their own roster
	}
	return svc.query(ctx, actor.SchoolID, filter)
}

func (svc *service) UnitRoster(ctx context.Context, schoolID, unitID string) ([]Student, error) {
	return svc.query(ctx, schoolID, StudentFilter{UnitID: unitID})
}

func (svc *service) query(ctx context.Context, schoolID string, filter StudentFilter) ([]Student, error) {
	var students []Student
	if err := svc.store.Query(ctx, core.Students, schoolID, &students); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	class := core.CleanString(filter.Class, true /* lower */)
	filtered := make([]Student, 0, len(students))
	for _, s := range students {
		if filter.UnitID != "" && s.UnitID != filter.UnitID {
			continue
		}
		if class != "" && core.CleanString(s.Class, true /* lower */) != class {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered, nil
}

// checkUnitActor returns nil when actor is an advisor with a unit assigned.
func checkUnitActor(actor user.Actor, action string) error {
	if actor.Role != user.RoleAdvisor {
		return core.NewAuthorizationError(actor.Role, action, user.RoleAdvisor)
	}
	if actor.UnitID == "" {
		return core.NewScopeError(actor.Role, action, "no unit is assigned to you yet")
	}
	return nil
}

func (svc *service) CreateStudent(ctx context.Context, actor user.Actor, ns NewStudent) (Student, error) {
	if err := checkUnitActor(actor, actionAddStudent); err != nil {
		return Student{}, err
	}
	ns.Clean()
	if err := svc.validate.Struct(ns); err != nil {
		return Student{}, err
	}

	s := Student{
		ID:        svc.newID(),
		Name:      ns.Name,
		Class:     ns.Class,
		UnitID:    actor.UnitID,
		SchoolID:  actor.SchoolID,
		Position:  ns.Position,
		CreatedAt: core.Now(),
	}
	if err := svc.store.Apply(ctx, core.CreateDoc(core.Students, s.ID, s.SchoolID, s)); err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	svc.logger.Info(fmt.Sprintf("student %s added to unit %s by %s", s.ID, s.UnitID, actor.ID))
	return s, nil
}

func (svc *service) UpdateStudent(ctx context.Context, actor user.Actor, id string, ns NewStudent) (Student, error) {
	s, err := svc.ownStudent(ctx, actor, id, actionEditStudent)
	if err != nil {
		return Student{}, err
	}
	ns.Clean()
	if err = svc.validate.Struct(ns); err != nil {
		return Student{}, err
	}

	s.Name, s.Class, s.Position = ns.Name, ns.Class, ns.Position
	if err = svc.store.Apply(ctx, core.UpdateDoc(core.Students, s.ID, s.SchoolID, s)); err != nil {
		return Student{}, errors.Wrap(err, "saving student")
	}
	return s, nil
}

func (svc *service) DeleteStudent(ctx context.Context, actor user.Actor, id string) error {
	s, err := svc.ownStudent(ctx, actor, id, actionDeleteStudent)
	if err != nil {
		return err
	}
	if err = svc.store.Apply(ctx, core.DeleteDoc(core.Students, s.ID, s.SchoolID)); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	svc.logger.Info(fmt.Sprintf("student %s removed from unit %s by %s", s.ID, s.UnitID, actor.ID))
	return nil
}

// ownStudent loads the student `id` when it belongs to the unit of actor.
func (svc *service) ownStudent(ctx context.Context, actor user.Actor, id, action string) (Student, error) {
	if err := checkUnitActor(actor, action); err != nil {
		return Student{}, err
	}
	var s Student
	if err := svc.store.Get(ctx, core.Students, id, &s); err != nil {
		if errors.Cause(err) == core.ErrDocNotFound {
			return Student{}, ErrNotFound
		}
		return Student{}, errors.Wrap(err, "getting student")
	}
	if s.SchoolID != actor.SchoolID {
		return Student{}, ErrNotFound
	}
	if s.UnitID != actor.UnitID {
		return Student{}, core.NewScopeError(actor.Role, action, "the student belongs to another unit")
	}
	return s, nil
}
