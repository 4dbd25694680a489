package user

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/identity"
	"github.com/trezcool/kokulite/core/unit"
)

var (
	// errors
	ErrNotFound        = errors.New("user not found")
	ErrEmailExists     = errors.New("a user with this email already exists")
	ErrUnitNameTaken   = errors.New("this unit already has a registered advisor")
	ErrNotAdvisor      = errors.New("only advisor accounts can be deleted")
	errNoPasswordToSet = errors.New("password required")
)

type (
	Service interface {
		Register(ctx context.Context, nu NewUser) (User, error)
		CheckUniqueness(ctx context.Context, email, schoolID, unitName string) error
		Get(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Query(ctx context.Context, schoolID string, filter QueryFilter) ([]User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		SetPassword(ctx context.Context, email, pwd string) error
		Delete(ctx context.Context, schoolID, id string) error
		// ResolveUnit runs ResolveTeacherUnit against the current units of the profile's school
		// and saves the profile when it changed.
		ResolveUnit(ctx context.Context, profile User) (User, error)
		// LinkPending resolves every pending advisor of a school in one batch and returns how many were linked.
		LinkPending(ctx context.Context, schoolID string) (int, error)
	}

	service struct {
		store  core.Store
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(store core.Store, logger core.Logger) Service {
	return &service{store: store, logger: logger}
}

func (svc *service) CheckUniqueness(ctx context.Context, email, schoolID, unitName string) error {
	if _, err := svc.Get(ctx, email); err == nil {
		return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if err != ErrNotFound {
		return err
	}

	if unitName == "" {
		return nil
	}
	users, err := svc.Query(ctx, schoolID, QueryFilter{Roles: []string{RoleAdvisor}})
	if err != nil {
		return err
	}
	for _, usr := range users {
		if !usr.Imported && identity.Match(usr.RegisteredUnitName, unitName) {
			return core.NewValidationError(ErrUnitNameTaken, core.FieldError{Field: "unit_name", Error: ErrUnitNameTaken.Error()})
		}
	}
	return nil
}

func (svc *service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := core.Now()
	usr := User{
		ID:         nu.Email,
		Name:       nu.Name,
		Email:      nu.Email,
		Role:       nu.Role,
		SchoolID:   nu.SchoolID,
		SchoolName: nu.SchoolName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if usr.IsAdvisor() {
		usr.RegisteredUnitName = nu.UnitName
		usr.RegisteredUnitCategory = nu.UnitCategory
		if usr.RegisteredUnitCategory == "" {
			usr.RegisteredUnitCategory = unit.ParseCategory("", nu.UnitName)
		}
		usr.AssignedUnitID = NewPlaceholder(now)

		// the unit may already have been imported
		units, err := svc.units(ctx, usr.SchoolID)
		if err != nil {
			return User{}, err
		}
		usr, _ = ResolveTeacherUnit(usr, units)
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	if err := svc.store.Apply(ctx, core.CreateDoc(core.Users, usr.ID, usr.SchoolID, usr.Doc())); err != nil {
		if errors.Cause(err) == core.ErrDocExists {
			return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
		}
		return User{}, errors.Wrap(err, "creating user")
	}
	svc.logger.Info(fmt.Sprintf("user %s registered as %s", usr.ID, usr.Role))
	return usr, nil
}

func (svc *service) Get(ctx context.Context, id string) (User, error) {
	var rec record
	if err := svc.store.Get(ctx, core.Users, id, &rec); err != nil {
		if errors.Cause(err) == core.ErrDocNotFound {
			return User{}, ErrNotFound
		}
		return User{}, errors.Wrap(err, "getting user")
	}
	return rec.user(), nil
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" {
		return User{}, ErrNotFound
	}
	return svc.Get(ctx, email)
}

func (svc *service) Query(ctx context.Context, schoolID string, filter QueryFilter) ([]User, error) {
	var recs []record
	if err := svc.store.Query(ctx, core.Users, schoolID, &recs); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	filter.Clean()
	users := make([]User, 0, len(recs))
	for _, rec := range recs {
		if usr := rec.user(); filter.match(usr) {
			users = append(users, usr)
		}
	}
	return users, nil
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	now := core.Now()
	usr.LastLogin = &now
	if err := svc.save(ctx, usr); err != nil {
		return User{}, errors.Wrap(err, "saving last login")
	}
	return usr, nil
}

func (svc *service) SetPassword(ctx context.Context, email, pwd string) error {
	if pwd == "" {
		return errNoPasswordToSet
	}
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = core.Now()
	return errors.Wrap(svc.save(ctx, usr), "saving password")
}

func (svc *service) Delete(ctx context.Context, schoolID, id string) error {
	usr, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	if usr.SchoolID != schoolID {
		return ErrNotFound
	}
	if !usr.IsAdvisor() {
		return core.NewValidationError(ErrNotAdvisor, core.FieldError{Field: "id", Error: ErrNotAdvisor.Error()})
	}
	return errors.Wrap(svc.store.Apply(ctx, core.DeleteDoc(core.Users, usr.ID, usr.SchoolID)), "deleting user")
}

func (svc *service) ResolveUnit(ctx context.Context, profile User) (User, error) {
	if !profile.HasPlaceholderUnit() {
		return profile, nil
	}
	units, err := svc.units(ctx, profile.SchoolID)
	if err != nil {
		return profile, err
	}
	linked, ok := ResolveTeacherUnit(profile, units)
	if !ok {
		return profile, nil
	}
	linked.UpdatedAt = core.Now()
	if err = svc.save(ctx, linked); err != nil {
		return profile, errors.Wrap(err, "saving linked unit")
	}
	svc.logger.Info(fmt.Sprintf("advisor %s linked to unit %s", linked.ID, linked.AssignedUnitID))
	return linked, nil
}

func (svc *service) LinkPending(ctx context.Context, schoolID string) (int, error) {
	pending := true
	users, err := svc.Query(ctx, schoolID, QueryFilter{Pending: &pending})
	if err != nil {
		return 0, err
	}
	if len(users) == 0 {
		return 0, nil
	}
	units, err := svc.units(ctx, schoolID)
	if err != nil {
		return 0, err
	}

	now := core.Now()
	writes := make([]core.Write, 0, len(users))
	for _, usr := range users {
		if linked, ok := ResolveTeacherUnit(usr, units); ok {
			linked.UpdatedAt = now
			writes = append(writes, core.UpdateDoc(core.Users, linked.ID, linked.SchoolID, linked.Doc()))
		}
	}
	if len(writes) == 0 {
		return 0, nil
	}
	if err = svc.store.Apply(ctx, writes...); err != nil {
		return 0, errors.Wrap(err, "linking pending advisors")
	}
	svc.logger.Info(fmt.Sprintf("linked %d pending advisors of school %s", len(writes), schoolID))
	return len(writes), nil
}

func (svc *service) save(ctx context.Context, usr User) error {
	return svc.store.Apply(ctx, core.UpdateDoc(core.Users, usr.ID, usr.SchoolID, usr.Doc()))
}

func (svc *service) units(ctx context.Context, schoolID string) ([]unit.Unit, error) {
	var units []unit.Unit
	if err := svc.store.Query(ctx, core.Units, schoolID, &units); err != nil {
		return nil, errors.Wrap(err, "querying units")
	}
	return units, nil
}
