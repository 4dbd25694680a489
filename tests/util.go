package testutil

import (
	"context"
	"io"
	"log"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/achievement"
	"github.com/trezcool/kokulite/core/attendance"
	"github.com/trezcool/kokulite/core/report"
	"github.com/trezcool/kokulite/core/roster"
	"github.com/trezcool/kokulite/core/unit"
	"github.com/trezcool/kokulite/core/user"
	logsvc "github.com/trezcool/kokulite/services/logger"
	inmemdb "github.com/trezcool/kokulite/storage/database/inmem"
)

// NewLogger returns a disabled RollbarLogger writing nowhere.
func NewLogger() core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.Conf)
	logger.Enable(false)
	return logger
}

// NewValidator returns a validator with every custom tag and translation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	unit.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	roster.InitValidators(validate, translator)
	report.InitValidators(validate, translator)
	achievement.InitValidators(validate, translator)
	return validate, translator
}

func NewStore() *inmemdb.Store {
	return inmemdb.New()
}

func apply(t *testing.T, store core.Store, w core.Write) {
	t.Helper()
	if err := store.Apply(context.Background(), w); err != nil {
		t.Fatalf("apply(%s %s/%s): %v", w.Op, w.Collection, w.ID, err)
	}
}

func CreateUnit(t *testing.T, store core.Store, schoolID, name string, category unit.Category) unit.Unit {
	u := unit.Unit{ID: uuid.New().String(), Name: name, Category: category, SchoolID: schoolID}
	apply(t, store, core.CreateDoc(core.Units, u.ID, u.SchoolID, u))
	return u
}

// CreateUser stores usr as is, hashing pwd when given. ID defaults to the email.
func CreateUser(t *testing.T, store core.Store, usr user.User, pwd string) user.User {
	if usr.ID == "" {
		usr.ID = usr.Email
	}
	now := core.Now()
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt, usr.UpdatedAt = now, now
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser(): %v", err)
		}
	}
	apply(t, store, core.CreateDoc(core.Users, usr.ID, usr.SchoolID, usr.Doc()))
	return usr
}

func CreateAdvisor(t *testing.T, store core.Store, schoolID, name, email string, u unit.Unit) user.User {
	return CreateUser(t, store, user.User{
		Name:                   name,
		Email:                  email,
		Role:                   user.RoleAdvisor,
		SchoolID:               schoolID,
		SchoolName:             "SMK " + schoolID,
		AssignedUnitID:         u.ID,
		RegisteredUnitName:     u.Name,
		RegisteredUnitCategory: u.Category,
	}, "")
}

func CreateStaff(t *testing.T, store core.Store, schoolID, name, email, role string) user.User {
	return CreateUser(t, store, user.User{
		Name:       name,
		Email:      email,
		Role:       role,
		SchoolID:   schoolID,
		SchoolName: "SMK " + schoolID,
	}, "")
}

func CreateStudent(t *testing.T, store core.Store, u unit.Unit, name, class string) roster.Student {
	s := roster.Student{
		ID:        uuid.New().String(),
		Name:      name,
		Class:     class,
		UnitID:    u.ID,
		SchoolID:  u.SchoolID,
		Position:  roster.DefaultPosition,
		CreatedAt: core.Now(),
	}
	apply(t, store, core.CreateDoc(core.Students, s.ID, s.SchoolID, s))
	return s
}

func CreateAttendance(t *testing.T, store core.Store, u unit.Unit, date string, present ...string) attendance.Record {
	rec := attendance.Record{
		ID:                uuid.New().String(),
		Date:              date,
		ActivityName:      "Weekly meeting",
		UnitID:            u.ID,
		SchoolID:          u.SchoolID,
		StudentIDsPresent: append([]string{}, present...),
		CreatedAt:         core.Now(),
	}
	apply(t, store, core.CreateDoc(core.Attendance, rec.ID, rec.SchoolID, rec))
	return rec
}

// CreateReport stores r as is; ID defaults to a fresh uuid and Images to an empty list.
func CreateReport(t *testing.T, store core.Store, r report.Report) report.Report {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Images == nil {
		r.Images = []string{}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = core.Now()
		r.UpdatedAt = r.CreatedAt
	}
	apply(t, store, core.CreateDoc(core.Reports, r.ID, r.SchoolID, r))
	return r
}

func CreateAchievement(t *testing.T, store core.Store, a achievement.Achievement) achievement.Achievement {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = core.Now()
		a.UpdatedAt = a.CreatedAt
	}
	apply(t, store, core.CreateDoc(core.Achievements, a.ID, a.SchoolID, a))
	return a
}
