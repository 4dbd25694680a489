package achievement

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/roster"
	"github.com/trezcool/kokulite/core/user"
	"github.com/trezcool/kokulite/core/workflow"
)

var (
	errStudentRequired = errors.New("individual achievements must name a student of the unit")
	errEditRequired    = errors.New("edit is required")
)

// Machine is the achievement transition table. DELETE removes the document.
var Machine = workflow.Machine{
	Name: "achievement",
	Rules: map[workflow.Key]string{
		{Role: user.RoleAdvisor, From: "", Action: ActionCreate}:                 StatusDraft,
		{Role: user.RoleAdvisor, From: StatusDraft, Action: ActionEdit}:          StatusDraft,
		{Role: user.RoleAdvisor, From: StatusDraft, Action: ActionSubmit}:        StatusSubmitted,
		{Role: user.RoleAdvisor, From: StatusDraft, Action: ActionDelete}:        StatusDraft,
		{Role: user.RoleSecretary, From: StatusSubmitted, Action: ActionApprove}: StatusVerified,
	},
}

func fieldErr(field string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

// fill copies na into a, resolving the student of an INDIVIDUAL achievement among the unit's students.
func fill(a Achievement, na NewAchievement, students []roster.Student) (Achievement, error) {
	a.Title = na.Title
	a.Level = na.Level
	a.Category = na.Category
	a.Date = na.Date
	a.Result = na.Result
	a.StudentID, a.StudentName = "", ""
	if na.Category != CategoryIndividual {
		return a, nil
	}
	for _, s := range students {
		if s.ID == na.StudentID && s.SchoolID == a.SchoolID && s.UnitID == a.UnitID {
			a.StudentID, a.StudentName = s.ID, s.Name
			return a, nil
		}
	}
	return a, fieldErr("student_id", errStudentRequired)
}

// New returns a DRAFT achievement of the actor's unit.
func New(actor user.Actor, na NewAchievement, students []roster.Student, id string, now time.Time) (Achievement, error) {
	status, err := Machine.Next(actor.Role, "", ActionCreate)
	if err != nil {
		return Achievement{}, err
	}
	if actor.UnitID == "" {
		return Achievement{}, core.NewScopeError(actor.Role, ActionCreate, "no unit is assigned to you yet")
	}
	a := Achievement{
		ID:        id,
		UnitID:    actor.UnitID,
		SchoolID:  actor.SchoolID,
		Status:    status,
		CreatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return fill(a, na, students)
}

// authorize checks that actor may perform action on a, whatever its status.
func authorize(a Achievement, actor user.Actor, action string) error {
	if actor.SchoolID != a.SchoolID {
		return core.NewScopeError(actor.Role, action, "the achievement belongs to another school")
	}
	if !Machine.Allows(actor.Role, action) {
		return core.NewAuthorizationError(actor.Role, action, Machine.Roles(action)...)
	}
	if actor.Role == user.RoleAdvisor && (actor.UnitID == "" || actor.UnitID != a.UnitID) {
		return core.NewScopeError(actor.Role, action, "the achievement belongs to another unit")
	}
	return nil
}

// Apply performs cmd on a on behalf of actor. On error a is returned unchanged.
func Apply(a Achievement, actor user.Actor, cmd Command, students []roster.Student, now time.Time) (Achievement, error) {
	if err := authorize(a, actor, cmd.Action); err != nil {
		return a, err
	}
	if cmd.ExpectedStatus != "" && cmd.ExpectedStatus != a.Status {
		return a, core.NewConflictError(cmd.ExpectedStatus, a.Status)
	}
	next, err := Machine.Next(actor.Role, a.Status, cmd.Action)
	if err != nil {
		return a, err
	}

	out := a
	if cmd.Action == ActionEdit {
		if cmd.Edit == nil {
			return a, fieldErr("edit", errEditRequired)
		}
		if out, err = fill(out, *cmd.Edit, students); err != nil {
			return a, err
		}
	}
	out.Status = next
	out.UpdatedAt = now
	return out, nil
}

// CheckDelete returns nil when actor may delete a.
func CheckDelete(a Achievement, actor user.Actor) error {
	if err := authorize(a, actor, ActionDelete); err != nil {
		return err
	}
	_, err := Machine.Next(actor.Role, a.Status, ActionDelete)
	return err
}
