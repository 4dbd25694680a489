package report

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/attendance"
	"github.com/trezcool/kokulite/core/user"
	"github.com/trezcool/kokulite/core/workflow"
)

// ReopenPrefix tags the feedback of an assistant principal.
const ReopenPrefix = "[Assistant Principal] "

var (
	errTitleRequired    = errors.New("title is required")
	errContentRequired  = errors.New("content is required")
	errTooManyImages    = errors.Errorf("a report cannot have more than %d images", MaxImages)
	errFeedbackRequired = errors.New("feedback is required")
	errAttendanceUnit   = errors.New("attendance record not found in your unit")
	errAttendanceTaken  = errors.New("a report already exists for this attendance record")
)

// Machine is the report transition table.
var Machine = workflow.Machine{
	Name: "report",
	Rules: map[workflow.Key]string{
		{Role: user.RoleAdvisor, From: "", Action: ActionCreate}:                        StatusDraft,
		{Role: user.RoleAdvisor, From: StatusDraft, Action: ActionSave}:                 StatusDraft,
		{Role: user.RoleAdvisor, From: StatusDraft, Action: ActionSubmit}:               StatusSubmitted,
		{Role: user.RoleAdvisor, From: StatusNeedsCorrection, Action: ActionSave}:       StatusNeedsCorrection,
		{Role: user.RoleAdvisor, From: StatusNeedsCorrection, Action: ActionResubmit}:   StatusSubmitted,
		{Role: user.RoleSecretary, From: StatusSubmitted, Action: ActionApprove}:        StatusVerified,
		{Role: user.RoleSecretary, From: StatusSubmitted, Action: ActionReject}:         StatusNeedsCorrection,
		{Role: user.RoleAssistantPrincipal, From: StatusVerified, Action: ActionReopen}: StatusNeedsCorrection,
	},
}

func fieldErr(field string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

func checkDraft(r Report, action string) error {
	if r.Title == "" {
		return fieldErr("title", errTitleRequired)
	}
	if (action == ActionSubmit || action == ActionResubmit) && r.Content == "" {
		return fieldErr("content", errContentRequired)
	}
	if len(r.Images) > MaxImages {
		return fieldErr("images", errTooManyImages)
	}
	return nil
}

// New returns a DRAFT report of the actor's unit.
// att is the attendance record named by d.AttendanceID, nil when none was found;
// existing are the reports of the school, used to keep one report per attendance record.
func New(actor user.Actor, d Draft, att *attendance.Record, existing []Report, id string, now time.Time) (Report, error) {
	status, err := Machine.Next(actor.Role, "", ActionCreate)
	if err != nil {
		return Report{}, err
	}
	if actor.UnitID == "" {
		return Report{}, core.NewScopeError(actor.Role, ActionCreate, "no unit is assigned to you yet")
	}

	r := Report{
		ID:        id,
		Date:      d.Date,
		UnitID:    actor.UnitID,
		SchoolID:  actor.SchoolID,
		TeacherID: actor.ID,
		Title:     d.Title,
		Content:   d.Content,
		Images:    append([]string{}, d.Images...),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if d.AttendanceID != "" {
		if att == nil || att.ID != d.AttendanceID || att.SchoolID != actor.SchoolID || att.UnitID != actor.UnitID {
			return Report{}, fieldErr("attendance_id", errAttendanceUnit)
		}
		for _, other := range existing {
			if other.AttendanceID == d.AttendanceID {
				return Report{}, fieldErr("attendance_id", errAttendanceTaken)
			}
		}
		r.AttendanceID = att.ID
		if r.Date == "" {
			r.Date = att.Date
		}
	}
	if r.Date == "" {
		r.Date = now.Format(attendance.DateLayout)
	}
	if err = checkDraft(r, ActionCreate); err != nil {
		return Report{}, err
	}
	return r, nil
}

// Apply performs cmd on r on behalf of actor and returns the updated report.
// On error r is returned unchanged.
func Apply(r Report, actor user.Actor, cmd Command, now time.Time) (Report, error) {
	if actor.SchoolID != r.SchoolID {
		return r, core.NewScopeError(actor.Role, cmd.Action, "the report belongs to another school")
	}
	if !Machine.Allows(actor.Role, cmd.Action) {
		return r, core.NewAuthorizationError(actor.Role, cmd.Action, Machine.Roles(cmd.Action)...)
	}
	if actor.Role == user.RoleAdvisor && (actor.UnitID == "" || actor.UnitID != r.UnitID) {
		return r, core.NewScopeError(actor.Role, cmd.Action, "the report belongs to another unit")
	}
	if cmd.ExpectedStatus != "" && cmd.ExpectedStatus != r.Status {
		return r, core.NewConflictError(cmd.ExpectedStatus, r.Status)
	}
	next, err := Machine.Next(actor.Role, r.Status, cmd.Action)
	if err != nil {
		return r, err
	}

	out := r
	out.Images = append([]string{}, r.Images...)
	if actor.Role == user.RoleAdvisor {
		if d := cmd.Draft; d != nil {
			out.Title = d.Title
			out.Content = d.Content
			out.Images = append([]string{}, d.Images...)
			if d.Date != "" {
				out.Date = d.Date
			}
		}
		if err = checkDraft(out, cmd.Action); err != nil {
			return r, err
		}
	}

	switch feedback := core.CleanString(cmd.Feedback); {
	case cmd.Action == ActionReject || cmd.Action == ActionReopen:
		if feedback == "" {
			return r, fieldErr("feedback", errFeedbackRequired)
		}
		if cmd.Action == ActionReopen {
			feedback = ReopenPrefix + feedback
		}
		out.Feedback = feedback
	case next != StatusNeedsCorrection:
		out.Feedback = ""
	}

	out.Status = next
	out.UpdatedAt = now
	return out, nil
}
