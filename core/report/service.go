package report

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/attendance"
	"github.com/trezcool/kokulite/core/user"
)

var ErrNotFound = errors.New("report not found")

// statusTemplate is the email sent to the author of a report on review.
const statusTemplate = "report_status"

type (
	Service interface {
		Create(ctx context.Context, actor user.Actor, d Draft) (Report, error)
		// Update saves the edits of an advisor; the status is kept.
		Update(ctx context.Context, actor user.Actor, id string, d Draft, expectedStatus string) (Report, error)
		// Transition re-reads the report and applies cmd to it.
		Transition(ctx context.Context, actor user.Actor, id string, cmd Command) (Report, error)
		Get(ctx context.Context, actor user.Actor, id string) (Report, error)
		// Query returns the reports visible to actor: their unit's for an advisor, the school's otherwise.
		Query(ctx context.Context, actor user.Actor, filter QueryFilter) ([]Report, error)
	}

	service struct {
		store    core.Store
		usrSvc   user.Service
		mailSvc  core.EmailService
		validate *validator.Validate
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(store core.Store, usrSvc user.Service, mailSvc core.EmailService, validate *validator.Validate, logger core.Logger) Service {
	return &service{store: store, usrSvc: usrSvc, mailSvc: mailSvc, validate: validate, logger: logger}
}

func (svc *service) Create(ctx context.Context, actor user.Actor, d Draft) (Report, error) {
	d.Clean()
	if err := svc.validate.Struct(d); err != nil {
		return Report{}, err
	}

	var att *attendance.Record
	if d.AttendanceID != "" {
		var rec attendance.Record
		if err := svc.store.Get(ctx, core.Attendance, d.AttendanceID, &rec); err == nil {
			att = &rec
		} else if errors.Cause(err) != core.ErrDocNotFound {
			return Report{}, errors.Wrap(err, "getting attendance record")
		}
	}
	existing, err := svc.query(ctx, actor.SchoolID)
	if err != nil {
		return Report{}, err
	}

	r, err := New(actor, d, att, existing, uuid.New().String(), core.Now())
	if err != nil {
		return Report{}, err
	}
	if err = svc.store.Apply(ctx, core.CreateDoc(core.Reports, r.ID, r.SchoolID, r)); err != nil {
		return Report{}, errors.Wrap(err, "creating report")
	}
	svc.logger.Info(fmt.Sprintf("report %s created by %s", r.ID, actor.ID))
	return r, nil
}

func (svc *service) Update(ctx context.Context, actor user.Actor, id string, d Draft, expectedStatus string) (Report, error) {
	return svc.Transition(ctx, actor, id, Command{Action: ActionSave, Draft: &d, ExpectedStatus: expectedStatus})
}

func (svc *service) Transition(ctx context.Context, actor user.Actor, id string, cmd Command) (Report, error) {
	cmd.Action = core.CleanString(cmd.Action)
	cmd.ExpectedStatus = core.CleanString(cmd.ExpectedStatus)
	if cmd.Draft != nil {
		cmd.Draft.Clean()
	}
	if err := svc.validate.Struct(cmd); err != nil {
		return Report{}, err
	}

	r, err := svc.get(ctx, id)
	if err != nil {
		return Report{}, err
	}
	updated, err := Apply(r, actor, cmd, core.Now())
	if err != nil {
		return Report{}, err
	}
	if err = svc.store.Apply(ctx, core.UpdateDoc(core.Reports, updated.ID, updated.SchoolID, updated)); err != nil {
		return Report{}, errors.Wrap(err, "saving report")
	}

	if r.Status != updated.Status {
		svc.logger.Info(fmt.Sprintf("report %s: %s -> %s by %s (%s)", updated.ID, r.Status, updated.Status, actor.ID, cmd.Action))
	}
	switch cmd.Action {
	case ActionApprove, ActionReject, ActionReopen:
		svc.notify(ctx, updated, actor)
	}
	return updated, nil
}

// notify emails the author of r about its new status. Failures are only logged.
func (svc *service) notify(ctx context.Context, r Report, actor user.Actor) {
	if svc.mailSvc == nil {
		return
	}
	author, err := svc.usrSvc.Get(ctx, r.TeacherID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("notifying author of report %s: %v", r.ID, err))
		return
	}
	if author.Email == "" {
		return // imported teachers have no mailbox
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: author.Name, Address: author.Email}},
		Subject:      fmt.Sprintf("Report %q is now %s", r.Title, r.Status),
		TemplateName: statusTemplate,
		TemplateData: map[string]interface{}{
			"Name":     author.Name,
			"Title":    r.Title,
			"Date":     r.Date,
			"Status":   r.Status,
			"Feedback": r.Feedback,
			"Reviewer": actor.Name,
		},
	})
}

func (svc *service) Get(ctx context.Context, actor user.Actor, id string) (Report, error) {
	r, err := svc.get(ctx, id)
	if err != nil {
		return Report{}, err
	}
	if !visible(actor, r) {
		return Report{}, ErrNotFound
	}
	return r, nil
}

func (svc *service) Query(ctx context.Context, actor user.Actor, filter QueryFilter) ([]Report, error) {
	reports, err := svc.query(ctx, actor.SchoolID)
	if err != nil {
		return nil, err
	}
	filtered := make([]Report, 0, len(reports))
	for _, r := range reports {
		if visible(actor, r) && filter.match(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func visible(actor user.Actor, r Report) bool {
	if r.SchoolID != actor.SchoolID {
		return false
	}
	return actor.Role != user.RoleAdvisor || (actor.UnitID != "" && r.UnitID == actor.UnitID)
}

func (svc *service) get(ctx context.Context, id string) (Report, error) {
	var r Report
	if err := svc.store.Get(ctx, core.Reports, id, &r); err != nil {
		if errors.Cause(err) == core.ErrDocNotFound {
			return Report{}, ErrNotFound
		}
		return Report{}, errors.Wrap(err, "getting report")
	}
	return r, nil
}

func (svc *service) query(ctx context.Context, schoolID string) ([]Report, error) {
	var reports []Report
	if err := svc.store.Query(ctx, core.Reports, schoolID, &reports); err != nil {
		return nil, errors.Wrap(err, "querying reports")
	}
	return reports, nil
}
