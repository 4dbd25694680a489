package review

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/achievement"
	"github.com/trezcool/kokulite/core/attendance"
	"github.com/trezcool/kokulite/core/report"
	"github.com/trezcool/kokulite/core/user"
)

// ReportQueue is the report work of an actor. Advisors get Pending, Drafts and Done;
// the secretary and the assistant principal get Queue.
type ReportQueue struct {
	Pending []attendance.Record `json:"pending,omitempty"`
	Drafts  []report.Report     `json:"drafts,omitempty"`
	Done    []report.Report     `json:"done,omitempty"`
	Queue   []report.Report     `json:"queue,omitempty"`
}

type (
	Service interface {
		Reports(ctx context.Context, actor user.Actor) (ReportQueue, error)
		// Achievements returns the achievements awaiting the actor; advisors have none.
		Achievements(ctx context.Context, actor user.Actor) ([]achievement.Achievement, error)
	}

	service struct {
		store core.Store
	}
)

var _ Service = (*service)(nil)

func NewService(store core.Store) Service {
	return &service{store: store}
}

func (svc *service) Reports(ctx context.Context, actor user.Actor) (ReportQueue, error) {
	var reports []report.Report
	if err := svc.store.Query(ctx, core.Reports, actor.SchoolID, &reports); err != nil {
		return ReportQueue{}, errors.Wrap(err, "querying reports")
	}

	switch actor.Role {
	case user.RoleAdvisor:
		if actor.UnitID == "" {
			return ReportQueue{}, nil
		}
		var sessions []attendance.Record
		if err := svc.store.Query(ctx, core.Attendance, actor.SchoolID, &sessions); err != nil {
			return ReportQueue{}, errors.Wrap(err, "querying attendance")
		}
		return ReportQueue{
			Pending: PendingForAdvisor(actor.SchoolID, actor.UnitID, sessions, reports),
			Drafts:  DraftsForAdvisor(actor.SchoolID, actor.UnitID, reports),
			Done:    DoneForAdvisor(actor.SchoolID, actor.UnitID, reports),
		}, nil
	case user.RoleSecretary:
		return ReportQueue{Queue: QueueForSecretary(actor.SchoolID, reports)}, nil
	case user.RoleAssistantPrincipal:
		return ReportQueue{Queue: QueueForAssistantPrincipal(actor.SchoolID, reports)}, nil
	}
	return ReportQueue{}, core.NewAuthorizationError(actor.Role, "REVIEW", user.AllRoles...)
}

func (svc *service) Achievements(ctx context.Context, actor user.Actor) ([]achievement.Achievement, error) {
	var achievements []achievement.Achievement
	if err := svc.store.Query(ctx, core.Achievements, actor.SchoolID, &achievements); err != nil {
		return nil, errors.Wrap(err, "querying achievements")
	}
	switch actor.Role {
	case user.RoleSecretary:
		return AchievementsForSecretary(actor.SchoolID, achievements), nil
	case user.RoleAssistantPrincipal:
		return AchievementsForAssistantPrincipal(actor.SchoolID, achievements), nil
	}
	return []achievement.Achievement{}, nil
}
