package announcement

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/user"
)

const (
	actionPublish = "PUBLISH"
	actionEdit    = "EDIT_ANNOUNCEMENT"
	actionDelete  = "DELETE_ANNOUNCEMENT"
)

var ErrNotFound = errors.New("announcement not found")

type (
	Service interface {
		Create(ctx context.Context, actor user.Actor, na NewAnnouncement) (Announcement, error)
		Update(ctx context.Context, actor user.Actor, id string, na NewAnnouncement) (Announcement, error)
		Delete(ctx context.Context, actor user.Actor, id string) error
		Get(ctx context.Context, actor user.Actor, id string) (Announcement, error)
		// Query returns the announcements of the actor's school, latest first.
		Query(ctx context.Context, actor user.Actor) ([]Announcement, error)
	}

	service struct {
		store    core.Store
		validate *validator.Validate
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(store core.Store, validate *validator.Validate, logger core.Logger) Service {
	return &service{store: store, validate: validate, logger: logger}
}

func authorize(actor user.Actor, action string) error {
	if !canPublish(actor.Role) {
		return core.NewAuthorizationError(actor.Role, action, Publishers...)
	}
	return nil
}

func (svc *service) Create(ctx context.Context, actor user.Actor, na NewAnnouncement) (Announcement, error) {
	if err := authorize(actor, actionPublish); err != nil {
		return Announcement{}, err
	}
	na.Clean()
	if err := svc.validate.Struct(na); err != nil {
		return Announcement{}, err
	}

	now := core.Now()
	a := Announcement{
		ID:          uuid.New().String(),
		Title:       na.Title,
		Content:     na.Content,
		Date:        now.Format(DateLayout),
		AuthorID:    actor.ID,
		SchoolID:    actor.SchoolID,
		IsImportant: na.IsImportant,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := svc.store.Apply(ctx, core.CreateDoc(core.Announcements, a.ID, a.SchoolID, a)); err != nil {
		return Announcement{}, errors.Wrap(err, "creating announcement")
	}
	svc.logger.Info(fmt.Sprintf("announcement %s published by %s", a.ID, actor.ID))
	return a, nil
}

func (svc *service) Update(ctx context.Context, actor user.Actor, id string, na NewAnnouncement) (Announcement, error) {
	if err := authorize(actor, actionEdit); err != nil {
		return Announcement{}, err
	}
	a, err := svc.Get(ctx, actor, id)
	if err != nil {
		return Announcement{}, err
	}
	na.Clean()
	if err = svc.validate.Struct(na); err != nil {
		return Announcement{}, err
	}

	a.Title, a.Content, a.IsImportant = na.Title, na.Content, na.IsImportant
	a.UpdatedAt = core.Now()
	if err = svc.store.Apply(ctx, core.UpdateDoc(core.Announcements, a.ID, a.SchoolID, a)); err != nil {
		return Announcement{}, errors.Wrap(err, "saving announcement")
	}
	return a, nil
}

func (svc *service) Delete(ctx context.Context, actor user.Actor, id string) error {
	if err := authorize(actor, actionDelete); err != nil {
		return err
	}
	a, err := svc.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err = svc.store.Apply(ctx, core.DeleteDoc(core.Announcements, a.ID, a.SchoolID)); err != nil {
		return errors.Wrap(err, "deleting announcement")
	}
	svc.logger.Info(fmt.Sprintf("announcement %s removed by %s", a.ID, actor.ID))
	return nil
}

func (svc *service) Get(ctx context.Context, actor user.Actor, id string) (Announcement, error) {
	var a Announcement
	if err := svc.store.Get(ctx, core.Announcements, id, &a); err != nil {
		if errors.Cause(err) == core.ErrDocNotFound {
			return Announcement{}, ErrNotFound
		}
		return Announcement{}, errors.Wrap(err, "getting announcement")
	}
	if a.SchoolID != actor.SchoolID {
		return Announcement{}, ErrNotFound
	}
	return a, nil
}

func (svc *service) Query(ctx context.Context, actor user.Actor) ([]Announcement, error) {
	var all []Announcement
	if err := svc.store.Query(ctx, core.Announcements, actor.SchoolID, &all); err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date > all[j].Date
	})
	return all, nil
}
