package announcement

import (
	"time"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/user"
)

// DateLayout is the layout of Announcement.Date.
const DateLayout = "2006-01-02"

// Publishers are the roles that may post, edit and remove announcements. Every role reads them.
var Publishers = []string{user.RoleSecretary, user.RoleAssistantPrincipal}

// Announcement is a notice posted to every teacher of a school.
type Announcement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Date        string    `json:"date"` // day of first publication
	AuthorID    string    `json:"author_id"`
	SchoolID    string    `json:"school_id"`
	IsImportant bool      `json:"is_important"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type NewAnnouncement struct {
	Title       string `json:"title" validate:"notblank"`
	Content     string `json:"content" validate:"notblank"`
	IsImportant bool   `json:"is_important"`
}

func (na *NewAnnouncement) Clean() {
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
}

func canPublish(role string) bool {
	for _, r := range Publishers {
		if r == role {
			return true
		}
	}
	return false
}
