package report

import (
	"time"

	"github.com/trezcool/kokulite/core"
)

// Statuses
const (
	StatusDraft           = "DRAFT"
	StatusSubmitted       = "SUBMITTED"
	StatusNeedsCorrection = "NEEDS_CORRECTION"
	StatusVerified        = "VERIFIED"
)

// Actions
const (
	ActionCreate   = "CREATE"
	ActionSave     = "SAVE"
	ActionSubmit   = "SUBMIT"
	ActionResubmit = "RESUBMIT"
	ActionApprove  = "APPROVE"
	ActionReject   = "REJECT"
	ActionReopen   = "REOPEN"
)

// MaxImages is the number of images a report may carry.
const MaxImages = 5

var (
	Statuses = []string{StatusDraft, StatusSubmitted, StatusNeedsCorrection, StatusVerified}

	// Actions a Command may carry; reports are created through Service.Create.
	Actions = []string{ActionSave, ActionSubmit, ActionResubmit, ActionApprove, ActionReject, ActionReopen}
)

// Report is an activity report of a unit, reviewed by the secretary and the assistant principal.
// Feedback is only set while the report needs correction.
type Report struct {
	ID           string    `json:"id"`
	AttendanceID string    `json:"attendance_id,omitempty"`
	Date         string    `json:"date"`
	UnitID       string    `json:"unit_id"`
	SchoolID     string    `json:"school_id"`
	TeacherID    string    `json:"teacher_id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Images       []string  `json:"images"`
	Status       string    `json:"status"`
	Feedback     string    `json:"feedback"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// Draft holds the fields an advisor edits. An empty Date keeps the current one.
type Draft struct {
	AttendanceID string   `json:"attendance_id"` // only read on creation
	Date         string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Images       []string `json:"images"`
}

func (d *Draft) Clean() {
	d.AttendanceID = core.CleanString(d.AttendanceID)
	d.Date = core.CleanString(d.Date)
	d.Title = core.CleanString(d.Title)
	d.Content = core.CleanString(d.Content)
	images := make([]string, 0, len(d.Images))
	for _, img := range d.Images {
		if img = core.CleanString(img); img != "" {
			images = append(images, img)
		}
	}
	d.Images = images
}

// Command is a transition request. ExpectedStatus, when set, must match the stored status.
type Command struct {
	Action         string `json:"action" validate:"required,report_action"`
	Feedback       string `json:"feedback"`
	Draft          *Draft `json:"draft"`
	ExpectedStatus string `json:"expected_status" validate:"omitempty,report_status"`
}

type QueryFilter struct {
	Statuses []string `query:"status"`
	UnitID   string   `query:"unit_id"`
}

func (qf QueryFilter) match(r Report) bool {
	if qf.UnitID != "" && r.UnitID != qf.UnitID {
		return false
	}
	if len(qf.Statuses) == 0 {
		return true
	}
	for _, s := range qf.Statuses {
		if s == r.Status {
			return true
		}
	}
	return false
}
