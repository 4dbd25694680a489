package achievement

import (
	"time"

	"github.com/trezcool/kokulite/core"
)

// Levels
const (
	LevelSchool        = "SCHOOL"
	LevelDistrict      = "DISTRICT"
	LevelState         = "STATE"
	LevelNational      = "NATIONAL"
	LevelInternational = "INTERNATIONAL"
)

// Categories
const (
	CategoryUnit       = "UNIT"
	CategoryIndividual = "INDIVIDUAL"
)

// Statuses
const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusVerified  = "VERIFIED"
)

// Actions
const (
	ActionCreate  = "CREATE"
	ActionEdit    = "EDIT"
	ActionSubmit  = "SUBMIT"
	ActionApprove = "APPROVE"
	ActionDelete  = "DELETE"
)

var (
	Levels     = []string{LevelSchool, LevelDistrict, LevelState, LevelNational, LevelInternational}
	Categories = []string{CategoryUnit, CategoryIndividual}
	Statuses   = []string{StatusDraft, StatusSubmitted, StatusVerified}
	Actions    = []string{ActionEdit, ActionSubmit, ActionApprove}
)

// Achievement is an award won by a unit or by one of its students.
type Achievement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Level       string    `json:"level"`
	Category    string    `json:"category"`
	StudentID   string    `json:"student_id,omitempty"`
	StudentName string    `json:"student_name,omitempty"`
	UnitID      string    `json:"unit_id"`
	SchoolID    string    `json:"school_id"`
	Date        string    `json:"date"`
	Result      string    `json:"result"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewAchievement holds the fields an advisor sets on creation and edits while in DRAFT.
type NewAchievement struct {
	Title     string `json:"title" validate:"notblank"`
	Level     string `json:"level" validate:"required,achievement_level"`
	Category  string `json:"category" validate:"required,achievement_category"`
	StudentID string `json:"student_id"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Result    string `json:"result" validate:"notblank"`
}

func (na *NewAchievement) Clean() {
	na.Title = core.CleanString(na.Title)
	na.Level = core.CleanString(na.Level)
	na.Category = core.CleanString(na.Category)
	na.StudentID = core.CleanString(na.StudentID)
	na.Date = core.CleanString(na.Date)
	na.Result = core.CleanString(na.Result)
	if na.Category != CategoryIndividual {
		na.StudentID = ""
	}
}

// Command is a transition request. Edit is required by EDIT.
type Command struct {
	Action         string          `json:"action" validate:"required,achievement_action"`
	Edit           *NewAchievement `json:"edit"`
	ExpectedStatus string          `json:"expected_status" validate:"omitempty,achievement_status"`
}

type QueryFilter struct {
	Statuses []string `query:"status"`
	Level    string   `query:"level"`
}

func (qf QueryFilter) match(a Achievement) bool {
	if qf.Level != "" && a.Level != qf.Level {
		return false
	}
	if len(qf.Statuses) == 0 {
		return true
	}
	for _, s := range qf.Statuses {
		if s == a.Status {
			return true
		}
	}
	return false
}
