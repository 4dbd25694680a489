package roster

import (
	"strings"
	"time"

	"github.com/trezcool/kokulite/core"
)

type ColumnRole string

// Column roles
const (
	ColumnIgnore       ColumnRole = "IGNORE"
	ColumnStudentName  ColumnRole = "STUDENT_NAME"
	ColumnClass        ColumnRole = "CLASS"
	ColumnUnitCategory ColumnRole = "UNIT_CATEGORY"
	ColumnUnitName     ColumnRole = "UNIT_NAME"
	ColumnTeacherName  ColumnRole = "TEACHER_NAME"
)

var ColumnRoles = []ColumnRole{ColumnIgnore, ColumnStudentName, ColumnClass, ColumnUnitCategory, ColumnUnitName, ColumnTeacherName}

// ParseMapping reads a comma separated list of column roles. Blank entries are ignored columns.
func ParseMapping(s string) []ColumnRole {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	mapping := make([]ColumnRole, len(parts))
	for i, p := range parts {
		if role := ColumnRole(strings.ToUpper(strings.TrimSpace(p))); role != "" {
			mapping[i] = role
		} else {
			mapping[i] = ColumnIgnore
		}
	}
	return mapping
}

// DefaultPosition is given to every imported student.
const DefaultPosition = "Member"

type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Class     string    `json:"class"`
	UnitID    string    `json:"unit_id"`
	SchoolID  string    `json:"school_id"`
	Position  string    `json:"position,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewStudent is a student an advisor adds to, or edits in, their own unit.
type NewStudent struct {
	Name     string `json:"name" validate:"notblank"`
	Class    string `json:"class" validate:"notblank"`
	Position string `json:"position"`
}

func (ns *NewStudent) Clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.Class = core.CleanString(ns.Class)
	ns.Position = core.CleanString(ns.Position)
	if ns.Position == "" {
		ns.Position = DefaultPosition
	}
}

// ImportRequest is a table of raw cells plus the role of each column.
// Mapping may be shorter than a row: unmapped cells are ignored.
type ImportRequest struct {
	Rows       [][]string   `json:"rows"`
	Mapping    []ColumnRole `json:"mapping" validate:"required,dive,column_role"`
	SchoolID   string       `json:"school_id"`
	SchoolName string       `json:"school_name"`
}

func (req *ImportRequest) Clean(actorSchoolID string) {
	req.SchoolID = core.CleanString(req.SchoolID)
	req.SchoolName = core.CleanString(req.SchoolName)
	if req.SchoolID == "" {
		req.SchoolID = actorSchoolID
	}
}

// Result counts what an import wrote.
type Result struct {
	UnitsCreated    int `json:"units_created"`
	TeachersCreated int `json:"teachers_created"`
	TeachersUpdated int `json:"teachers_updated"`
	StudentsCreated int `json:"students_created"`
	TeachersLinked  int `json:"teachers_linked"`
}

type StudentFilter struct {
	UnitID string `query:"unit_id"`
	Class  string `query:"class"`
}
