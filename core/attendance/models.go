package attendance

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/roster"
	"github.com/trezcool/kokulite/core/user"
)

// DateLayout is the layout of every activity date.
const DateLayout = "2006-01-02"

const actionRecord = "RECORD_ATTENDANCE"

var errUnknownStudent = errors.New("present students must belong to the unit")

// Record is an attendance session of a unit. It is immutable once created.
type Record struct {
	ID                string    `json:"id"`
	Date              string    `json:"date"`
	ActivityName      string    `json:"activity_name"`
	UnitID            string    `json:"unit_id"`
	SchoolID          string    `json:"school_id"`
	StudentIDsPresent []string  `json:"student_ids_present"`
	TotalStudents     int       `json:"total_students"` // unit roster size when recorded
	CreatedBy         string    `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"` // UTC
}

type NewRecord struct {
	Date              string   `json:"date" validate:"required,datetime=2006-01-02"`
	ActivityName      string   `json:"activity_name" validate:"notblank"`
	StudentIDsPresent []string `json:"student_ids_present"`
}

func (nr *NewRecord) Clean() {
	nr.Date = core.CleanString(nr.Date)
	nr.ActivityName = core.CleanString(nr.ActivityName)
}

// Build checks nr against the roster of the actor's unit and returns the record to store.
// Duplicate student ids are collapsed.
func Build(actor user.Actor, nr NewRecord, students []roster.Student, id string, now time.Time) (Record, error) {
	if actor.Role != user.RoleAdvisor {
		return Record{}, core.NewAuthorizationError(actor.Role, actionRecord, user.RoleAdvisor)
	}
	if actor.UnitID == "" {
		return Record{}, core.NewScopeError(actor.Role, actionRecord, "no unit is assigned to you yet")
	}

	members := make(map[string]bool, len(students))
	for _, s := range students {
		if s.SchoolID == actor.SchoolID && s.UnitID == actor.UnitID {
			members[s.ID] = true
		}
	}
	present := make([]string, 0, len(nr.StudentIDsPresent))
	seen := make(map[string]bool, len(nr.StudentIDsPresent))
	for _, sid := range nr.StudentIDsPresent {
		if seen[sid] {
			continue
		}
		if !members[sid] {
			return Record{}, core.NewValidationError(errUnknownStudent, core.FieldError{Field: "student_ids_present", Error: errUnknownStudent.Error()})
		}
		seen[sid] = true
		present = append(present, sid)
	}

	return Record{
		ID:                id,
		Date:              nr.Date,
		ActivityName:      nr.ActivityName,
		UnitID:            actor.UnitID,
		SchoolID:          actor.SchoolID,
		StudentIDsPresent: present,
		TotalStudents:     len(members),
		CreatedBy:         actor.ID,
		CreatedAt:         now,
	}, nil
}
