package roster

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/identity"
	"github.com/trezcool/kokulite/core/unit"
	"github.com/trezcool/kokulite/core/user"
)

// ImportedIDPrefix prefixes the ids of teacher accounts created by an import; they have no email to key on.
const ImportedIDPrefix = "imported_"

var errNoUnitColumn = errors.New("a unit name column must be mapped")

// IDGenerator returns a fresh opaque document id on every call.
type IDGenerator func() string

// NewID is the default IDGenerator.
func NewID() string {
	return uuid.New().String()
}

// Snapshot is the state of a school that an import is reconciled against.
type Snapshot struct {
	Units []unit.Unit
	Users []user.User
}

// Plan holds the disjoint write sets of an import.
type Plan struct {
	SchoolID        string
	Units           []unit.Unit
	NewTeachers     []user.User
	UpdatedTeachers []user.User
	Students        []Student
	Linked          []user.User // placeholder advisors whose unit now exists
}

// Writes returns the plan as one batch: units first so every later write references existing units.
func (p Plan) Writes() []core.Write {
	writes := make([]core.Write, 0, len(p.Units)+len(p.NewTeachers)+len(p.UpdatedTeachers)+len(p.Students)+len(p.Linked))
	for _, u := range p.Units {
		writes = append(writes, core.CreateDoc(core.Units, u.ID, u.SchoolID, u))
	}
	for _, t := range p.NewTeachers {
		writes = append(writes, core.CreateDoc(core.Users, t.ID, t.SchoolID, t.Doc()))
	}
	for _, t := range p.UpdatedTeachers {
		writes = append(writes, core.UpdateDoc(core.Users, t.ID, t.SchoolID, t.Doc()))
	}
	for _, s := range p.Students {
		writes = append(writes, core.CreateDoc(core.Students, s.ID, s.SchoolID, s))
	}
	for _, t := range p.Linked {
		writes = append(writes, core.UpdateDoc(core.Users, t.ID, t.SchoolID, t.Doc()))
	}
	return writes
}

func (p Plan) Result() Result {
	return Result{
		UnitsCreated:    len(p.Units),
		TeachersCreated: len(p.NewTeachers),
		TeachersUpdated: len(p.UpdatedTeachers),
		StudentsCreated: len(p.Students),
		TeachersLinked:  len(p.Linked),
	}
}

// columns holds the index of each mapped column, -1 when unmapped.
type columns struct {
	student, class, category, unit, teacher int
}

func mapColumns(mapping []ColumnRole) (columns, error) {
	cols := columns{student: -1, class: -1, category: -1, unit: -1, teacher: -1}
	set := func(idx *int, i int) {
		if *idx < 0 { // a role mapped twice uses its first column
			*idx = i
		}
	}
	for i, role := range mapping {
		switch role {
		case ColumnStudentName:
			set(&cols.student, i)
		case ColumnClass:
			set(&cols.class, i)
		case ColumnUnitCategory:
			set(&cols.category, i)
		case ColumnUnitName:
			set(&cols.unit, i)
		case ColumnTeacherName:
			set(&cols.teacher, i)
		}
	}
	if cols.unit < 0 {
		return cols, core.NewValidationError(errNoUnitColumn, core.FieldError{Field: "mapping", Error: errNoUnitColumn.Error()})
	}
	return cols, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return core.CleanString(row[idx])
}

// Reconcile matches the rows of req against the snapshot of its school and plans the writes that
// create every missing unit exactly once, the students, one teacher per distinct teacher name
// and the links of advisors still waiting for their unit.
// It writes nothing: the caller applies Plan.Writes as a single batch.
func Reconcile(req ImportRequest, snap Snapshot, newID IDGenerator) (Plan, error) {
	cols, err := mapColumns(req.Mapping)
	if err != nil {
		return Plan{}, err
	}

	now := core.Now()
	schoolID := req.SchoolID
	plan := Plan{SchoolID: schoolID}

	units := unit.NewIndex(schoolID, snap.Units)
	unitScope := unit.Scope(schoolID)
	unitsByID := make(map[string]unit.Unit, len(snap.Units))
	for _, u := range snap.Units {
		unitsByID[u.ID] = u
	}

	// pass 1: every distinct unit name yields at most one new unit
	for _, row := range req.Rows {
		name := cell(row, cols.unit)
		if name == "" {
			continue
		}
		if _, ok := units.Resolve(unitScope, name); ok {
			continue
		}
		u := unit.Unit{
			ID:       newID(),
			Name:     name,
			Category: unit.ParseCategory(cell(row, cols.category), name),
			SchoolID: schoolID,
		}
		units.Register(unitScope, u.Name, u.ID)
		unitsByID[u.ID] = u
		plan.Units = append(plan.Units, u)
	}

	// existing advisors, by name
	teacherScope := user.TeacherScope(schoolID)
	teachers := identity.NewIndex()
	advisors := make(map[string]user.User)
	for _, usr := range snap.Users {
		if usr.SchoolID == schoolID && usr.IsAdvisor() {
			teachers.Register(teacherScope, usr.Name, usr.ID)
			advisors[usr.ID] = usr
		}
	}
	seen := identity.NewIndex()
	updated := make(map[string]bool)

	// pass 2: students and teachers, bound to real unit ids
	for _, row := range req.Rows {
		unitID, ok := units.Resolve(unitScope, cell(row, cols.unit))
		if !ok {
			continue
		}

		if name, class := cell(row, cols.student), cell(row, cols.class); name != "" && class != "" {
			plan.Students = append(plan.Students, Student{
				ID:        newID(),
				Name:      name,
				Class:     class,
				UnitID:    unitID,
				SchoolID:  schoolID,
				Position:  DefaultPosition,
				CreatedAt: now,
			})
		}

		teacherName := cell(row, cols.teacher)
		if !seen.Register(teacherScope, teacherName, unitID) {
			continue // blank, or not the first occurrence
		}
		if id, ok := teachers.Resolve(teacherScope, teacherName); ok {
			usr := advisors[id]
			if usr.UnitID() != "" {
				continue // already runs a unit
			}
			usr.AssignedUnitID = unitID
			usr.UpdatedAt = now
			plan.UpdatedTeachers = append(plan.UpdatedTeachers, usr)
			updated[usr.ID] = true
			continue
		}
		u := unitsByID[unitID]
		plan.NewTeachers = append(plan.NewTeachers, user.User{
			ID:                     ImportedIDPrefix + newID(),
			Name:                   teacherName,
			Role:                   user.RoleAdvisor,
			SchoolID:               schoolID,
			SchoolName:             req.SchoolName,
			AssignedUnitID:         unitID,
			RegisteredUnitName:     u.Name,
			RegisteredUnitCategory: u.Category,
			Imported:               true,
			CreatedAt:              now,
			UpdatedAt:              now,
		})
	}

	if len(plan.Students) == 0 && len(plan.NewTeachers) == 0 && len(plan.UpdatedTeachers) == 0 {
		return Plan{}, core.NewReconciliationError("the import produced no students and no teachers")
	}

	// placeholder advisors whose unit now exists
	allUnits := make([]unit.Unit, 0, len(snap.Units)+len(plan.Units))
	allUnits = append(append(allUnits, snap.Units...), plan.Units...)
	for _, usr := range snap.Users {
		if usr.SchoolID != schoolID || updated[usr.ID] {
			continue
		}
		if linked, ok := user.ResolveTeacherUnit(usr, allUnits); ok {
			linked.UpdatedAt = now
			plan.Linked = append(plan.Linked, linked)
		}
	}
	return plan, nil
}
