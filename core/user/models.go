package user

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/identity"
	"github.com/trezcool/kokulite/core/unit"
)

// Roles
const (
	RoleAdvisor            = "ADVISOR"
	RoleSecretary          = "SECRETARY"
	RoleAssistantPrincipal = "ASSISTANT_PRINCIPAL"
)

// PlaceholderPrefix marks an AssignedUnitID given to an advisor whose unit did not exist yet at registration.
const PlaceholderPrefix = "temp_"

var (
	AllRoles = []string{RoleAdvisor, RoleSecretary, RoleAssistantPrincipal}

	Roles = []Role{
		{Name: "Class Advisor", Value: RoleAdvisor},
		{Name: "Co-curriculum Secretary", Value: RoleSecretary},
		{Name: "Assistant Principal", Value: RoleAssistantPrincipal},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewPlaceholder returns a placeholder unit reference stamped with t.
func NewPlaceholder(t time.Time) string {
	return PlaceholderPrefix + strconv.FormatInt(t.UnixMilli(), 10)
}

func IsPlaceholder(unitID string) bool {
	return strings.HasPrefix(unitID, PlaceholderPrefix)
}

type User struct {
	ID                     string        `json:"id"` // lower-cased email, or a generated id for imported teachers
	Name                   string        `json:"name"`
	Email                  string        `json:"email,omitempty"`
	Role                   string        `json:"role"`
	SchoolID               string        `json:"school_id"`
	SchoolName             string        `json:"school_name"`
	AssignedUnitID         string        `json:"assigned_unit_id,omitempty"`
	RegisteredUnitName     string        `json:"registered_unit_name,omitempty"`
	RegisteredUnitCategory unit.Category `json:"registered_unit_category,omitempty"`
	Imported               bool          `json:"imported,omitempty"`
	PasswordHash           []byte        `json:"-"`
	CreatedAt              time.Time     `json:"created_at"` // UTC
	UpdatedAt              time.Time     `json:"updated_at"` // UTC
	LastLogin              *time.Time    `json:"last_login,omitempty"`
}

// record is the stored form of a User: unlike the API form it keeps the password hash.
type record struct {
	User
	PasswordHash []byte `json:"password_hash,omitempty"`
}

// Doc returns the document written to the store for u.
func (u User) Doc() interface{} {
	return record{User: u, PasswordHash: u.PasswordHash}
}

func (r record) user() User {
	usr := r.User
	usr.PasswordHash = r.PasswordHash
	return usr
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsAdvisor() bool            { return u.Role == RoleAdvisor }
func (u User) IsSecretary() bool          { return u.Role == RoleSecretary }
func (u User) IsAssistantPrincipal() bool { return u.Role == RoleAssistantPrincipal }

// HasPlaceholderUnit reports whether u is an advisor still waiting for their unit to be created.
func (u User) HasPlaceholderUnit() bool {
	return u.IsAdvisor() && IsPlaceholder(u.AssignedUnitID)
}

// UnitID returns the real unit u is assigned to, or "" while unassigned or pending.
func (u User) UnitID() string {
	if IsPlaceholder(u.AssignedUnitID) {
		return ""
	}
	return u.AssignedUnitID
}

// Actor returns the acting identity of u for authorization checks.
func (u User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.Name, Role: u.Role, SchoolID: u.SchoolID, UnitID: u.UnitID()}
}

// Actor is who performs an operation. UnitID is only set for advisors bound to a real unit.
type Actor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	SchoolID string `json:"school_id"`
	UnitID   string `json:"unit_id,omitempty"`
}

// TeacherScope is the identity scope of the teachers of a school.
func TeacherScope(schoolID string) identity.Scope {
	return identity.Scope{SchoolID: schoolID, Kind: identity.KindTeacher}
}

// NewUser contains information needed to register a new User.
// Advisors name the unit they run; it may not exist yet.
type NewUser struct {
	Name            string        `json:"name" validate:"notblank"`
	Email           string        `json:"email" validate:"required,email"`
	Password        string        `json:"password" validate:"required"`
	PasswordConfirm string        `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string        `json:"role" validate:"required,role"`
	SchoolID        string        `json:"school_id" validate:"notblank"`
	SchoolName      string        `json:"school_name" validate:"notblank"`
	UnitName        string        `json:"unit_name"`
	UnitCategory    unit.Category `json:"unit_category" validate:"omitempty,unit_category"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role)
	nu.SchoolID = core.CleanString(nu.SchoolID)
	nu.SchoolName = core.CleanString(nu.SchoolName)
	nu.UnitName = core.CleanString(nu.UnitName)
	if nu.Role != RoleAdvisor {
		nu.UnitName = ""
		nu.UnitCategory = ""
	}

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, nu.Email, nu.SchoolID, nu.UnitName)
}

type QueryFilter struct {
	Search  string   `query:"search"`
	Roles   []string `query:"role"`
	Pending *bool    `query:"pending"` // advisors still holding a placeholder unit
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search, true /* lower */)
}

func (qf QueryFilter) match(u User) bool {
	if qf.Search != "" && !strings.Contains(strings.ToLower(u.Name), qf.Search) && !strings.Contains(u.Email, qf.Search) {
		return false
	}
	if len(qf.Roles) > 0 {
		var found bool
		for _, r := range qf.Roles {
			if r == u.Role {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if qf.Pending != nil && *qf.Pending != u.HasPlaceholderUnit() {
		return false
	}
	return true
}
