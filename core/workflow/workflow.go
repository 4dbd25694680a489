// Package workflow holds the role-dispatched state machines of reviewable documents.
//
// A Machine is a lookup table from (role, current status, action) to the next status.
// Rules with an empty From apply to documents that do not exist yet.
package workflow

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core"
)

// Key identifies a rule of a Machine.
type Key struct {
	Role   string
	From   string
	Action string
}

// Machine is an immutable transition table.
type Machine struct {
	Name  string
	Rules map[Key]string
}

// Roles returns the roles having at least one rule for action, sorted.
func (m Machine) Roles(action string) []string {
	seen := make(map[string]bool)
	roles := make([]string, 0, 1)
	for k := range m.Rules {
		if k.Action == action && !seen[k.Role] {
			seen[k.Role] = true
			roles = append(roles, k.Role)
		}
	}
	sort.Strings(roles)
	return roles
}

// Allows reports whether role has any rule for action, whatever the status.
func (m Machine) Allows(role, action string) bool {
	for k := range m.Rules {
		if k.Role == role && k.Action == action {
			return true
		}
	}
	return false
}

// Next returns the status a document in `from` moves to when role performs action.
// A role with no rule for action gets a core.AuthorizationError naming the roles that have one;
// a role allowed the action but not from this status gets a core.ValidationError on `status`.
func (m Machine) Next(role, from, action string) (string, error) {
	if to, ok := m.Rules[Key{Role: role, From: from, Action: action}]; ok {
		return to, nil
	}
	if !m.Allows(role, action) {
		return "", core.NewAuthorizationError(role, action, m.Roles(action)...)
	}
	err := errors.Errorf("cannot %s a %s in status %s", action, m.Name, from)
	return "", core.NewValidationError(err, core.FieldError{Field: "status", Error: err.Error()})
}
