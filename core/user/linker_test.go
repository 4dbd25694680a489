package user

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/kokulite/core/unit"
)

func TestResolveTeacherUnit(t *testing.T) {
	pending := User{
		ID:                 "tan@school.my",
		Name:               "Mr. Tan",
		Role:               RoleAdvisor,
		SchoolID:           "s1",
		AssignedUnitID:     "temp_1718000000000",
		RegisteredUnitName: "Chess Club",
	}
	chess := unit.Unit{ID: "u-chess", Name: "chess club ", Category: unit.CategoryClub, SchoolID: "s1"}
	otherSchoolChess := unit.Unit{ID: "u-other", Name: "Chess Club", Category: unit.CategoryClub, SchoolID: "s2"}
	scouts := unit.Unit{ID: "u-scouts", Name: "Scouts", Category: unit.CategoryUniformed, SchoolID: "s1"}

	withUnit := func(u User, unitID string) User {
		u.AssignedUnitID = unitID
		return u
	}
	withRole := func(u User, role string) User {
		u.Role = role
		return u
	}
	noName := pending
	noName.RegisteredUnitName = ""

	tests := []struct {
		name    string
		profile User
		units   []unit.Unit
		want    User
		changed bool
	}{
		{name: "no units yet", profile: pending, want: pending},
		{name: "no match", profile: pending, units: []unit.Unit{scouts}, want: pending},
		{name: "match ignores case and whitespace", profile: pending, units: []unit.Unit{scouts, chess}, want: withUnit(pending, "u-chess"), changed: true},
		{name: "other school never matches", profile: pending, units: []unit.Unit{otherSchoolChess}, want: pending},
		{name: "already resolved", profile: withUnit(pending, "u-scouts"), units: []unit.Unit{chess}, want: withUnit(pending, "u-scouts")},
		{name: "not an advisor", profile: withRole(pending, RoleSecretary), units: []unit.Unit{chess}, want: withRole(pending, RoleSecretary)},
		{name: "no registered unit name", profile: noName, units: []unit.Unit{chess}, want: noName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := ResolveTeacherUnit(tt.profile, tt.units)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.want, got)

			// idempotent
			again, changedAgain := ResolveTeacherUnit(got, tt.units)
			assert.False(t, changedAgain)
			assert.Equal(t, got, again)
		})
	}
}
