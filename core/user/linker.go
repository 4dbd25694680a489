package user

import "github.com/trezcool/kokulite/core/unit"

// ResolveTeacherUnit replaces the placeholder unit reference of an advisor with the id of the unit
// of the same school whose name matches RegisteredUnitName.
// It returns the updated profile and true on a match. Any other profile is returned unchanged:
// the rule is idempotent and safe to evaluate on every snapshot of the units.
func ResolveTeacherUnit(profile User, units []unit.Unit) (User, bool) {
	if !profile.HasPlaceholderUnit() || profile.RegisteredUnitName == "" {
		return profile, false
	}
	id, ok := unit.NewIndex(profile.SchoolID, units).Resolve(unit.Scope(profile.SchoolID), profile.RegisteredUnitName)
	if !ok {
		return profile, false
	}
	profile.AssignedUnitID = id
	return profile, true
}
