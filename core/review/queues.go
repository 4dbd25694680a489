// Package review projects snapshots of a school into the work queue of each role.
// Every queue is recomputed on each call; nothing is cached.
package review

import (
	"sort"

	"github.com/trezcool/kokulite/core/achievement"
	"github.com/trezcool/kokulite/core/attendance"
	"github.com/trezcool/kokulite/core/report"
)

func sortReports(reports []report.Report) []report.Report {
	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i], reports[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return reports
}

func filterReports(schoolID, unitID string, reports []report.Report, statuses ...string) []report.Report {
	out := make([]report.Report, 0, len(reports))
	for _, r := range reports {
		if r.SchoolID != schoolID || (unitID != "" && r.UnitID != unitID) {
			continue
		}
		for _, s := range statuses {
			if r.Status == s {
				out = append(out, r)
				break
			}
		}
	}
	return sortReports(out)
}

// PendingForAdvisor returns the attendance sessions of the unit that no report references yet.
func PendingForAdvisor(schoolID, unitID string, sessions []attendance.Record, reports []report.Report) []attendance.Record {
	reported := make(map[string]bool, len(reports))
	for _, r := range reports {
		if r.AttendanceID != "" {
			reported[r.AttendanceID] = true
		}
	}
	out := make([]attendance.Record, 0, len(sessions))
	for _, s := range sessions {
		if s.SchoolID == schoolID && s.UnitID == unitID && !reported[s.ID] {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// DraftsForAdvisor returns the unit reports the advisor still has to work on.
func DraftsForAdvisor(schoolID, unitID string, reports []report.Report) []report.Report {
	return filterReports(schoolID, unitID, reports, report.StatusDraft, report.StatusNeedsCorrection)
}

// DoneForAdvisor returns the unit reports out of the advisor's hands.
func DoneForAdvisor(schoolID, unitID string, reports []report.Report) []report.Report {
	return filterReports(schoolID, unitID, reports, report.StatusSubmitted, report.StatusVerified)
}

// QueueForSecretary holds the reports awaiting review, and those sent back for correction.
func QueueForSecretary(schoolID string, reports []report.Report) []report.Report {
	return filterReports(schoolID, "", reports, report.StatusSubmitted, report.StatusNeedsCorrection)
}

func QueueForAssistantPrincipal(schoolID string, reports []report.Report) []report.Report {
	return filterReports(schoolID, "", reports, report.StatusVerified)
}

func filterAchievements(schoolID string, achievements []achievement.Achievement, status string) []achievement.Achievement {
	out := make([]achievement.Achievement, 0, len(achievements))
	for _, a := range achievements {
		if a.SchoolID == schoolID && a.Status == status {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func AchievementsForSecretary(schoolID string, achievements []achievement.Achievement) []achievement.Achievement {
	return filterAchievements(schoolID, achievements, achievement.StatusSubmitted)
}

func AchievementsForAssistantPrincipal(schoolID string, achievements []achievement.Achievement) []achievement.Achievement {
	return filterAchievements(schoolID, achievements, achievement.StatusVerified)
}
