package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/roster"
	"github.com/trezcool/kokulite/core/user"
)

var (
	now       = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	advisor   = user.Actor{ID: "tan@school.my", Role: user.RoleAdvisor, SchoolID: "s1", UnitID: "u-scouts"}
	secretary = user.Actor{ID: "aini@school.my", Role: user.RoleSecretary, SchoolID: "s1"}
	ap        = user.Actor{ID: "raj@school.my", Role: user.RoleAssistantPrincipal, SchoolID: "s1"}

	students = []roster.Student{
		{ID: "st-ali", Name: "Ali", UnitID: "u-scouts", SchoolID: "s1"},
		{ID: "st-abu", Name: "Abu", UnitID: "u-chess", SchoolID: "s1"},
	}
	gold = NewAchievement{Title: "Jamboree", Level: LevelState, Category: CategoryUnit, Date: "2024-05-20", Result: "Gold"}
)

func TestNew(t *testing.T) {
	a, err := New(advisor, gold, nil, "a1", now)
	require.NoError(t, err)
	assert.Equal(t, Achievement{
		ID:        "a1",
		Title:     "Jamboree",
		Level:     LevelState,
		Category:  CategoryUnit,
		UnitID:    "u-scouts",
		SchoolID:  "s1",
		Date:      "2024-05-20",
		Result:    "Gold",
		Status:    StatusDraft,
		CreatedBy: advisor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}, a)

	individual := gold
	individual.Category, individual.StudentID = CategoryIndividual, "st-ali"
	a, err = New(advisor, individual, students, "a2", now)
	require.NoError(t, err)
	assert.Equal(t, "Ali", a.StudentName)

	individual.StudentID = "st-abu" // not of the unit
	_, err = New(advisor, individual, students, "a3", now)
	require.True(t, core.IsValidationError(err), "got %v", err)
	assert.Equal(t, "student_id", err.(*core.ValidationError).Fields[0].Field)

	_, err = New(secretary, gold, nil, "a4", now)
	assert.True(t, core.IsAuthorizationError(err), "got %v", err)
	_, err = New(user.Actor{ID: "x", Role: user.RoleAdvisor, SchoolID: "s1"}, gold, nil, "a5", now)
	assert.True(t, core.IsAuthorizationError(err), "got %v", err)
}

func TestApply(t *testing.T) {
	draft, err := New(advisor, gold, nil, "a1", now.Add(-time.Hour))
	require.NoError(t, err)
	with := func(status string) Achievement {
		a := draft
		a.Status = status
		return a
	}
	silver := gold
	silver.Result = "Silver"

	tests := []struct {
		name       string
		from       Achievement
		actor      user.Actor
		cmd        Command
		wantStatus string
		wantErr    func(error) bool
	}{
		{name: "advisor edits a draft", from: draft, actor: advisor, cmd: Command{Action: ActionEdit, Edit: &silver}, wantStatus: StatusDraft},
		{name: "edit needs the fields", from: draft, actor: advisor, cmd: Command{Action: ActionEdit}, wantErr: core.IsValidationError},
		{name: "advisor submits", from: draft, actor: advisor, cmd: Command{Action: ActionSubmit}, wantStatus: StatusSubmitted},
		{name: "no edit once submitted", from: with(StatusSubmitted), actor: advisor, cmd: Command{Action: ActionEdit, Edit: &silver}, wantErr: core.IsValidationError},
		{name: "secretary approves", from: with(StatusSubmitted), actor: secretary, cmd: Command{Action: ActionApprove}, wantStatus: StatusVerified},
		{name: "secretary cannot approve a draft", from: draft, actor: secretary, cmd: Command{Action: ActionApprove}, wantErr: core.IsValidationError},
		{name: "assistant principal cannot approve", from: with(StatusSubmitted), actor: ap, cmd: Command{Action: ActionApprove}, wantErr: core.IsAuthorizationError},
		{name: "advisor cannot approve", from: with(StatusSubmitted), actor: advisor, cmd: Command{Action: ActionApprove}, wantErr: core.IsAuthorizationError},
		{name: "advisor of another unit", from: draft, actor: user.Actor{ID: "lim", Role: user.RoleAdvisor, SchoolID: "s1", UnitID: "u-chess"}, cmd: Command{Action: ActionSubmit}, wantErr: core.IsAuthorizationError},
		{name: "stale token", from: with(StatusVerified), actor: secretary, cmd: Command{Action: ActionApprove, ExpectedStatus: StatusSubmitted}, wantErr: core.IsConflictError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.from, tt.actor, tt.cmd, students, now)
			if tt.wantErr != nil {
				require.True(t, tt.wantErr(err), "got %v", err)
				assert.Equal(t, tt.from, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, now, got.UpdatedAt)
			if tt.cmd.Edit != nil {
				assert.Equal(t, tt.cmd.Edit.Result, got.Result)
			}
		})
	}
}

func TestCheckDelete(t *testing.T) {
	draft, err := New(advisor, gold, nil, "a1", now)
	require.NoError(t, err)
	submitted := draft
	submitted.Status = StatusSubmitted

	assert.NoError(t, CheckDelete(draft, advisor))
	assert.True(t, core.IsValidationError(CheckDelete(submitted, advisor)))
	assert.True(t, core.IsAuthorizationError(CheckDelete(draft, secretary)))
	assert.True(t, core.IsAuthorizationError(CheckDelete(draft, user.Actor{ID: "x", Role: user.RoleAdvisor, SchoolID: "s2", UnitID: "u-scouts"})))
}
