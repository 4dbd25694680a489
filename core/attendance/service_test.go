package attendance_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/attendance"
	"github.com/trezcool/kokulite/core/roster"
	"github.com/trezcool/kokulite/core/unit"
	"github.com/trezcool/kokulite/core/user"
	"github.com/trezcool/kokulite/tests"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	logger := testutil.NewLogger()
	validate, _ := testutil.NewValidator()
	rosterSvc := roster.NewService(store, user.NewService(store, logger), validate, logger)
	svc := attendance.NewService(store, rosterSvc, validate, logger)

	scouts := testutil.CreateUnit(t, store, "s1", "Scouts", unit.CategoryUniformed)
	chess := testutil.CreateUnit(t, store, "s1", "Chess Club", unit.CategoryClub)
	ali := testutil.CreateStudent(t, store, scouts, "Ali", "1A")
	testutil.CreateStudent(t, store, scouts, "Siti", "1B")
	advisor := testutil.CreateAdvisor(t, store, "s1", "Mr. Tan", "tan@school.my", scouts).Actor()
	chessAdvisor := testutil.CreateAdvisor(t, store, "s1", "Pn. Lim", "lim@school.my", chess).Actor()
	secretary := testutil.CreateStaff(t, store, "s1", "Pn. Aini", "aini@school.my", user.RoleSecretary).Actor()

	rec, err := svc.Create(ctx, advisor, attendance.NewRecord{Date: "2024-06-03", ActivityName: " Knots ", StudentIDsPresent: []string{ali.ID}})
	require.NoError(t, err)
	assert.Equal(t, "Knots", rec.ActivityName)
	assert.Equal(t, 2, rec.TotalStudents)

	t.Run("invalid input", func(t *testing.T) {
		_, err := svc.Create(ctx, advisor, attendance.NewRecord{Date: "03/06/2024", ActivityName: "Knots"})
		assert.Error(t, err)
		_, err = svc.Create(ctx, advisor, attendance.NewRecord{Date: "2024-06-03", ActivityName: "  "})
		assert.Error(t, err)
		_, err = svc.Create(ctx, secretary, attendance.NewRecord{Date: "2024-06-03", ActivityName: "Knots"})
		assert.True(t, core.IsAuthorizationError(err), "got %v", err)
	})

	t.Run("visibility", func(t *testing.T) {
		got, err := svc.Query(ctx, secretary)
		require.NoError(t, err)
		assert.Equal(t, []attendance.Record{rec}, got)

		got, err = svc.Query(ctx, chessAdvisor)
		require.NoError(t, err)
		assert.Empty(t, got)

		_, err = svc.Get(ctx, chessAdvisor, rec.ID)
		assert.Equal(t, attendance.ErrNotFound, err)
		got1, err := svc.Get(ctx, advisor, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec, got1)
	})
}
