package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/unit"
	"github.com/trezcool/kokulite/core/user"
	"github.com/trezcool/kokulite/tests"
)

const testPwd = "Kokul1te!2024x"

func validationCause(t *testing.T, err error) error {
	t.Helper()
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "want a validation error, got %v", err)
	return vErr.Err
}

func newAdvisor(email, unitName string) user.NewUser {
	return user.NewUser{
		Name:       "Cikgu " + email,
		Email:      email,
		Password:   testPwd,
		Role:       user.RoleAdvisor,
		SchoolID:   "s1",
		SchoolName: "SMK s1",
		UnitName:   unitName,
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	svc := user.NewService(store, testutil.NewLogger())
	scouts := testutil.CreateUnit(t, store, "s1", "Scouts", unit.CategoryUniformed)

	t.Run("existing unit", func(t *testing.T) {
		usr, err := svc.Register(ctx, newAdvisor("tan@school.my", "scouts "))
		require.NoError(t, err)
		assert.Equal(t, "tan@school.my", usr.ID)
		assert.Equal(t, scouts.ID, usr.AssignedUnitID)
		assert.Equal(t, scouts.ID, usr.Actor().UnitID)
		assert.False(t, usr.HasPlaceholderUnit())
		assert.NoError(t, usr.CheckPassword(testPwd))
	})

	t.Run("unit not imported yet", func(t *testing.T) {
		nu := newAdvisor("lim@school.my", "Chess Club")
		nu.UnitCategory = unit.CategoryClub
		usr, err := svc.Register(ctx, nu)
		require.NoError(t, err)
		assert.True(t, usr.HasPlaceholderUnit())
		assert.Empty(t, usr.Actor().UnitID)
		assert.Equal(t, "Chess Club", usr.RegisteredUnitName)
		assert.Equal(t, unit.CategoryClub, usr.RegisteredUnitCategory)

		got, err := svc.Get(ctx, usr.ID)
		require.NoError(t, err)
		assert.Equal(t, usr.AssignedUnitID, got.AssignedUnitID)
		assert.NoError(t, got.CheckPassword(testPwd))
	})

	t.Run("staff", func(t *testing.T) {
		nu := newAdvisor("aini@school.my", "")
		nu.Role = user.RoleSecretary
		usr, err := svc.Register(ctx, nu)
		require.NoError(t, err)
		assert.Empty(t, usr.AssignedUnitID)
		assert.Empty(t, usr.RegisteredUnitName)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, newAdvisor("tan@school.my", "Scouts"))
		assert.Equal(t, user.ErrEmailExists, validationCause(t, err))
	})
}

func TestService_CheckUniqueness(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	svc := user.NewService(store, testutil.NewLogger())
	chess := testutil.CreateUnit(t, store, "s1", "Chess Club", unit.CategoryClub)
	testutil.CreateAdvisor(t, store, "s1", "Pn. Lim", "lim@school.my", chess)
	testutil.CreateUser(t, store, user.User{
		ID:                 "imported-1",
		Name:               "Cikgu Ahmad",
		Role:               user.RoleAdvisor,
		SchoolID:           "s1",
		RegisteredUnitName: "Scouts",
		Imported:           true,
	}, "")

	tests := []struct {
		name     string
		email    string
		schoolID string
		unitName string
		wantErr  error
	}{
		{name: "email taken", email: "lim@school.my", schoolID: "s1", wantErr: user.ErrEmailExists},
		{name: "unit taken", email: "new@school.my", schoolID: "s1", unitName: " chess club", wantErr: user.ErrUnitNameTaken},
		{name: "unit of another school", email: "new@school.my", schoolID: "s2", unitName: "Chess Club"},
		{name: "imported advisors do not hold the unit", email: "new@school.my", schoolID: "s1", unitName: "Scouts"},
		{name: "no unit", email: "new@school.my", schoolID: "s1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.CheckUniqueness(ctx, tc.email, tc.schoolID, tc.unitName)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.wantErr, validationCause(t, err))
		})
	}
}

func TestService_LinkPending(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	svc := user.NewService(store, testutil.NewLogger())

	n, err := svc.LinkPending(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, n)

	lim, err := svc.Register(ctx, newAdvisor("lim@school.my", "Chess Club"))
	require.NoError(t, err)
	tan, err := svc.Register(ctx, newAdvisor("tan@school.my", "Robotics"))
	require.NoError(t, err)
	require.True(t, lim.HasPlaceholderUnit())
	require.True(t, tan.HasPlaceholderUnit())

	n, err = svc.LinkPending(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, n, "no unit exists yet")

	chess := testutil.CreateUnit(t, store, "s1", "chess club", unit.CategoryClub)
	testutil.CreateUnit(t, store, "s2", "Robotics", unit.CategoryClub)

	n, err = svc.LinkPending(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := svc.Get(ctx, lim.ID)
	require.NoError(t, err)
	assert.Equal(t, chess.ID, got.AssignedUnitID)
	got, err = svc.Get(ctx, tan.ID)
	require.NoError(t, err)
	assert.True(t, got.HasPlaceholderUnit(), "a unit of another school is never linked")

	n, err = svc.LinkPending(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore()
	svc := user.NewService(store, testutil.NewLogger())
	scouts := testutil.CreateUnit(t, store, "s1", "Scouts", unit.CategoryUniformed)
	advisor := testutil.CreateAdvisor(t, store, "s1", "Mr. Tan", "tan@school.my", scouts)
	ap := testutil.CreateStaff(t, store, "s1", "En. Hafiz", "hafiz@school.my", user.RoleAssistantPrincipal)
	secretary := testutil.CreateStaff(t, store, "s1", "Pn. Aini", "aini@school.my", user.RoleSecretary)

	assert.Equal(t, user.ErrNotAdvisor, validationCause(t, svc.Delete(ctx, "s1", ap.ID)))
	assert.Equal(t, user.ErrNotAdvisor, validationCause(t, svc.Delete(ctx, "s1", secretary.ID)))
	assert.Equal(t, user.ErrNotFound, svc.Delete(ctx, "s2", advisor.ID))
	assert.Equal(t, user.ErrNotFound, svc.Delete(ctx, "s1", "nobody@school.my"))

	require.NoError(t, svc.Delete(ctx, "s1", advisor.ID))
	_, err := svc.Get(ctx, advisor.ID)
	assert.Equal(t, user.ErrNotFound, err)
	_, err = svc.Get(ctx, ap.ID)
	assert.NoError(t, err)
}
