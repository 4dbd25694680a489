package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/roster"
	"github.com/trezcool/kokulite/core/unit"
	"github.com/trezcool/kokulite/core/user"
	inmemdb "github.com/trezcool/kokulite/storage/database/inmem"
	"github.com/trezcool/kokulite/tests"
)

const testPwd = "Kokul1te!2024x"

func setup(t *testing.T) (*commandLine, *inmemdb.Store) {
	t.Helper()
	store := testutil.NewStore()
	logger := testutil.NewLogger()
	validate, _ := testutil.NewValidator()
	usrSvc := user.NewService(store, logger)
	return &commandLine{
		validate:  validate,
		usrSvc:    usrSvc,
		rosterSvc: roster.NewService(store, usrSvc, validate, logger),
	}, store
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	migrateFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "attendance_index", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli, store := setup(t)
	scouts := testutil.CreateUnit(t, store, "sch1", "Pengakap", unit.CategoryUniformed)

	secretary := []string{"adduser", "-email", "Salmah@SMK.edu.my", "-name", "Puan Salmah", "-school", "sch1", "-schoolname", "SMK Seri Aman"}
	tests := []struct {
		name    string
		args    []string
		pwd     string
		wantErr func(t *testing.T, err error)
	}{
		{
			name: "no email", args: []string{"adduser", "-school", "sch1"}, pwd: testPwd,
			wantErr: func(t *testing.T, err error) { assert.Equal(t, errHelp, err) },
		},
		{
			name: "no password", args: secretary,
			wantErr: func(t *testing.T, err error) { assert.Equal(t, errHelp, err) },
		},
		{
			name: "weak password", args: secretary, pwd: "12345678",
			wantErr: func(t *testing.T, err error) { assert.IsType(t, validator.ValidationErrors{}, err) },
		},
		{
			name: "unknown role", args: append([]string{"adduser", "-role", "PRINCIPAL"}, secretary[1:]...), pwd: testPwd,
			wantErr: func(t *testing.T, err error) { assert.IsType(t, validator.ValidationErrors{}, err) },
		},
		{name: "secretary", args: secretary, pwd: testPwd},
		{
			name: "email taken", args: secretary, pwd: testPwd,
			wantErr: func(t *testing.T, err error) { assert.True(t, core.IsValidationError(err), "got %v", err) },
		},
		{
			name: "advisor",
			args: []string{"adduser", "-email", "ahmad@smk.edu.my", "-name", "Cikgu Ahmad", "-role", user.RoleAdvisor,
				"-school", "sch1", "-schoolname", "SMK Seri Aman", "-unit", "pengakap"},
			pwd: testPwd,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(t, tt.pwd)
			err := cli.run(append([]string{"admin"}, tt.args...))
			if tt.wantErr != nil {
				require.Error(t, err)
				tt.wantErr(t, err)
				return
			}
			require.NoError(t, err)
		})
	}

	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, "salmah@smk.edu.my")
	require.NoError(t, err)
	assert.Equal(t, user.RoleSecretary, usr.Role)
	assert.NoError(t, usr.CheckPassword(testPwd))

	advisor, err := cli.usrSvc.GetByEmail(ctx, "ahmad@smk.edu.my")
	require.NoError(t, err)
	assert.Equal(t, scouts.ID, advisor.AssignedUnitID, "the unit already exists")
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, store := setup(t)
	usr := testutil.CreateStaff(t, store, "sch1", "Puan Salmah", "salmah@smk.edu.my", user.RoleSecretary)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol"}, extra: "lol", wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: "lmao"},
		{name: "reset with mixed case email", args: []string{"resetpassword", "-email", "Salmah@SMK.edu.my"}, extra: "lmfao"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			pwd, _ := tt.extra.(string)
			mockPassword(t, pwd)

			err := cli.run(args)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			refreshed, err := cli.usrSvc.Get(context.Background(), usr.ID)
			require.NoError(t, err)
			assert.NoError(t, refreshed.CheckPassword(pwd))
		})
	}
}

func writeRoster(t *testing.T) string {
	t.Helper()
	rows := [][]interface{}{
		{"Nama Murid", "Tahun / Kelas", "Kategori", "Nama Unit", "Guru Penasihat"},
		{"Ali Bin Abu", "4 Merah", "Badan Beruniform", "Pengakap", "Cikgu Ahmad"},
		{},
		{"Siti Binti Ali", "5 Biru", "Kelab & Persatuan", "Persatuan Bahasa Melayu", "Puan Aminah"},
		{"Muthu A/L Ravi", "6 Hijau", "Sukan & Permainan", "Bola Sepak", ""},
	}
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func Test_commandLine_importRoster(t *testing.T) {
	cli, store := setup(t)
	path := writeRoster(t)
	ctx := context.Background()

	mockPassword(t, testPwd)
	require.NoError(t, cli.run([]string{"admin", "adduser", "-email", "lim@smk.edu.my", "-name", "Encik Lim",
		"-role", user.RoleAdvisor, "-school", "sch1", "-schoolname", "SMK Seri Aman", "-unit", "Bola Sepak"}))
	pending, err := cli.usrSvc.GetByEmail(ctx, "lim@smk.edu.my")
	require.NoError(t, err)
	require.True(t, pending.HasPlaceholderUnit())

	t.Run("usage", func(t *testing.T) {
		assert.Equal(t, errHelp, cli.run([]string{"admin", "import", "-file", path}))
		assert.Equal(t, errHelp, cli.run([]string{"admin", "import", "-school", "sch1"}))
	})

	t.Run("missing file", func(t *testing.T) {
		err := cli.run([]string{"admin", "import", "-file", filepath.Join(t.TempDir(), "nope.xlsx"), "-school", "sch1"})
		require.Error(t, err)
		assert.True(t, os.IsNotExist(errors.Cause(err)), "got %v", err)
	})

	t.Run("unknown sheet", func(t *testing.T) {
		err := cli.run([]string{"admin", "import", "-file", path, "-school", "sch1", "-sheet", "Nope"})
		assert.True(t, core.IsValidationError(err), "got %v", err)
	})

	t.Run("guessed mapping", func(t *testing.T) {
		require.NoError(t, cli.run([]string{"admin", "import", "-file", path, "-school", "sch1", "-schoolname", "SMK Seri Aman"}))

		var units []unit.Unit
		require.NoError(t, store.Query(ctx, core.Units, "sch1", &units))
		assert.Len(t, units, 3)

		var students []roster.Student
		require.NoError(t, store.Query(ctx, core.Students, "sch1", &students))
		assert.Len(t, students, 3)

		teachers, err := cli.usrSvc.Query(ctx, "sch1", user.QueryFilter{Roles: []string{user.RoleAdvisor}})
		require.NoError(t, err)
		assert.Len(t, teachers, 3)

		linked, err := cli.usrSvc.Get(ctx, pending.ID)
		require.NoError(t, err)
		assert.False(t, linked.HasPlaceholderUnit())
	})

	t.Run("explicit mapping", func(t *testing.T) {
		require.NoError(t, cli.run([]string{"admin", "import", "-file", path, "-school", "sch2", "-map", "student_name,class,,unit_name"}))

		var students []roster.Student
		require.NoError(t, store.Query(ctx, core.Students, "sch2", &students))
		assert.Len(t, students, 3)
		teachers, err := cli.usrSvc.Query(ctx, "sch2", user.QueryFilter{})
		require.NoError(t, err)
		assert.Empty(t, teachers)
	})
}

func Test_commandLine_link(t *testing.T) {
	cli, store := setup(t)
	ctx := context.Background()
	scouts := testutil.CreateUnit(t, store, "sch1", "Pengakap", unit.CategoryUniformed)
	pending := testutil.CreateUser(t, store, user.User{
		Name:               "Cikgu Ahmad",
		Email:              "ahmad@smk.edu.my",
		Role:               user.RoleAdvisor,
		SchoolID:           "sch1",
		AssignedUnitID:     user.NewPlaceholder(core.Now()),
		RegisteredUnitName: "PENGAKAP ",
	}, "")
	stillPending := testutil.CreateUser(t, store, user.User{
		Name:               "Encik Lim",
		Email:              "lim@smk.edu.my",
		Role:               user.RoleAdvisor,
		SchoolID:           "sch1",
		AssignedUnitID:     user.NewPlaceholder(core.Now()),
		RegisteredUnitName: "Catur",
	}, "")

	assert.Equal(t, errHelp, cli.run([]string{"admin", "link"}))
	require.NoError(t, cli.run([]string{"admin", "link", "-school", "sch1"}))

	linked, err := cli.usrSvc.Get(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, scouts.ID, linked.AssignedUnitID)

	unlinked, err := cli.usrSvc.Get(ctx, stillPending.ID)
	require.NoError(t, err)
	assert.True(t, unlinked.HasPlaceholderUnit())
}
