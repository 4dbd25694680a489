package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/kokulite/core/roster"
	"github.com/trezcool/kokulite/core/user"
	"github.com/trezcool/kokulite/services/spreadsheet"
)

// adminActor runs imports on behalf of the secretary of schoolID.
func adminActor(schoolID string) user.Actor {
	return user.Actor{ID: "admin", Role: user.RoleSecretary, SchoolID: schoolID}
}

func (cli *commandLine) importRoster(path, sheet, mapping, schoolID, schoolName string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening roster")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer file.Close()

	tbl, err := spreadsheet.ReadXLSX(file, sheet)
	if err != nil {
		return err
	}
	cols := roster.ParseMapping(mapping)
	if len(cols) == 0 {
		cols = spreadsheet.GuessMapping(tbl.Headers)
	}

	res, err := cli.rosterSvc.Import(context.Background(), adminActor(schoolID), roster.ImportRequest{
		Rows:       tbl.Rows,
		Mapping:    cols,
		SchoolID:   schoolID,
		SchoolName: schoolName,
	})
	if err != nil {
		return err
	}
	fmt.Printf("units created: %d, teachers created: %d, teachers updated: %d, students created: %d, teachers linked: %d\n",
		res.UnitsCreated, res.TeachersCreated, res.TeachersUpdated, res.StudentsCreated, res.TeachersLinked)
	return nil
}
