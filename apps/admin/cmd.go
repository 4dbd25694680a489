package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/kokulite/core/roster"
	"github.com/trezcool/kokulite/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *sql.DB
	validate  *validator.Validate
	usrSvc    user.Service
	rosterSvc roster.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, down, status, ...) against the database")
	fmt.Println("  adduser -email EMAIL -name NAME -role ROLE -school ID -schoolname NAME [-unit NAME -category CATEGORY] - register a user")
	fmt.Println("  resetpassword -email EMAIL - reset user's password")
	fmt.Println("  import -file PATH -school ID [-schoolname NAME -sheet SHEET -map ROLES] - import an .xlsx roster")
	fmt.Println("  link -school ID - link the advisors of a school to their now existing units")
}

func (cli *commandLine) promptPassword(usage func()) (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email, used to log in. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserRole := addUserCmd.String("role", user.RoleSecretary, "ADVISOR, SECRETARY or ASSISTANT_PRINCIPAL.")
	addUserSchool := addUserCmd.String("school", "", "The school id.")
	addUserSchoolName := addUserCmd.String("schoolname", "", "The school name.")
	addUserUnit := addUserCmd.String("unit", "", "The unit an advisor runs.")
	addUserCategory := addUserCmd.String("category", "", "The category of the advisor's unit: UNIFORMED, CLUB or SPORT.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "The .xlsx roster to import.")
	importSchool := importCmd.String("school", "", "The school id.")
	importSchoolName := importCmd.String("schoolname", "", "The school name given to imported teachers.")
	importSheet := importCmd.String("sheet", "", "The sheet to read; the first one by default.")
	importMapping := importCmd.String("map", "", "Comma separated column roles; guessed from the header row by default.")

	linkCmd := flag.NewFlagSet("link", flag.ExitOnError)
	linkSchool := linkCmd.String("school", "", "The school id.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserSchool == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(addUserCmd.Usage)
		if err != nil {
			return err
		}
		return cli.addUser(user.NewUser{
			Name:            *addUserName,
			Email:           *addUserEmail,
			Password:        pwd,
			PasswordConfirm: pwd,
			Role:            *addUserRole,
			SchoolID:        *addUserSchool,
			SchoolName:      *addUserSchoolName,
			UnitName:        *addUserUnit,
			UnitCategory:    unitCategory(*addUserCategory),
		})
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(resetPasswordCmd.Usage)
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" || *importSchool == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importRoster(*importFile, *importSheet, *importMapping, *importSchool, *importSchoolName)
	case "link":
		if err := linkCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *linkSchool == "" {
			linkCmd.Usage()
			return errHelp
		}
		return cli.link(*linkSchool)
	default:
		cli.printUsage()
		return errHelp
	}
}
