package main

import (
	"database/sql"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/achievement"
	"github.com/trezcool/kokulite/core/report"
	"github.com/trezcool/kokulite/core/roster"
	"github.com/trezcool/kokulite/core/unit"
	"github.com/trezcool/kokulite/core/user"
	logsvc "github.com/trezcool/kokulite/services/logger"
	"github.com/trezcool/kokulite/storage/database"
	sqlxdb "github.com/trezcool/kokulite/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.Conf
	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)

	validate := validator.New()
	translator := core.NewTranslator()
	initValidators(validate, translator)
	user.LoadCommonPasswords(appLogger)

	// start CLI
	store := sqlxdb.New(db)
	usrSvc := user.NewService(store, appLogger)
	cli := commandLine{
		db:        db,
		validate:  validate,
		usrSvc:    usrSvc,
		rosterSvc: roster.NewService(store, usrSvc, validate, appLogger),
	}
	err = cli.run(os.Args)
	closeDB(db)
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func initValidators(validate *validator.Validate, translator ut.Translator) {
	core.InitValidators(validate, translator)
	unit.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	roster.InitValidators(validate, translator)
	report.InitValidators(validate, translator)
	achievement.InitValidators(validate, translator)
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		logger.Printf("closing database: %v", err)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
