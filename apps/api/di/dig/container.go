package dig_container

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/kokulite/apps/api/echo"
	"github.com/trezcool/kokulite/core"
	"github.com/trezcool/kokulite/core/achievement"
	"github.com/trezcool/kokulite/core/announcement"
	"github.com/trezcool/kokulite/core/attendance"
	"github.com/trezcool/kokulite/core/report"
	"github.com/trezcool/kokulite/core/review"
	"github.com/trezcool/kokulite/core/roster"
	"github.com/trezcool/kokulite/core/unit"
	"github.com/trezcool/kokulite/core/user"
	emailsvc "github.com/trezcool/kokulite/services/email"
	logsvc "github.com/trezcool/kokulite/services/logger"
	"github.com/trezcool/kokulite/storage/database"
	inmemdb "github.com/trezcool/kokulite/storage/database/inmem"
	sqlxdb "github.com/trezcool/kokulite/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// StoreCloser releases the resources of the store. It is a no-op for the memory store.
type StoreCloser func() error

type serverParams struct {
	dig.In
	Conf            *core.Config
	Logger          core.Logger
	Validate        *validator.Validate
	Translator      ut.Translator
	UserSvc         user.Service
	UnitSvc         unit.Service
	RosterSvc       roster.Service
	AttendanceSvc   attendance.Service
	ReportSvc       report.Service
	AchievementSvc  achievement.Service
	ReviewSvc       review.Service
	AnnouncementSvc announcement.Service
}

func newConfig() *core.Config {
	return core.Conf
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStore(conf *core.Config, loggerParam DBLoggerParam) (core.Store, StoreCloser) {
	if conf.Storage == core.StorageMemory {
		loggerParam.Logger.Warn("using the in-memory store: data is lost on shutdown")
		return inmemdb.New(), func() error { return nil }
	}

	setUp := func() (*sql.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return sqlxdb.New(db), db.Close
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:            p.Conf,
		Logger:          p.Logger,
		Validate:        p.Validate,
		Translator:      p.Translator,
		UserSvc:         p.UserSvc,
		UnitSvc:         p.UnitSvc,
		RosterSvc:       p.RosterSvc,
		AttendanceSvc:   p.AttendanceSvc,
		ReportSvc:       p.ReportSvc,
		AchievementSvc:  p.AchievementSvc,
		ReviewSvc:       p.ReviewSvc,
		AnnouncementSvc: p.AnnouncementSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(user.NewService))
	must(c.Provide(unit.NewService))
	must(c.Provide(roster.NewService))
	must(c.Provide(attendance.NewService))
	must(c.Provide(announcement.NewService))
	must(c.Provide(report.NewService))
	must(c.Provide(achievement.NewService))
	must(c.Provide(review.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
