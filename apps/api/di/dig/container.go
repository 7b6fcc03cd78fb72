package dig_container

import (
	"context"
	"database/sql"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/QinlinChen/StuHub/apps/api/echo"
	"github.com/QinlinChen/StuHub/core"
	"github.com/QinlinChen/StuHub/core/course"
	"github.com/QinlinChen/StuHub/core/user"
	"github.com/QinlinChen/StuHub/services/email"
	"github.com/QinlinChen/StuHub/services/logger"
	"github.com/QinlinChen/StuHub/services/metrics"
	"github.com/QinlinChen/StuHub/storage/database"
	"github.com/QinlinChen/StuHub/storage/database/sqlboiler"
	"github.com/QinlinChen/StuHub/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type loggers struct {
	dig.Out
	API core.Logger
	DB  core.Logger `name:"dbLogger"`
}

func newLoggers(conf *core.Config) loggers {
	logger := logsvc.NewRollbarLogger(os.Stdout, conf)
	return loggers{
		API: logger.With("component", "api"),
		DB:  logger.With("component", "db"),
	}
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sql.DB, error) {
	db, err := database.Setup(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Error("setting up database", err)
		return nil, errors.Wrap(err, "setting up database")
	}
	return db, nil
}

func newUserRepository(db *sql.DB, conf *core.Config) user.Repository {
	return boiledrepos.NewUserRepository(db, database.Driver(conf))
}

func newSQLX(db *sql.DB, conf *core.Config) *sqlx.DB {
	return database.NewSQLX(db, conf)
}

func newCourseService(repo course.Repository, conf *core.Config, mgr *metrics.Manager) (course.Service, error) {
	return course.NewService(repo, conf, mgr)
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	validate *validator.Validate,
	translator ut.Translator,
	mgr *metrics.Manager,
	mailSvc core.EmailService,
	usrSvc user.Service,
	crsSvc course.Service,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		Metrics:    mgr,
		MailSvc:    mailSvc,
		UserSvc:    usrSvc,
		CourseSvc:  crsSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLoggers))
	must(c.Provide(newDB))
	must(c.Provide(newSQLX))
	must(c.Provide(emailsvc.NewService))
	must(c.Provide(newUserRepository))
	must(c.Provide(sqlxrepos.NewCourseRepository, dig.As(new(course.Repository))))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(metrics.NewManager))
	must(c.Provide(user.NewService))
	must(c.Provide(newCourseService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
