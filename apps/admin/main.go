package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/QinlinChen/StuHub/core"
	"github.com/QinlinChen/StuHub/core/course"
	"github.com/QinlinChen/StuHub/core/user"
	"github.com/QinlinChen/StuHub/services/logger"
	"github.com/QinlinChen/StuHub/storage/database"
	"github.com/QinlinChen/StuHub/storage/database/sqlboiler"
	"github.com/QinlinChen/StuHub/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(os.Stderr, conf).With("component", "admin")

	// set up DB
	db, err := database.Setup(context.Background(), conf)
	if err != nil {
		logger.Fatal("setting up database", err)
	}
	defer db.Close()

	// set up services
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	user.LoadCommonPasswords(logger)

	crsSvc, err := course.NewService(sqlxrepos.NewCourseRepository(database.NewSQLX(db, conf)), conf, nil)
	if err != nil {
		logger.Fatal("setting up course service", err)
	}

	// start CLI
	cli := commandLine{
		db:         db,
		driver:     database.Driver(conf),
		usrRepo:    boiledrepos.NewUserRepository(db, database.Driver(conf)),
		crsSvc:     crsSvc,
		validate:   validate,
		translator: translator,
		out:        os.Stdout,
	}
	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			_, _ = fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}
