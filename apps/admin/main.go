package main

import (
	"log"
	"os"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/cover"
	"github.com/trezcool/kitabu/core/school"
	logsvc "github.com/trezcool/kitabu/services/logger"
	"github.com/trezcool/kitabu/storage/database"
	sqlxrepos "github.com/trezcool/kitabu/storage/database/sqlx"
	"github.com/trezcool/kitabu/storage/sessioncache"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// set up services
	schoolSvc := school.NewService(sqlxrepos.NewSchoolRepository(db))
	coverSvc := cover.NewService(
		sqlxrepos.NewCoverRepository(db),
		sessioncache.NewMemoryCache(),
		nil, /* mailSvc */
		schoolSvc,
		nil, /* urls */
		logsvc.NewStdLogger(logger),
	)

	// start CLI
	cli := commandLine{
		db:        db.DB,
		schoolSvc: schoolSvc,
		coverSvc:  coverSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
