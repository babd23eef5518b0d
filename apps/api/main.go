package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/trezcool/kitabu/apps/api/echo"
	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/cover"
	"github.com/trezcool/kitabu/core/school"
	emailsvc "github.com/trezcool/kitabu/services/email"
	logsvc "github.com/trezcool/kitabu/services/logger"
	"github.com/trezcool/kitabu/storage/database"
	inmemdb "github.com/trezcool/kitabu/storage/database/inmem"
	sqlxrepos "github.com/trezcool/kitabu/storage/database/sqlx"
	"github.com/trezcool/kitabu/storage/objectstore"
	"github.com/trezcool/kitabu/storage/restapi"
	"github.com/trezcool/kitabu/storage/sessioncache"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	// set up repositories; self-hosted mode runs on our own database while
	// managed mode proxies the upstream print-production backend
	var (
		coverRepo  cover.Repository
		schoolRepo school.Repository
	)
	if core.Conf.SelfHosted() {
		db, err := database.Open(core.Conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				logger.Error(fmt.Sprintf("closing database: %v", err), err)
			}
		}()
		coverRepo = sqlxrepos.NewCoverRepository(db)
		schoolRepo = sqlxrepos.NewSchoolRepository(db)
	} else {
		up := core.Conf.Upstream
		coverRepo = restapi.NewRepository(up.BaseURL, up.Timeout, restapi.StaticTokenProvider(up.IDToken))
		memdb, err := inmemdb.Open()
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening in-memory store: %v", err), err)
		}
		schoolRepo = inmemdb.NewSchoolRepository(memdb)
	}

	// set up the session cache
	var cache cover.SessionCache
	if url := core.Conf.Redis.URL; url != "" {
		rc, err := sessioncache.NewRedisCache(url, core.Conf.Redis.CacheTTL)
		if err != nil {
			logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
		}
		defer func() {
			if err = rc.Close(); err != nil {
				logger.Error(fmt.Sprintf("closing redis: %v", err), err)
			}
		}()
		cache = rc
	} else {
		cache = sessioncache.NewMemoryCache()
	}

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	var urls cover.URLResolver
	if core.Conf.ObjectStore.Endpoint != "" {
		resolver, err := objectstore.NewMinioResolver(core.Conf.ObjectStore)
		if err != nil {
			logger.Fatal(fmt.Sprintf("connecting to object store: %v", err), err)
		}
		urls = resolver
	}

	schoolSvc := school.NewService(schoolRepo)
	coverSvc := cover.NewService(coverRepo, cache, mailSvc, schoolSvc, urls, logger)

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Address:   core.Conf.Server.Address(),
		Logger:    logger,
		CoverSvc:  coverSvc,
		SchoolSvc: schoolSvc,
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.Start()
	}()

	shutdown := app.ShutdownSignal()
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	logger.Info(fmt.Sprintf("%s API listening on %s : version %q", core.Conf.AppName, core.Conf.Server.Address(), core.Conf.Build))
	defer logger.Info("Application stopped")

	select {
	case err := <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}
