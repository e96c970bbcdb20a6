package main

import (
	"os"

	"lexcase_api_go/config"
	"lexcase_api_go/db"
	"lexcase_api_go/logger"
	"lexcase_api_go/models"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "lexcase",
		Usage: "Administrative tasks for the LexCase API",
		Commands: []*cli.Command{
			migrateCommand,
			createUserCommand,
			pollOnceCommand,
			maintainCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("lexcase failed")
	}
}

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Create or update the database schema",
	Action: func(cCtx *cli.Context) error {
		return withDatabase(func(*config.Config) error { return nil })
	},
}

// withDatabase opens and migrates the configured database around fn
func withDatabase(fn func(cfg *config.Config) error) error {
	cfg := config.Load()
	logger.New(cfg.Environment)

	if err := db.Initialize(cfg); err != nil {
		return err
	}
	defer db.Close()

	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}
	return fn(cfg)
}
