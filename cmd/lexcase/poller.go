package main

import (
	"context"
	"fmt"

	"lexcase_api_go/config"
	"lexcase_api_go/db"
	"lexcase_api_go/services"
	"lexcase_api_go/services/jobs"

	"github.com/urfave/cli/v2"
)

var pollOnceCommand = &cli.Command{
	Name:  "poll-once",
	Usage: "Deliver every due reminder once and exit",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "email", Value: true, Usage: "Send reminder emails"},
	},
	Action: func(cCtx *cli.Context) error {
		return withDatabase(func(cfg *config.Config) error {
			p := newPoller(cfg, cCtx.Bool("email"))
			res := p.Tick(context.Background())
			fmt.Printf("processed=%d sent=%d failed=%d notifications=%d emails=%d rescheduled=%d\n",
				res.Processed, res.Sent, res.Failed, res.Notifications, res.Emails, res.Rescheduled)
			return nil
		})
	},
}

var maintainCommand = &cli.Command{
	Name:  "maintain",
	Usage: "Purge old reminders, notifications and expired sessions",
	Action: func(cCtx *cli.Context) error {
		return withDatabase(func(cfg *config.Config) error {
			res := newPoller(cfg, false).Maintain(context.Background())
			fmt.Printf("reminders=%d notifications=%d expired=%d sessions=%d\n",
				res.Reminders, res.Notifications, res.Expired, res.Sessions)
			return nil
		})
	},
}

func newPoller(cfg *config.Config, withEmail bool) *jobs.ReminderPoller {
	opts := []jobs.Option{}
	if withEmail {
		opts = append(opts, jobs.WithMailer(services.NewMailer(cfg), cfg.AppURL))
	}
	return jobs.NewReminderPoller(db.DB, services.NewNotificationService(db.DB), services.NewActivityLogger(db.DB), opts...)
}
